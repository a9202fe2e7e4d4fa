package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ceezaa/tasteflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidVenue  = errors.New("invalid venue")
	ErrInvalidState  = errors.New("invalid applied state")
	ErrInvalidTaste  = errors.New("invalid declared taste")
	ErrInvalidLinked = errors.New("invalid linked account")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateAppliedState validates a side-index record before persisting.
func validateAppliedState(state *model.AppliedState) error {
	if state == nil {
		return fmt.Errorf("%w: state", ErrNilParameter)
	}
	if state.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidState)
	}
	if state.TransactionID == "" {
		return fmt.Errorf("%w: missing transaction ID", ErrInvalidState)
	}
	if state.Category == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidState)
	}
	if state.OccurredAt.IsZero() {
		return fmt.Errorf("%w: missing occurred_at", ErrInvalidState)
	}
	return nil
}

// validateVenue validates a venue record before persisting.
func validateVenue(venue *model.Venue) error {
	if venue == nil {
		return fmt.Errorf("%w: venue", ErrNilParameter)
	}
	if strings.TrimSpace(venue.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidVenue)
	}
	if strings.TrimSpace(venue.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidVenue)
	}
	if strings.TrimSpace(venue.TasteCluster) == "" {
		return fmt.Errorf("%w: missing taste cluster", ErrInvalidVenue)
	}
	return nil
}

// validateDeclaredTaste validates a quiz-built profile before persisting.
func validateDeclaredTaste(taste *model.DeclaredTaste) error {
	if taste == nil {
		return fmt.Errorf("%w: taste", ErrNilParameter)
	}
	for category, weight := range taste.CategoryWeights {
		if weight < 0 || weight > 1 {
			return fmt.Errorf("%w: weight for %s must be between 0 and 1", ErrInvalidTaste, category)
		}
	}
	return nil
}

// validateLinkedAccount validates a bank connection record.
func validateLinkedAccount(account *model.LinkedAccount) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if account.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidLinked)
	}
	if account.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidLinked)
	}
	if account.AccessToken == "" {
		return fmt.Errorf("%w: missing access token", ErrInvalidLinked)
	}
	return nil
}
