// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/ceezaa/tasteflow/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Declared taste. Saving assigns and returns the next version; each
	// quiz submission replaces the previous profile wholesale.
	SaveDeclaredTaste(ctx context.Context, userID string, taste model.DeclaredTaste) (int, error)
	GetDeclaredTaste(ctx context.Context, userID string) (*model.DeclaredTaste, error)

	// Observed taste profiles, owned by the aggregation engine.
	GetObservedProfile(ctx context.Context, userID string) (*model.ObservedTasteProfile, error)
	SaveObservedProfile(ctx context.Context, profile *model.ObservedTasteProfile) error

	// Per-transaction side index used to reverse prior contributions on
	// Modified/Removed events. The combined saves persist the profile and
	// its index mutation in one transaction; the index must never hold a
	// state whose contribution is not in the stored profile.
	GetAppliedState(ctx context.Context, userID, transactionID string) (*model.AppliedState, error)
	SaveAppliedState(ctx context.Context, state *model.AppliedState) error
	DeleteAppliedState(ctx context.Context, userID, transactionID string) error
	SaveProfileWithAppliedState(ctx context.Context, profile *model.ObservedTasteProfile, state *model.AppliedState) error
	SaveProfileDeletingAppliedState(ctx context.Context, profile *model.ObservedTasteProfile, transactionID string) error

	// Venue catalog, produced by the offline tagging collaborator.
	SaveVenues(ctx context.Context, venues []model.Venue) error
	GetActiveVenues(ctx context.Context, tasteCluster string) ([]model.Venue, error)

	// Linked bank accounts and their sync cursors.
	SaveLinkedAccount(ctx context.Context, account *model.LinkedAccount) error
	GetLinkedAccounts(ctx context.Context, userID string) ([]model.LinkedAccount, error)
	UpdateSyncCursor(ctx context.Context, accountID, cursor string, syncedAt time.Time) error

	// Database management.
	Migrate(ctx context.Context) error
	Close() error
}

// TransactionSyncer defines the contract for pulling transaction sync
// deltas from the bank aggregator. Allows mocking in tests.
type TransactionSyncer interface {
	Sync(ctx context.Context, accessToken, cursor string) (*model.SyncDelta, error)
}

// ContentGenerator is the opaque text-generation capability used by
// layers outside the core (insight copy, archetype naming). The core
// never blocks on or depends on generator availability.
type ContentGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
