package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ceezaa/tasteflow/internal/common"
	"github.com/ceezaa/tasteflow/internal/model"
)

// SaveDeclaredTaste stores a new version of the user's quiz-built profile.
// Versions are append-only; each submission replaces the previous profile
// wholesale but the history stays queryable. Returns the assigned version.
func (s *SQLiteStorage) SaveDeclaredTaste(ctx context.Context, userID string, taste model.DeclaredTaste) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}
	if err := validateDeclaredTaste(&taste); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM declared_taste WHERE user_id = ?`,
		userID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to determine next version: %w", err)
	}

	taste.Version = version
	payload, err := json.Marshal(taste)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal declared taste: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO declared_taste (user_id, version, payload) VALUES (?, ?, ?)`,
		userID, version, string(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to save declared taste: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit declared taste: %w", err)
	}
	return version, nil
}

// GetDeclaredTaste returns the latest version of the user's declared
// profile, or common.ErrNoDeclaredTaste if the quiz was never taken.
func (s *SQLiteStorage) GetDeclaredTaste(ctx context.Context, userID string) (*model.DeclaredTaste, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var (
		version int
		payload string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT version, payload FROM declared_taste
		 WHERE user_id = ? ORDER BY version DESC LIMIT 1`,
		userID).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNoDeclaredTaste
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load declared taste: %w", err)
	}

	var taste model.DeclaredTaste
	if err := json.Unmarshal([]byte(payload), &taste); err != nil {
		return nil, fmt.Errorf("failed to unmarshal declared taste: %w", err)
	}
	taste.Version = version
	return &taste, nil
}

// GetObservedProfile returns the user's observed aggregate, or nil when
// the user has no transactions yet. Missing is not an error here because
// the aggregation engine lazily creates profiles on first write.
func (s *SQLiteStorage) GetObservedProfile(ctx context.Context, userID string) (*model.ObservedTasteProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM observed_profiles WHERE user_id = ?`,
		userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load observed profile: %w", err)
	}

	var profile model.ObservedTasteProfile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal observed profile: %w", err)
	}
	return &profile, nil
}

// SaveObservedProfile upserts the user's observed aggregate document.
func (s *SQLiteStorage) SaveObservedProfile(ctx context.Context, profile *model.ObservedTasteProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateObservedProfile(profile); err != nil {
		return err
	}
	return upsertObservedProfile(ctx, s.db, profile)
}

// dbExecer is satisfied by both *sql.DB and *sql.Tx, so single writes and
// transactional writes share the same statements.
type dbExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func validateObservedProfile(profile *model.ObservedTasteProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	return validateString(profile.UserID, "profile.UserID")
}

func upsertObservedProfile(ctx context.Context, db dbExecer, profile *model.ObservedTasteProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal observed profile: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO observed_profiles (user_id, version, payload)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP`,
		profile.UserID, profile.Version, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save observed profile: %w", err)
	}
	return nil
}
