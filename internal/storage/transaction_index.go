package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ceezaa/tasteflow/internal/model"
)

// GetAppliedState returns the last-applied contribution for a transaction
// ID, or nil when the transaction was never applied.
func (s *SQLiteStorage) GetAppliedState(ctx context.Context, userID, transactionID string) (*model.AppliedState, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return nil, err
	}

	var (
		state      model.AppliedState
		cuisine    sql.NullString
		merchant   sql.NullString
		name       sql.NullString
		amount     string
		occurredAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT category, cuisine, merchant, merchant_name, amount, occurred_at
		 FROM transaction_index
		 WHERE user_id = ? AND transaction_id = ?`,
		userID, transactionID).Scan(
		&state.Category, &cuisine, &merchant, &name, &amount, &occurredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load applied state: %w", err)
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse applied amount %q: %w", amount, err)
	}

	state.UserID = userID
	state.TransactionID = transactionID
	state.Cuisine = cuisine.String
	state.Merchant = merchant.String
	state.MerchantName = name.String
	state.Amount = parsed
	state.OccurredAt = occurredAt
	return &state, nil
}

// SaveAppliedState upserts the side-index record for a transaction.
func (s *SQLiteStorage) SaveAppliedState(ctx context.Context, state *model.AppliedState) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAppliedState(state); err != nil {
		return err
	}
	return upsertAppliedState(ctx, s.db, state)
}

// DeleteAppliedState removes the side-index record for a transaction.
// Deleting a missing record is not an error.
func (s *SQLiteStorage) DeleteAppliedState(ctx context.Context, userID, transactionID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}
	return deleteAppliedState(ctx, s.db, userID, transactionID)
}

// SaveProfileWithAppliedState persists the profile and the side-index
// upsert produced by the same event in one transaction. Either both land
// or neither does, so a failed save can always be retried against the
// state the profile actually reflects.
func (s *SQLiteStorage) SaveProfileWithAppliedState(ctx context.Context, profile *model.ObservedTasteProfile, state *model.AppliedState) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateObservedProfile(profile); err != nil {
		return err
	}
	if err := validateAppliedState(state); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertObservedProfile(ctx, tx, profile); err != nil {
		return err
	}
	if err := upsertAppliedState(ctx, tx, state); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile and applied state: %w", err)
	}
	return nil
}

// SaveProfileDeletingAppliedState persists the profile and removes the
// given transaction's side-index record in one transaction.
func (s *SQLiteStorage) SaveProfileDeletingAppliedState(ctx context.Context, profile *model.ObservedTasteProfile, transactionID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateObservedProfile(profile); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertObservedProfile(ctx, tx, profile); err != nil {
		return err
	}
	if err := deleteAppliedState(ctx, tx, profile.UserID, transactionID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile and applied state: %w", err)
	}
	return nil
}

func upsertAppliedState(ctx context.Context, db dbExecer, state *model.AppliedState) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO transaction_index (
			user_id, transaction_id, category, cuisine, merchant, merchant_name, amount, occurred_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, transaction_id) DO UPDATE SET
			category = excluded.category,
			cuisine = excluded.cuisine,
			merchant = excluded.merchant,
			merchant_name = excluded.merchant_name,
			amount = excluded.amount,
			occurred_at = excluded.occurred_at`,
		state.UserID, state.TransactionID, state.Category, state.Cuisine,
		state.Merchant, state.MerchantName, state.Amount.String(), state.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to save applied state: %w", err)
	}
	return nil
}

func deleteAppliedState(ctx context.Context, db dbExecer, userID, transactionID string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM transaction_index WHERE user_id = ? AND transaction_id = ?`,
		userID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete applied state: %w", err)
	}
	return nil
}
