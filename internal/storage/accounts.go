package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ceezaa/tasteflow/internal/common"
	"github.com/ceezaa/tasteflow/internal/model"
)

// SaveLinkedAccount upserts a bank connection.
func (s *SQLiteStorage) SaveLinkedAccount(ctx context.Context, account *model.LinkedAccount) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLinkedAccount(account); err != nil {
		return err
	}

	var lastSynced any
	if !account.LastSyncedAt.IsZero() {
		lastSynced = account.LastSyncedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO linked_accounts (
			id, user_id, item_id, access_token, institution_name, sync_cursor, last_synced_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			institution_name = excluded.institution_name,
			sync_cursor = excluded.sync_cursor,
			last_synced_at = excluded.last_synced_at`,
		account.ID, account.UserID, account.ItemID, account.AccessToken,
		account.InstitutionName, account.SyncCursor, lastSynced)
	if err != nil {
		return fmt.Errorf("failed to save linked account: %w", err)
	}
	return nil
}

// GetLinkedAccounts returns all bank connections for a user, oldest first.
func (s *SQLiteStorage) GetLinkedAccounts(ctx context.Context, userID string) ([]model.LinkedAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, item_id, access_token, institution_name, sync_cursor, last_synced_at
		 FROM linked_accounts
		 WHERE user_id = ?
		 ORDER BY created_at, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.LinkedAccount
	for rows.Next() {
		var (
			account     model.LinkedAccount
			institution sql.NullString
			cursor      sql.NullString
			lastSynced  sql.NullTime
		)
		if err := rows.Scan(
			&account.ID, &account.UserID, &account.ItemID, &account.AccessToken,
			&institution, &cursor, &lastSynced,
		); err != nil {
			return nil, fmt.Errorf("failed to scan linked account: %w", err)
		}
		account.InstitutionName = institution.String
		account.SyncCursor = cursor.String
		if lastSynced.Valid {
			account.LastSyncedAt = lastSynced.Time
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate linked accounts: %w", err)
	}
	return accounts, nil
}

// UpdateSyncCursor advances the stored sync cursor after a completed sync.
func (s *SQLiteStorage) UpdateSyncCursor(ctx context.Context, accountID, cursor string, syncedAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE linked_accounts SET sync_cursor = ?, last_synced_at = ? WHERE id = ?`,
		cursor, syncedAt, accountID)
	if err != nil {
		return fmt.Errorf("failed to update sync cursor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check cursor update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: linked account %s", common.ErrNotFound, accountID)
	}
	return nil
}
