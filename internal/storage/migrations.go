package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS declared_taste (
					user_id TEXT NOT NULL,
					version INTEGER NOT NULL,
					payload TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (user_id, version)
				)`,

				`CREATE TABLE IF NOT EXISTS observed_profiles (
					user_id TEXT PRIMARY KEY,
					version INTEGER NOT NULL,
					payload TEXT NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS transaction_index (
					user_id TEXT NOT NULL,
					transaction_id TEXT NOT NULL,
					category TEXT NOT NULL,
					cuisine TEXT,
					merchant TEXT,
					merchant_name TEXT,
					amount TEXT NOT NULL,
					occurred_at DATETIME NOT NULL,
					PRIMARY KEY (user_id, transaction_id)
				)`,
				`CREATE INDEX idx_transaction_index_user ON transaction_index(user_id)`,

				`CREATE TABLE IF NOT EXISTS venues (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					taste_cluster TEXT NOT NULL,
					cuisine_type TEXT,
					energy TEXT,
					tagline TEXT,
					price_tier TEXT NOT NULL,
					cluster_weights TEXT,
					vibe_tags TEXT,
					best_for TEXT,
					standout TEXT,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_venues_cluster ON venues(taste_cluster)`,

				`CREATE TABLE IF NOT EXISTS linked_accounts (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					item_id TEXT NOT NULL,
					access_token TEXT NOT NULL,
					institution_name TEXT,
					sync_cursor TEXT,
					last_synced_at DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_linked_accounts_user ON linked_accounts(user_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add venue rating and active flag",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE venues ADD COLUMN rating REAL`,
				`ALTER TABLE venues ADD COLUMN active INTEGER NOT NULL DEFAULT 1`,
				`CREATE INDEX idx_venues_active ON venues(active)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
