package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/ceezaa/tasteflow/internal/common"
	"github.com/ceezaa/tasteflow/internal/config"
	"github.com/ceezaa/tasteflow/internal/insight"
	"github.com/ceezaa/tasteflow/internal/llm"
	"github.com/ceezaa/tasteflow/internal/plaid"
	"github.com/ceezaa/tasteflow/internal/service"
	"github.com/ceezaa/tasteflow/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/tasteflow/tasteflow.db"
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// requireUserID resolves the user to operate on from the --user flag or
// config, erroring with guidance when neither is set.
func requireUserID() (string, error) {
	userID := viper.GetString("user.id")
	if userID == "" {
		return "", common.NewUserError(
			"No user selected. Pass --user or set user.id in the config file.",
			fmt.Errorf("user id not configured"))
	}
	return userID, nil
}

// insightOptions configures insight generation. When an Anthropic key is
// present the generator polishes insight copy; otherwise insights stay
// rule-based.
func insightOptions() []insight.Option {
	apiKey := viper.GetString("llm.api_key")
	if apiKey == "" {
		return nil
	}

	client, err := llm.NewClient(llm.Config{
		APIKey: apiKey,
		Model:  viper.GetString("llm.model"),
	})
	if err != nil {
		slog.Warn("Content generator unavailable, using rule-based insights", "error", err)
		return nil
	}
	return []insight.Option{insight.WithContentGenerator(client)}
}

// initPlaidClient builds a Plaid client from config.
func initPlaidClient() (*plaid.Client, error) {
	plaidConfig := plaid.Config{
		ClientID:    viper.GetString("plaid.client_id"),
		Secret:      viper.GetString("plaid.secret"),
		Environment: viper.GetString("plaid.environment"),
	}
	if plaidConfig.Environment == "" {
		plaidConfig.Environment = "sandbox"
	}

	client, err := plaid.NewClient(plaidConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Plaid client: %w", err)
	}
	return client, nil
}
