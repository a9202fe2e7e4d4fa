package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ceezaa/tasteflow/internal/aggregate"
	"github.com/ceezaa/tasteflow/internal/cli"
	"github.com/ceezaa/tasteflow/internal/common"
	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/service"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull transaction deltas and update the taste profile",
		Long: `Fetch transactions/sync deltas for every linked account and apply
them to the observed taste profile in added, modified, removed order.

Each applied page advances the account's sync cursor, so an interrupted
sync resumes where it left off.`,
		RunE: runSync,
	}

	cmd.Flags().String("file", "", "apply a sync delta from a JSON file instead of Plaid")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	interrupts := cli.NewInterruptHandler(os.Stdout)
	ctx := interrupts.HandleInterrupts(cmd.Context(), true)

	userID, err := requireUserID()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	engine := aggregate.New(store)

	if deltaPath, _ := cmd.Flags().GetString("file"); deltaPath != "" {
		return syncFromFile(ctx, engine, userID, deltaPath)
	}

	accounts, err := store.GetLinkedAccounts(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load linked accounts: %w", err)
	}
	if len(accounts) == 0 {
		return common.NewUserError(
			"No linked accounts. Run 'tasteflow link' first.",
			common.ErrInvalidAccount)
	}

	client, err := initPlaidClient()
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Applying transactions"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr))

	var totals aggregate.DeltaStats
	for _, account := range accounts {
		stats, syncErr := syncAccount(ctx, client, engine, store, account, bar)
		totals.Added += stats.Added
		totals.Modified += stats.Modified
		totals.Removed += stats.Removed
		totals.Orphaned += stats.Orphaned
		if syncErr != nil {
			if interrupts.WasInterrupted() {
				return nil
			}
			return fmt.Errorf("sync failed for account %s: %w", account.ID, syncErr)
		}
	}
	_ = bar.Finish()
	fmt.Println()

	printSyncSummary(totals)
	return nil
}

// syncAccount pulls pages for one account until the aggregator reports no
// more, persisting the cursor after every applied page.
func syncAccount(
	ctx context.Context,
	client service.TransactionSyncer,
	engine *aggregate.Engine,
	store service.Storage,
	account model.LinkedAccount,
	bar *progressbar.ProgressBar,
) (aggregate.DeltaStats, error) {
	var totals aggregate.DeltaStats
	cursor := account.SyncCursor

	for {
		delta, err := client.Sync(ctx, account.AccessToken, cursor)
		if err != nil {
			return totals, err
		}

		stampUser(delta, account.UserID)

		stats, err := engine.ApplyDelta(ctx, account.UserID, *delta)
		if err != nil {
			return totals, err
		}
		totals.Added += stats.Added
		totals.Modified += stats.Modified
		totals.Removed += stats.Removed
		totals.Orphaned += stats.Orphaned
		_ = bar.Add(len(delta.Added) + len(delta.Modified) + len(delta.Removed))

		if err := store.UpdateSyncCursor(ctx, account.ID, delta.NextCursor, time.Now().UTC()); err != nil {
			return totals, fmt.Errorf("failed to persist sync cursor: %w", err)
		}
		cursor = delta.NextCursor

		if !delta.HasMore {
			return totals, nil
		}
	}
}

// syncFromFile applies a recorded delta, useful for tests and backfills.
func syncFromFile(ctx context.Context, engine *aggregate.Engine, userID, path string) error {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to read delta file: %w", err)
	}

	var delta model.SyncDelta
	if err := json.Unmarshal(data, &delta); err != nil {
		return fmt.Errorf("failed to parse delta file: %w", err)
	}
	stampUser(&delta, userID)

	stats, err := engine.ApplyDelta(ctx, userID, delta)
	if err != nil {
		return err
	}

	printSyncSummary(stats)
	return nil
}

// stampUser sets the owning user on every event in a delta.
func stampUser(delta *model.SyncDelta, userID string) {
	for i := range delta.Added {
		delta.Added[i].UserID = userID
	}
	for i := range delta.Modified {
		delta.Modified[i].UserID = userID
	}
}

func printSyncSummary(stats aggregate.DeltaStats) {
	slog.Info("Sync complete",
		"added", stats.Added,
		"modified", stats.Modified,
		"removed", stats.Removed,
		"orphaned", stats.Orphaned)
	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Applied %d added, %d modified, %d removed", stats.Added, stats.Modified, stats.Removed)))
}
