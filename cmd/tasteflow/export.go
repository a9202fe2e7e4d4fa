package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ceezaa/tasteflow/internal/cli"
	"github.com/ceezaa/tasteflow/internal/config"
	"github.com/ceezaa/tasteflow/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your taste report to Google Sheets",
		Long: `Write the fused taste report (ring, title, traits, insights and top
spots) to a Google Sheets spreadsheet.

Authentication uses either a service account file or OAuth2 client
credentials; run with --auth once to perform the interactive consent
flow and cache a refresh token.`,
		RunE: runExport,
	}

	cmd.Flags().Bool("auth", false, "run the interactive OAuth2 flow and cache the token")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return err
	}

	if doAuth, _ := cmd.Flags().GetBool("auth"); doAuth {
		token, authErr := sheets.GetOrCreateToken(ctx, sheets.OAuth2Config{
			ClientID:     sheetsConfig.ClientID,
			ClientSecret: sheetsConfig.ClientSecret,
			TokenFile:    defaultTokenFile(),
		})
		if authErr != nil {
			return fmt.Errorf("authentication failed: %w", authErr)
		}
		sheetsConfig.RefreshToken = token.RefreshToken
		fmt.Println(cli.FormatSuccess("Google Sheets authentication complete."))
	}

	userID, err := requireUserID()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report, err := buildTasteReport(ctx, store, userID)
	if err != nil {
		return err
	}

	writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default().With("component", "export"))
	if err != nil {
		return err
	}

	if err := writer.Write(ctx, report); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported taste report to %q.", sheetsConfig.SpreadsheetName)))
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tasteflow-sheets-token.json"
	}
	return filepath.Join(home, ".config", "tasteflow", "sheets-token.json")
}
