package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ceezaa/tasteflow/internal/aggregate"
	"github.com/ceezaa/tasteflow/internal/cli"
	"github.com/ceezaa/tasteflow/internal/common"
	"github.com/ceezaa/tasteflow/internal/fusion"
	"github.com/ceezaa/tasteflow/internal/insight"
	"github.com/ceezaa/tasteflow/internal/match"
	"github.com/ceezaa/tasteflow/internal/service"
	"github.com/ceezaa/tasteflow/internal/sheets"
	"github.com/ceezaa/tasteflow/internal/taxonomy"
	"github.com/ceezaa/tasteflow/internal/titles"
)

func tasteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taste",
		Short: "Show your fused taste profile",
		Long: `Fuse the declared quiz profile with observed spending and display
the taste ring, profile title, traits and insights.`,
		RunE: runTaste,
	}

	cmd.Flags().Bool("json", false, "print the report as JSON")

	return cmd
}

func runTaste(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

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

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	renderTasteReport(report)
	return nil
}

// buildTasteReport assembles the full fused view for one user. Shared by
// the taste and export commands.
func buildTasteReport(ctx context.Context, store service.Storage, userID string) (*sheets.Report, error) {
	declared, err := store.GetDeclaredTaste(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNoDeclaredTaste) {
			return nil, common.NewUserError(
				"No taste profile yet. Take the quiz first: tasteflow quiz", err)
		}
		return nil, fmt.Errorf("failed to load declared taste: %w", err)
	}

	observed, err := aggregate.New(store).Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	fused := fusion.New().Fuse(userID, *declared, observed)

	return &sheets.Report{
		GeneratedAt:  time.Now().UTC(),
		UserID:       userID,
		Title:        titles.ForProfile(fused),
		Profile:      fused,
		Ring:         match.BuildRing(fused.Categories),
		Traits:       titles.Traits(*declared),
		Insights:     insight.New(insightOptions()...).Generate(ctx, observed),
		TopMerchants: observed.TopMerchants(5),
	}, nil
}

func renderTasteReport(report *sheets.Report) {
	profile := report.Profile

	var body strings.Builder
	body.WriteString(cli.SubtitleStyle.Render(report.Title.Tagline))
	body.WriteString("\n\n")

	for _, segment := range report.Ring {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(segment.Color)).Render(cli.RingIcon)
		fmt.Fprintf(&body, "%s %5.1f%%  %s\n", dot, segment.Percentage, taxonomy.FormatName(segment.Category))
	}

	fmt.Fprintf(&body, "\nConfidence %.0f%%  (quiz %.0f%% / spending %.0f%%)\n",
		profile.Confidence*100, profile.QuizWeight*100, profile.TxWeight*100)
	if len(profile.Vibes) > 0 {
		fmt.Fprintf(&body, "Vibes:    %s\n", strings.Join(profile.Vibes, ", "))
	}
	if len(profile.TopCuisines) > 0 {
		fmt.Fprintf(&body, "Cuisines: %s\n", strings.Join(profile.TopCuisines, ", "))
	}

	if len(report.Traits) > 0 {
		body.WriteString("\n")
		for _, trait := range report.Traits {
			bar := strings.Repeat("█", trait.Score/10)
			styled := lipgloss.NewStyle().Foreground(lipgloss.Color(trait.Color)).Render(bar)
			fmt.Fprintf(&body, "%-12s %s %d\n", trait.Name, styled, trait.Score)
		}
	}

	fmt.Println(cli.RenderBox(cli.TasteIcon+" "+report.Title.Title, strings.TrimRight(body.String(), "\n")))

	for _, ins := range report.Insights {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("%s: %s", ins.Title, ins.Body)))
	}

	if len(report.TopMerchants) > 0 {
		fmt.Println()
		fmt.Println(cli.SubtitleStyle.Render("Your top spots:"))
		for _, visit := range report.TopMerchants {
			fmt.Printf("  %s %s (%d visits)\n", cli.PinIcon, visit.Name, visit.Count)
		}
	}
}
