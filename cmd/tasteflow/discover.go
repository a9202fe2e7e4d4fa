package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ceezaa/tasteflow/internal/cli"
	"github.com/ceezaa/tasteflow/internal/common"
	"github.com/ceezaa/tasteflow/internal/match"
	"github.com/ceezaa/tasteflow/internal/model"
)

func discoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Rank venues against your taste profile",
		Long: `Score the venue catalog against your fused taste profile and show
the best matches with reasons. Mood reorders results without changing
the reported scores.`,
		RunE: runDiscover,
	}

	cmd.Flags().String("mood", "", fmt.Sprintf("mood boost for ranking (%s)", strings.Join(match.AvailableMoods(), ", ")))
	cmd.Flags().String("category", "", "restrict to one taste cluster (e.g. dining, coffee)")
	cmd.Flags().Int("min-score", 0, "hide venues scoring below this")
	cmd.Flags().Int("limit", 10, "maximum venues to show")
	cmd.Flags().Int("offset", 0, "skip the first N ranked venues")

	return cmd
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	mood, _ := cmd.Flags().GetString("mood")
	if mood != "" && !isValidMood(mood) {
		return common.NewUserError(fmt.Sprintf(
			"Unknown mood %q. Available moods: %s", mood, strings.Join(match.AvailableMoods(), ", ")), nil)
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

	category, _ := cmd.Flags().GetString("category")
	venues, err := store.GetActiveVenues(ctx, category)
	if err != nil {
		return fmt.Errorf("failed to load venues: %w", err)
	}
	if len(venues) == 0 {
		fmt.Println(cli.FormatWarning("No venues in the catalog. Run 'tasteflow venues import' first."))
		return nil
	}

	minScore, _ := cmd.Flags().GetInt("min-score")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	results := match.New().Rank(report.Profile, venues, match.Options{
		Mood:     mood,
		MinScore: minScore,
		Offset:   offset,
		Limit:    limit,
	})
	if len(results) == 0 {
		fmt.Println(cli.FormatWarning("No venues matched. Try lowering --min-score."))
		return nil
	}

	renderMatches(results, venues, mood)
	return nil
}

func isValidMood(mood string) bool {
	for _, m := range match.AvailableMoods() {
		if m == mood {
			return true
		}
	}
	return false
}

func renderMatches(results []model.MatchResult, venues []model.Venue, mood string) {
	byID := make(map[string]*model.Venue, len(venues))
	for i := range venues {
		byID[venues[i].ID] = &venues[i]
	}

	title := "Your matches"
	if mood != "" {
		title += fmt.Sprintf(" (%s mood)", mood)
	}
	fmt.Println(cli.TitleStyle.Render(cli.SparkleIcon + " " + title))
	fmt.Println()

	for i, result := range results {
		venue := byID[result.VenueID]
		if venue == nil {
			continue
		}

		header := fmt.Sprintf("%2d. %s", i+1, cli.BoldStyle.Render(venue.Name))
		fmt.Printf("%s  %s\n", header, scoreStyle(result.Score).Render(fmt.Sprintf("%d%%", result.Score)))
		if venue.Tagline != "" {
			fmt.Printf("    %s\n", cli.SubtleStyle.Render(venue.Tagline))
		}
		for _, reason := range result.Reasons {
			fmt.Printf("    %s %s\n", cli.InfoIcon, reason)
		}
		fmt.Println()
	}
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return cli.SuccessStyle
	case score >= 40:
		return cli.WarningStyle
	default:
		return cli.SubtleStyle
	}
}
