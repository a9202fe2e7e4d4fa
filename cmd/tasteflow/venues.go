package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ceezaa/tasteflow/internal/cli"
	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/taxonomy"
)

func venuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "Manage the venue catalog",
	}

	cmd.AddCommand(venuesImportCmd())

	return cmd
}

func venuesImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a venue catalog slice from JSON",
		Long: `Load venues produced by the offline tagging pipeline into storage.

Venues without an ID get one assigned. Price strings in feed formats
("$$", "$10-20", "$45") are normalized to price tiers. Re-importing a
venue updates it in place.`,
		Args: cobra.ExactArgs(1),
		RunE: runVenuesImport,
	}

	cmd.Flags().Bool("dry-run", false, "parse and validate without saving")

	return cmd
}

// venueFeedEntry is the tagging pipeline's JSON shape. It matches
// model.Venue except that price arrives as a free-form string.
type venueFeedEntry struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	TasteCluster   string             `json:"taste_cluster"`
	CuisineType    string             `json:"cuisine_type"`
	Energy         string             `json:"energy"`
	Tagline        string             `json:"tagline"`
	Price          string             `json:"price"`
	ClusterWeights map[string]float64 `json:"taste_cluster_weights"`
	VibeTags       []string           `json:"vibe_tags"`
	BestFor        []string           `json:"best_for"`
	Standout       []string           `json:"standout"`
	Rating         *float64           `json:"rating"`
}

func runVenuesImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(args[0]) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to read venue file: %w", err)
	}

	var entries []venueFeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse venue file: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println(cli.FormatWarning("Venue file is empty, nothing to import."))
		return nil
	}

	bar := progressbar.NewOptions(len(entries),
		progressbar.OptionSetDescription("Importing venues"),
		progressbar.OptionSetWriter(os.Stderr))

	venues := make([]model.Venue, 0, len(entries))
	for _, entry := range entries {
		id := entry.ID
		if id == "" {
			id = uuid.NewString()
		}
		venues = append(venues, model.Venue{
			ID:             id,
			Name:           entry.Name,
			TasteCluster:   entry.TasteCluster,
			CuisineType:    entry.CuisineType,
			Energy:         entry.Energy,
			Tagline:        entry.Tagline,
			PriceTier:      taxonomy.NormalizeVenuePrice(entry.Price),
			ClusterWeights: entry.ClusterWeights,
			VibeTags:       entry.VibeTags,
			BestFor:        entry.BestFor,
			Standout:       entry.Standout,
			Rating:         entry.Rating,
			Active:         true,
		})
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Println()

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("Dry run: parsed %d venues, not saving.", len(venues))))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveVenues(ctx, venues); err != nil {
		return fmt.Errorf("failed to save venues: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d venues.", len(venues))))
	return nil
}
