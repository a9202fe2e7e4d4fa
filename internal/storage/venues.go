package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ceezaa/tasteflow/internal/model"
)

// SaveVenues upserts a batch of venues from the catalog feed in a single
// transaction. Venues absent from the batch keep their previous state;
// deactivation is an explicit active=false in the feed, not an omission.
func (s *SQLiteStorage) SaveVenues(ctx context.Context, venues []model.Venue) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(venues) == 0 {
		return nil
	}
	for i := range venues {
		if err := validateVenue(&venues[i]); err != nil {
			return fmt.Errorf("venue at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO venues (
			id, name, taste_cluster, cuisine_type, energy, tagline,
			price_tier, cluster_weights, vibe_tags, best_for, standout,
			rating, active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			taste_cluster = excluded.taste_cluster,
			cuisine_type = excluded.cuisine_type,
			energy = excluded.energy,
			tagline = excluded.tagline,
			price_tier = excluded.price_tier,
			cluster_weights = excluded.cluster_weights,
			vibe_tags = excluded.vibe_tags,
			best_for = excluded.best_for,
			standout = excluded.standout,
			rating = excluded.rating,
			active = excluded.active,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range venues {
		venue := &venues[i]

		weights, err := marshalJSONColumn(venue.ClusterWeights)
		if err != nil {
			return fmt.Errorf("venue %s: %w", venue.ID, err)
		}
		vibes, err := marshalJSONColumn(venue.VibeTags)
		if err != nil {
			return fmt.Errorf("venue %s: %w", venue.ID, err)
		}
		bestFor, err := marshalJSONColumn(venue.BestFor)
		if err != nil {
			return fmt.Errorf("venue %s: %w", venue.ID, err)
		}
		standout, err := marshalJSONColumn(venue.Standout)
		if err != nil {
			return fmt.Errorf("venue %s: %w", venue.ID, err)
		}

		var rating sql.NullFloat64
		if venue.Rating != nil {
			rating = sql.NullFloat64{Float64: *venue.Rating, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			venue.ID, venue.Name, venue.TasteCluster, venue.CuisineType,
			venue.Energy, venue.Tagline, string(venue.PriceTier),
			weights, vibes, bestFor, standout, rating, venue.Active,
		); err != nil {
			return fmt.Errorf("failed to save venue %s: %w", venue.ID, err)
		}
	}

	return tx.Commit()
}

// GetActiveVenues returns active venues, optionally filtered to one taste
// cluster, ordered by ID for deterministic downstream scoring.
func (s *SQLiteStorage) GetActiveVenues(ctx context.Context, tasteCluster string) ([]model.Venue, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, taste_cluster, cuisine_type, energy, tagline,
		       price_tier, cluster_weights, vibe_tags, best_for, standout,
		       rating, active
		FROM venues
		WHERE active = 1`
	args := []any{}
	if tasteCluster != "" {
		query += ` AND taste_cluster = ?`
		args = append(args, tasteCluster)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var venues []model.Venue
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, venue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate venues: %w", err)
	}
	return venues, nil
}

func scanVenue(rows *sql.Rows) (model.Venue, error) {
	var (
		venue    model.Venue
		cuisine  sql.NullString
		energy   sql.NullString
		tagline  sql.NullString
		weights  sql.NullString
		vibes    sql.NullString
		bestFor  sql.NullString
		standout sql.NullString
		rating   sql.NullFloat64
	)
	if err := rows.Scan(
		&venue.ID, &venue.Name, &venue.TasteCluster, &cuisine, &energy,
		&tagline, &venue.PriceTier, &weights, &vibes, &bestFor, &standout,
		&rating, &venue.Active,
	); err != nil {
		return model.Venue{}, fmt.Errorf("failed to scan venue: %w", err)
	}

	venue.CuisineType = cuisine.String
	venue.Energy = energy.String
	venue.Tagline = tagline.String
	if rating.Valid {
		venue.Rating = &rating.Float64
	}

	if err := unmarshalJSONColumn(weights, &venue.ClusterWeights); err != nil {
		return model.Venue{}, fmt.Errorf("venue %s cluster weights: %w", venue.ID, err)
	}
	if err := unmarshalJSONColumn(vibes, &venue.VibeTags); err != nil {
		return model.Venue{}, fmt.Errorf("venue %s vibe tags: %w", venue.ID, err)
	}
	if err := unmarshalJSONColumn(bestFor, &venue.BestFor); err != nil {
		return model.Venue{}, fmt.Errorf("venue %s best_for: %w", venue.ID, err)
	}
	if err := unmarshalJSONColumn(standout, &venue.Standout); err != nil {
		return model.Venue{}, fmt.Errorf("venue %s standout: %w", venue.ID, err)
	}

	return venue, nil
}

func marshalJSONColumn(v any) (string, error) {
	switch val := v.(type) {
	case map[string]float64:
		if len(val) == 0 {
			return "", nil
		}
	case []string:
		if len(val) == 0 {
			return "", nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal column: %w", err)
	}
	return string(data), nil
}

func unmarshalJSONColumn(col sql.NullString, dest any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(col.String), dest); err != nil {
		return fmt.Errorf("failed to unmarshal column: %w", err)
	}
	return nil
}
