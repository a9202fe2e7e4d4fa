package model

// Venue is one entry of the catalog produced by the offline tagging
// collaborator. Read-only to the matching engine.
type Venue struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	TasteCluster   string             `json:"taste_cluster"`
	CuisineType    string             `json:"cuisine_type,omitempty"`
	Energy         string             `json:"energy,omitempty"`
	Tagline        string             `json:"tagline,omitempty"`
	PriceTier      PriceTier          `json:"price_tier,omitempty"`
	ClusterWeights map[string]float64 `json:"taste_cluster_weights,omitempty"`
	VibeTags       []string           `json:"vibe_tags"`
	BestFor        []string           `json:"best_for,omitempty"`
	Standout       []string           `json:"standout,omitempty"`
	Rating         *float64           `json:"rating,omitempty"`
	Active         bool               `json:"active"`
}

// EffectiveClusterWeights returns the venue's category weight map, falling
// back to full weight on its primary taste cluster when the tagging
// collaborator supplied none.
func (v *Venue) EffectiveClusterWeights() map[string]float64 {
	if len(v.ClusterWeights) > 0 {
		return v.ClusterWeights
	}
	if v.TasteCluster == "" {
		return nil
	}
	return map[string]float64{v.TasteCluster: 1.0}
}

// MatchResult is the score of one venue against one fused profile.
// Ephemeral and recomputed per request.
type MatchResult struct {
	Factors map[string]float64 `json:"-"`
	VenueID string             `json:"venue_id"`
	Reasons []string           `json:"reasons"`
	Score   int                `json:"score"`
}
