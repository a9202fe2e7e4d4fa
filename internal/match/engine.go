// Package match scores and ranks venues against a fused taste profile.
// Scoring is deterministic rule-based arithmetic; no learning, no
// randomness.
package match

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ceezaa/tasteflow/internal/model"
)

// Factor weights, fixed and summing to 1.0.
const (
	weightVibe     = 0.40
	weightCuisine  = 0.30
	weightPrice    = 0.20
	weightCategory = 0.10
)

// Factor names used in MatchResult.Factors and for reason tie-breaking.
const (
	factorVibe     = "vibe"
	factorCuisine  = "cuisine"
	factorPrice    = "price"
	factorCategory = "category"
)

// factorPriority breaks contribution ties when picking reasons.
var factorPriority = map[string]int{
	factorVibe:     0,
	factorCuisine:  1,
	factorPrice:    2,
	factorCategory: 3,
}

// Options tunes one ranking request. The zero value ranks every venue.
type Options struct {
	// Mood applies a ranking-only boost from the mood grid; the reported
	// score is never inflated by it.
	Mood string
	// MinScore drops venues scoring below the threshold. Zero keeps all,
	// including zero-score venues.
	MinScore int
	// Offset and Limit paginate the sorted result. Limit zero means no cap.
	Offset int
	Limit  int
}

// Engine ranks venues. Stateless and safe for concurrent use.
type Engine struct{}

// New creates a matching engine.
func New() *Engine {
	return &Engine{}
}

// Rank scores every venue against the profile and returns results sorted
// by score descending, rating descending with nulls last, then venue ID.
func (e *Engine) Rank(profile *model.FusedTasteProfile, venues []model.Venue, opts Options) []model.MatchResult {
	type ranked struct {
		result model.MatchResult
		venue  *model.Venue
		sortBy int
	}

	entries := make([]ranked, 0, len(venues))
	for i := range venues {
		venue := &venues[i]
		result := e.Score(profile, venue)
		if result.Score < opts.MinScore {
			continue
		}
		entries = append(entries, ranked{
			result: result,
			venue:  venue,
			sortBy: result.Score + MoodBoost(opts.Mood, venue),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].sortBy != entries[j].sortBy {
			return entries[i].sortBy > entries[j].sortBy
		}
		ri, rj := entries[i].venue.Rating, entries[j].venue.Rating
		switch {
		case ri != nil && rj == nil:
			return true
		case ri == nil && rj != nil:
			return false
		case ri != nil && rj != nil && *ri != *rj:
			return *ri > *rj
		}
		return entries[i].venue.ID < entries[j].venue.ID
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(entries) {
			entries = nil
		} else {
			entries = entries[opts.Offset:]
		}
	}
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	results := make([]model.MatchResult, len(entries))
	for i, entry := range entries {
		results[i] = entry.result
	}
	return results
}

// Score computes the match between one profile and one venue.
func (e *Engine) Score(profile *model.FusedTasteProfile, venue *model.Venue) model.MatchResult {
	factors := map[string]float64{
		factorVibe:     vibeOverlap(profile.Vibes, venue.VibeTags),
		factorCuisine:  cuisineMatch(profile.TopCuisines, venue.CuisineType),
		factorPrice:    priceMatch(profile.PriceTier, venue.PriceTier),
		factorCategory: categoryAffinity(profile, venue),
	}

	weighted := weightVibe*factors[factorVibe] +
		weightCuisine*factors[factorCuisine] +
		weightPrice*factors[factorPrice] +
		weightCategory*factors[factorCategory]

	score := int(math.Round(100 * weighted))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return model.MatchResult{
		VenueID: venue.ID,
		Score:   score,
		Factors: factors,
		Reasons: buildReasons(profile, venue, factors),
	}
}

// vibeOverlap is |profile ∩ venue| / max(|profile|, 1).
func vibeOverlap(profileVibes, venueVibes []string) float64 {
	if len(profileVibes) == 0 {
		return 0
	}
	venueSet := make(map[string]bool, len(venueVibes))
	for _, v := range venueVibes {
		venueSet[v] = true
	}
	overlap := 0
	for _, v := range profileVibes {
		if venueSet[v] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(profileVibes))
}

func cuisineMatch(topCuisines []string, cuisineType string) float64 {
	if cuisineType == "" {
		return 0
	}
	for _, c := range topCuisines {
		if c == cuisineType {
			return 1
		}
	}
	return 0
}

// priceMatch is binary on the declared tier carried through fusion.
func priceMatch(profileTier, venueTier model.PriceTier) float64 {
	if profileTier == "" || venueTier == "" {
		return 0
	}
	if profileTier == venueTier {
		return 1
	}
	return 0
}

// categoryAffinity weighs the profile's fused percentages by the venue's
// cluster weight map. For a single-cluster venue this reduces to
// percentage/100 on its taste cluster.
func categoryAffinity(profile *model.FusedTasteProfile, venue *model.Venue) float64 {
	weights := venue.EffectiveClusterWeights()
	if len(weights) == 0 {
		return 0
	}
	percentages := profile.CategoryPercentages()
	affinity := 0.0
	for cluster, weight := range weights {
		affinity += weight * percentages[cluster] / 100
	}
	return math.Min(math.Max(affinity, 0), 1)
}

// buildReasons turns the strongest contributing factors into up to 3
// display strings, ordered by contribution with fixed-priority ties.
func buildReasons(profile *model.FusedTasteProfile, venue *model.Venue, factors map[string]float64) []string {
	type contribution struct {
		factor string
		amount float64
	}
	contributions := []contribution{
		{factorVibe, weightVibe * factors[factorVibe]},
		{factorCuisine, weightCuisine * factors[factorCuisine]},
		{factorPrice, weightPrice * factors[factorPrice]},
		{factorCategory, weightCategory * factors[factorCategory]},
	}
	sort.Slice(contributions, func(i, j int) bool {
		if contributions[i].amount != contributions[j].amount {
			return contributions[i].amount > contributions[j].amount
		}
		return factorPriority[contributions[i].factor] < factorPriority[contributions[j].factor]
	})

	reasons := make([]string, 0, 3)
	for _, c := range contributions {
		if c.amount <= 0 || len(reasons) == 3 {
			break
		}
		if reason := reasonFor(c.factor, profile, venue); reason != "" {
			reasons = append(reasons, reason)
		}
	}
	return reasons
}

func reasonFor(factor string, profile *model.FusedTasteProfile, venue *model.Venue) string {
	switch factor {
	case factorVibe:
		venueSet := make(map[string]bool, len(venue.VibeTags))
		for _, v := range venue.VibeTags {
			venueSet[v] = true
		}
		for _, v := range profile.Vibes {
			if venueSet[v] {
				return fmt.Sprintf("Fits your %s vibe", v)
			}
		}
		return ""
	case factorCuisine:
		return fmt.Sprintf("Matches your %s preference", venue.CuisineType)
	case factorPrice:
		return "In your price range"
	case factorCategory:
		return fmt.Sprintf("You love %s spots", strings.ReplaceAll(venue.TasteCluster, "_", " "))
	}
	return ""
}
