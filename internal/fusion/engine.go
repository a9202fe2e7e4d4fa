// Package fusion combines declared and observed taste into a single
// confidence-weighted profile.
package fusion

import (
	"math"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/taxonomy"
)

// signalSaturation is the transaction count at which observed signal is
// considered fully established. Both the observed weight ramp and the
// confidence value are n/signalSaturation.
const signalSaturation = 50

// maxTxWeight caps observed influence so a single heavy spending category
// can never fully override stated preference.
const maxTxWeight = 0.7

// maxTopCuisines bounds the fused cuisine list.
const maxTopCuisines = 5

type cacheKey struct {
	userID            string
	declaredVersion   int
	totalTransactions int
}

// Engine fuses taste profiles. Fusion itself is a pure function; the
// engine only adds a cache keyed by the two inputs' versions, so a cached
// entry can never be stale.
type Engine struct {
	mu    sync.Mutex
	cache map[cacheKey]*model.FusedTasteProfile
}

// New creates a fusion engine with an empty cache.
func New() *Engine {
	return &Engine{cache: make(map[cacheKey]*model.FusedTasteProfile)}
}

// Fuse combines a declared profile with observed statistics for one user.
// A nil observed profile means no transactions: the result is the pure
// declared profile with tx_weight and confidence zero. Declared versions
// are per-user, so the cache is keyed by the caller's user ID rather than
// the observed profile's.
func (e *Engine) Fuse(userID string, declared model.DeclaredTaste, observed *model.ObservedTasteProfile) *model.FusedTasteProfile {
	key := cacheKey{userID: userID, declaredVersion: declared.Version}
	if observed != nil {
		key.totalTransactions = observed.TotalTransactions
	}

	e.mu.Lock()
	if cached, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return cached
	}
	e.mu.Unlock()

	fused := fuse(declared, observed)

	e.mu.Lock()
	// Crude bound; fine for the handful of live keys per user.
	if len(e.cache) > 256 {
		e.cache = make(map[cacheKey]*model.FusedTasteProfile)
	}
	e.cache[key] = fused
	e.mu.Unlock()

	return fused
}

func fuse(declared model.DeclaredTaste, observed *model.ObservedTasteProfile) *model.FusedTasteProfile {
	total := 0
	if observed != nil {
		total = observed.TotalTransactions
	}

	txWeight := math.Min(float64(total)/signalSaturation, maxTxWeight)
	quizWeight := 1 - txWeight
	confidence := math.Min(float64(total)/signalSaturation, 1.0)

	raw := make(map[string]float64)
	for category, weight := range declared.CategoryWeights {
		if !taxonomy.Displayable(category) {
			continue
		}
		raw[category] += quizWeight * weight * 100
	}
	if observed != nil && total > 0 {
		for category, stat := range observed.Categories {
			if stat.Count <= 0 || !taxonomy.Displayable(category) {
				continue
			}
			observedPct := 100 * float64(stat.Count) / float64(total)
			raw[category] += txWeight * observedPct
		}
	}

	categories := buildCategories(raw, observed)

	profile := &model.FusedTasteProfile{
		SocialPreference: declared.SocialPreference,
		ExplorationStyle: declared.ExplorationStyle,
		PriceTier:        declared.PriceTier,
		Categories:       categories,
		ExplorationRatio: explorationRatio(observed, total),
		Confidence:       confidence,
		QuizWeight:       quizWeight,
		TxWeight:         txWeight,
	}

	profile.Vibes = fuseVibes(declared.Vibes, categories)
	profile.TopCuisines = fuseCuisines(declared.CuisinePreferences, observed)

	if profile.ExplorationStyle == "" && total > 0 {
		profile.ExplorationStyle = styleFromRatio(profile.ExplorationRatio)
	}

	return profile
}

// buildCategories scales the blended weights so they sum to 100, rounds
// to one decimal, and pins the sum to exactly 100 by pushing the rounding
// remainder onto the largest category. Scaling happens before rounding
// because declared weights carry no sum constraint, so the raw blend can
// land anywhere.
func buildCategories(raw map[string]float64, observed *model.ObservedTasteProfile) []model.FusedCategory {
	rawSum := 0.0
	for _, pct := range raw {
		if pct > 0 {
			rawSum += pct
		}
	}
	if rawSum == 0 {
		return nil
	}

	categories := make([]model.FusedCategory, 0, len(raw))
	for name, pct := range raw {
		if pct <= 0 {
			continue
		}
		fc := model.FusedCategory{
			Name:       name,
			Color:      taxonomy.Color(name),
			Percentage: math.Round(pct/rawSum*1000) / 10,
			TotalSpend: decimal.Zero,
		}
		if observed != nil {
			if stat, ok := observed.Categories[name]; ok && stat.Count > 0 {
				fc.Count = stat.Count
				fc.TotalSpend = stat.TotalSpend
			}
		}
		categories = append(categories, fc)
	}
	if len(categories) == 0 {
		return categories
	}

	// Percentage desc, then observed count desc, then name. The head of
	// this ordering is the dominant category.
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Percentage != categories[j].Percentage {
			return categories[i].Percentage > categories[j].Percentage
		}
		if categories[i].Count != categories[j].Count {
			return categories[i].Count > categories[j].Count
		}
		return categories[i].Name < categories[j].Name
	})

	sum := 0.0
	for _, c := range categories {
		sum += c.Percentage
	}
	remainder := math.Round((100-sum)*10) / 10
	if remainder != 0 {
		categories[0].Percentage = math.Round((categories[0].Percentage+remainder)*10) / 10
	}

	return categories
}

// fuseVibes merges declared vibes with the dominant category's vibe tags,
// preserving declared order and deduplicating.
func fuseVibes(declared []string, categories []model.FusedCategory) []string {
	vibes := make([]string, 0, len(declared)+2)
	seen := make(map[string]bool)
	for _, v := range declared {
		if !seen[v] {
			seen[v] = true
			vibes = append(vibes, v)
		}
	}
	if len(categories) > 0 {
		for _, v := range taxonomy.Vibes(categories[0].Name) {
			if !seen[v] {
				seen[v] = true
				vibes = append(vibes, v)
			}
		}
	}
	return vibes
}

// fuseCuisines lists declared cuisine preferences first, then fills the
// remaining slots with the most-observed cuisines.
func fuseCuisines(declared []string, observed *model.ObservedTasteProfile) []string {
	cuisines := make([]string, 0, maxTopCuisines)
	seen := make(map[string]bool)
	for _, c := range declared {
		if len(cuisines) == maxTopCuisines {
			return cuisines
		}
		if !seen[c] {
			seen[c] = true
			cuisines = append(cuisines, c)
		}
	}
	if observed != nil {
		for _, c := range observed.TopCuisines(maxTopCuisines) {
			if len(cuisines) == maxTopCuisines {
				break
			}
			if !seen[c] {
				seen[c] = true
				cuisines = append(cuisines, c)
			}
		}
	}
	return cuisines
}

func explorationRatio(observed *model.ObservedTasteProfile, total int) float64 {
	if observed == nil || total == 0 {
		return 0
	}
	ratio := float64(observed.DistinctMerchants()) / float64(total)
	return math.Min(math.Max(ratio, 0), 1)
}

// styleFromRatio derives an exploration style from observed variety when
// the quiz never stated one.
func styleFromRatio(ratio float64) model.ExplorationStyle {
	switch {
	case ratio >= 0.7:
		return model.ExplorationVeryAdventurous
	case ratio >= 0.5:
		return model.ExplorationAdventurous
	case ratio >= 0.3:
		return model.ExplorationModerate
	default:
		return model.ExplorationRoutine
	}
}
