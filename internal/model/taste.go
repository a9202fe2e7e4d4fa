package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryStat holds the incremental aggregate for one (user, taste
// category) pair. Count always equals the sum of MerchantFrequency values.
type CategoryStat struct {
	LastSeenAt        time.Time       `json:"last_seen_at"`
	MerchantFrequency map[string]int  `json:"merchant_frequency"`
	TotalSpend        decimal.Decimal `json:"total_spend"`
	Count             int             `json:"count"`
}

// NewCategoryStat returns an empty stat ready for incremental updates.
func NewCategoryStat() *CategoryStat {
	return &CategoryStat{
		TotalSpend:        decimal.Zero,
		MerchantFrequency: make(map[string]int),
	}
}

// IsZero reports whether the stat carries no live contributions.
func (s *CategoryStat) IsZero() bool {
	return s.Count == 0 && s.TotalSpend.IsZero()
}

// TimePattern tracks when a user transacts, bucketed by time of day and
// weekday/weekend.
type TimePattern struct {
	TimeOfDay map[string]int `json:"time_of_day_buckets"`
	DayType   map[string]int `json:"day_type_buckets"`
}

// NewTimePattern returns an empty pattern with initialized maps.
func NewTimePattern() TimePattern {
	return TimePattern{
		TimeOfDay: make(map[string]int),
		DayType:   make(map[string]int),
	}
}

// MerchantVisit records global visit frequency and recency for a merchant.
type MerchantVisit struct {
	LastVisit time.Time `json:"last_visit"`
	Merchant  string    `json:"merchant"`
	Name      string    `json:"name"`
	Count     int       `json:"count"`
}

// StreakData tracks consecutive-day visit streaks for a category.
type StreakData struct {
	LastDate time.Time `json:"last_date"`
	Current  int       `json:"current"`
	Longest  int       `json:"longest"`
}

// ExplorationStat tracks unique versus total merchant visits per category.
type ExplorationStat struct {
	Unique int `json:"unique"`
	Total  int `json:"total"`
}

// ObservedTasteProfile is the per-user aggregate maintained by the
// aggregation engine. It is owned and exclusively mutated by that engine;
// every other component reads snapshots only.
type ObservedTasteProfile struct {
	FirstSeenAt       time.Time                   `json:"first_seen_at"`
	LastSeenAt        time.Time                   `json:"last_seen_at"`
	Categories        map[string]*CategoryStat    `json:"categories"`
	MerchantVisits    map[string]*MerchantVisit   `json:"merchant_visits"`
	Cuisines          map[string]int              `json:"cuisines"`
	Streaks           map[string]*StreakData      `json:"streaks"`
	Exploration       map[string]*ExplorationStat `json:"exploration"`
	UserID            string                      `json:"user_id"`
	TimePatterns      TimePattern                 `json:"time_patterns"`
	TotalTransactions int                         `json:"total_transactions"`
	Version           int                         `json:"version"`
}

// NewObservedTasteProfile returns a fresh, empty profile for a user.
func NewObservedTasteProfile(userID string) *ObservedTasteProfile {
	return &ObservedTasteProfile{
		UserID:         userID,
		Categories:     make(map[string]*CategoryStat),
		MerchantVisits: make(map[string]*MerchantVisit),
		Cuisines:       make(map[string]int),
		Streaks:        make(map[string]*StreakData),
		Exploration:    make(map[string]*ExplorationStat),
		TimePatterns:   NewTimePattern(),
	}
}

// TopMerchants returns merchants ordered by visit frequency descending,
// then recency descending, then merchant key for determinism.
func (p *ObservedTasteProfile) TopMerchants(limit int) []MerchantVisit {
	visits := make([]MerchantVisit, 0, len(p.MerchantVisits))
	for _, v := range p.MerchantVisits {
		if v.Count > 0 {
			visits = append(visits, *v)
		}
	}
	sort.Slice(visits, func(i, j int) bool {
		if visits[i].Count != visits[j].Count {
			return visits[i].Count > visits[j].Count
		}
		if !visits[i].LastVisit.Equal(visits[j].LastVisit) {
			return visits[i].LastVisit.After(visits[j].LastVisit)
		}
		return visits[i].Merchant < visits[j].Merchant
	})
	if limit > 0 && len(visits) > limit {
		visits = visits[:limit]
	}
	return visits
}

// TopCuisines returns observed cuisines ordered by transaction count
// descending, ties broken by name.
func (p *ObservedTasteProfile) TopCuisines(limit int) []string {
	type cuisineCount struct {
		name  string
		count int
	}
	counts := make([]cuisineCount, 0, len(p.Cuisines))
	for name, count := range p.Cuisines {
		if count > 0 {
			counts = append(counts, cuisineCount{name, count})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].name < counts[j].name
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.name
	}
	return names
}

// DistinctMerchants counts merchants with at least one live visit.
func (p *ObservedTasteProfile) DistinctMerchants() int {
	n := 0
	for _, v := range p.MerchantVisits {
		if v.Count > 0 {
			n++
		}
	}
	return n
}

// PriceTier is a user or venue price band.
type PriceTier string

const (
	// PriceBudget is the lowest tier (under $30 for a dinner).
	PriceBudget PriceTier = "budget"
	// PriceModerate covers $30-60.
	PriceModerate PriceTier = "moderate"
	// PricePremium covers $60-100.
	PricePremium PriceTier = "premium"
	// PriceLuxury is uncapped.
	PriceLuxury PriceTier = "luxury"
)

// ExplorationStyle describes how willing a user is to try new places.
type ExplorationStyle string

const (
	// ExplorationRoutine sticks to known favorites.
	ExplorationRoutine ExplorationStyle = "routine"
	// ExplorationModerate is open to suggestions.
	ExplorationModerate ExplorationStyle = "moderate"
	// ExplorationAdventurous loves trying new things.
	ExplorationAdventurous ExplorationStyle = "adventurous"
	// ExplorationVeryAdventurous seeks out the unusual.
	ExplorationVeryAdventurous ExplorationStyle = "very_adventurous"
)

// DeclaredTaste is the preference profile stated via the onboarding quiz.
// It is produced whole on each quiz submission and replaced, never merged.
type DeclaredTaste struct {
	CategoryWeights    map[string]float64 `json:"category_weights"`
	SocialPreference   string             `json:"social_preference,omitempty"`
	ExplorationStyle   ExplorationStyle   `json:"exploration_style,omitempty"`
	PriceTier          PriceTier          `json:"price_tier,omitempty"`
	Vibes              []string           `json:"vibes"`
	CuisinePreferences []string           `json:"cuisine_preferences"`
	Version            int                `json:"version"`
}

// FusedCategory is one slice of the fused taste breakdown. Percentages
// across a profile's categories sum to exactly 100.
type FusedCategory struct {
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	TotalSpend decimal.Decimal `json:"total_spend"`
	Percentage float64         `json:"percentage"`
	Count      int             `json:"count"`
}

// FusedTasteProfile is the confidence-weighted combination of declared and
// observed taste. It is a pure function of its two inputs and is never
// mutated independently.
type FusedTasteProfile struct {
	SocialPreference string           `json:"social_preference,omitempty"`
	ExplorationStyle ExplorationStyle `json:"exploration_style,omitempty"`
	PriceTier        PriceTier        `json:"price_tier,omitempty"`
	Categories       []FusedCategory  `json:"categories"`
	Vibes            []string         `json:"vibes"`
	TopCuisines      []string         `json:"top_cuisines"`
	ExplorationRatio float64          `json:"exploration_ratio"`
	Confidence       float64          `json:"confidence"`
	QuizWeight       float64          `json:"quiz_weight"`
	TxWeight         float64          `json:"tx_weight"`
}

// CategoryPercentages returns the fused breakdown as a name → percentage
// map for affinity lookups.
func (p *FusedTasteProfile) CategoryPercentages() map[string]float64 {
	out := make(map[string]float64, len(p.Categories))
	for _, c := range p.Categories {
		out[c.Name] = c.Percentage
	}
	return out
}

// RingSegment is one arc of the taste ring visualization.
type RingSegment struct {
	Category   string  `json:"category"`
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
}

// ProfileTitle is the display title attached to a taste profile.
type ProfileTitle struct {
	Title   string `json:"title"`
	Tagline string `json:"tagline"`
}

// TasteTrait is a single 0-100 trait score derived from declared taste.
type TasteTrait struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Score       int    `json:"score"`
}
