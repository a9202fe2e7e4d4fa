// Package taxonomy maps raw bank categorization onto the fixed set of
// taste categories used as the common currency across declared and
// observed taste.
package taxonomy

import (
	"strconv"
	"strings"
	"time"

	"github.com/ceezaa/tasteflow/internal/model"
)

// Taste categories. "other", "groceries" and "other_food" are tracked but
// excluded from percentage displays and recommendations.
const (
	Coffee        = "coffee"
	Dining        = "dining"
	FastFood      = "fast_food"
	Nightlife     = "nightlife"
	Groceries     = "groceries"
	Entertainment = "entertainment"
	Fitness       = "fitness"
	OtherFood     = "other_food"
	Other         = "other"
)

// rawToTaste maps personal_finance_category.detailed values onto taste
// categories. Anything unlisted falls through to "other".
var rawToTaste = map[string]string{
	"FOOD_AND_DRINK_COFFEE": Coffee,

	"FOOD_AND_DRINK_RESTAURANT":                  Dining,
	"FOOD_AND_DRINK_RESTAURANT_ASIAN":            Dining,
	"FOOD_AND_DRINK_RESTAURANT_EUROPEAN":         Dining,
	"FOOD_AND_DRINK_RESTAURANT_LATIN_AMERICAN":   Dining,
	"FOOD_AND_DRINK_RESTAURANT_AMERICAN":         Dining,
	"FOOD_AND_DRINK_RESTAURANT_INDIAN":           Dining,
	"FOOD_AND_DRINK_RESTAURANT_MIDDLE_EASTERN":   Dining,
	"FOOD_AND_DRINK_RESTAURANT_AFRICAN":          Dining,
	"FOOD_AND_DRINK_RESTAURANT_SEAFOOD":          Dining,
	"FOOD_AND_DRINK_RESTAURANT_STEAKHOUSE":       Dining,
	"FOOD_AND_DRINK_RESTAURANT_PIZZA":            Dining,
	"FOOD_AND_DRINK_RESTAURANT_SUSHI":            Dining,
	"FOOD_AND_DRINK_RESTAURANT_THAI":             Dining,
	"FOOD_AND_DRINK_RESTAURANT_VEGETARIAN_VEGAN": Dining,
	"FOOD_AND_DRINK_RESTAURANT_BAKERY":           Dining,
	"FOOD_AND_DRINK_RESTAURANT_CAFE":             Dining,
	"FOOD_AND_DRINK_RESTAURANT_BREAKFAST_BRUNCH": Dining,
	"FOOD_AND_DRINK_RESTAURANT_DELI":             Dining,
	"FOOD_AND_DRINK_RESTAURANT_JUICE_SMOOTHIE":   Dining,
	"FOOD_AND_DRINK_RESTAURANT_ICE_CREAM":        Dining,
	"FOOD_AND_DRINK_RESTAURANT_DESSERT":          Dining,

	"FOOD_AND_DRINK_FAST_FOOD": FastFood,

	"FOOD_AND_DRINK_BAR":          Nightlife,
	"FOOD_AND_DRINK_BAR_WINE":     Nightlife,
	"FOOD_AND_DRINK_BAR_BEER":     Nightlife,
	"FOOD_AND_DRINK_BAR_COCKTAIL": Nightlife,
	"FOOD_AND_DRINK_BAR_SPORTS":   Nightlife,
	"FOOD_AND_DRINK_NIGHTCLUB":    Nightlife,

	"FOOD_AND_DRINK_GROCERIES":                  Groceries,
	"FOOD_AND_DRINK_SUPERMARKETS_AND_GROCERIES": Groceries,

	"FOOD_AND_DRINK_OTHER":                OtherFood,
	"FOOD_AND_DRINK_BEER_WINE_AND_LIQUOR": OtherFood,
	"FOOD_AND_DRINK_VENDING_MACHINES":     OtherFood,
	"FOOD_AND_DRINK_CATERING":             OtherFood,
	"FOOD_AND_DRINK_FOOD_TRUCK":           OtherFood,

	"ENTERTAINMENT":                          Entertainment,
	"ENTERTAINMENT_CASINOS_AND_GAMBLING":     Entertainment,
	"ENTERTAINMENT_MUSIC_AND_AUDIO":          Entertainment,
	"ENTERTAINMENT_TV_AND_MOVIES":            Entertainment,
	"ENTERTAINMENT_VIDEO_GAMES":              Entertainment,
	"ENTERTAINMENT_NEWSPAPERS_AND_MAGAZINES": Entertainment,
	"ENTERTAINMENT_SPORTING_EVENTS_AMUSEMENT_PARKS_AND_MUSEUMS": Entertainment,

	"RECREATION_FITNESS":                     Fitness,
	"RECREATION_OUTDOORS":                    Fitness,
	"RECREATION_SPORTS_AND_FITNESS_CLASSES":  Fitness,
}

// cuisineByRaw extracts the cuisine hint that would otherwise be lost when
// a detailed restaurant category collapses into "dining".
var cuisineByRaw = map[string]string{
	"FOOD_AND_DRINK_RESTAURANT_ASIAN":            "asian",
	"FOOD_AND_DRINK_RESTAURANT_SUSHI":            "sushi",
	"FOOD_AND_DRINK_RESTAURANT_THAI":             "thai",
	"FOOD_AND_DRINK_RESTAURANT_INDIAN":           "indian",
	"FOOD_AND_DRINK_RESTAURANT_LATIN_AMERICAN":   "latin",
	"FOOD_AND_DRINK_RESTAURANT_EUROPEAN":         "european",
	"FOOD_AND_DRINK_RESTAURANT_AMERICAN":         "american",
	"FOOD_AND_DRINK_RESTAURANT_MIDDLE_EASTERN":   "middle_eastern",
	"FOOD_AND_DRINK_RESTAURANT_AFRICAN":          "african",
	"FOOD_AND_DRINK_RESTAURANT_SEAFOOD":          "seafood",
	"FOOD_AND_DRINK_RESTAURANT_STEAKHOUSE":       "steakhouse",
	"FOOD_AND_DRINK_RESTAURANT_PIZZA":            "pizza",
	"FOOD_AND_DRINK_RESTAURANT_VEGETARIAN_VEGAN": "vegetarian",
	"FOOD_AND_DRINK_RESTAURANT_BREAKFAST_BRUNCH": "brunch",
}

// colors keeps ring colors consistent across the app.
var colors = map[string]string{
	Coffee:        "#8B4513",
	Dining:        "#D4AF37",
	FastFood:      "#FF8C00",
	Nightlife:     "#4B0082",
	Entertainment: "#FF6347",
	Fitness:       "#32CD32",
	Groceries:     "#228B22",
	OtherFood:     "#CD853F",
	Other:         "#808080",
}

// categoryVibes are the vibe tags a dominant spending category contributes
// to a fused profile.
var categoryVibes = map[string][]string{
	Coffee:        {"chill", "cozy"},
	Dining:        {"social", "casual"},
	FastFood:      {"casual", "fun"},
	Nightlife:     {"energetic", "social"},
	Entertainment: {"fun", "energetic"},
	Fitness:       {"energetic"},
}

// hiddenFromDisplay are tracked but never shown in percentage breakdowns
// or used for recommendations.
var hiddenFromDisplay = map[string]bool{
	Other:     true,
	Groceries: true,
	OtherFood: true,
}

// Lookup maps a raw transaction category label to its taste category,
// defaulting to "other" for anything unknown.
func Lookup(rawCategory string) string {
	if taste, ok := rawToTaste[rawCategory]; ok {
		return taste
	}
	return Other
}

// Cuisine extracts the cuisine type from a raw category, or "" when the
// category carries no cuisine information.
func Cuisine(rawCategory string) string {
	return cuisineByRaw[rawCategory]
}

// Displayable reports whether a category participates in percentage
// displays and venue recommendations.
func Displayable(category string) bool {
	return !hiddenFromDisplay[category]
}

// Color returns the ring color for a category.
func Color(category string) string {
	if c, ok := colors[category]; ok {
		return c
	}
	return colors[Other]
}

// Vibes returns the vibe tags associated with a taste category.
func Vibes(category string) []string {
	return categoryVibes[category]
}

// FormatName turns a category key into its display form
// ("fast_food" → "Fast Food").
func FormatName(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Time-of-day buckets.
const (
	BucketMorning   = "morning"
	BucketAfternoon = "afternoon"
	BucketEvening   = "evening"
	BucketNight     = "night"

	DayWeekday = "weekday"
	DayWeekend = "weekend"
)

// TimeBucket buckets a timestamp into morning (6-12), afternoon (12-17),
// evening (17-21) or night.
func TimeBucket(t time.Time) string {
	switch hour := t.Hour(); {
	case hour >= 6 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 17:
		return BucketAfternoon
	case hour >= 17 && hour < 21:
		return BucketEvening
	default:
		return BucketNight
	}
}

// DayType classifies a timestamp as weekday or weekend.
func DayType(t time.Time) string {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return DayWeekend
	default:
		return DayWeekday
	}
}

// priceLevels orders the user price tiers for distance comparisons.
var priceLevels = map[model.PriceTier]int{
	model.PriceBudget:   0,
	model.PriceModerate: 1,
	model.PricePremium:  2,
	model.PriceLuxury:   3,
}

// PriceLevel returns the numeric level of a tier, defaulting to moderate
// for anything unknown.
func PriceLevel(tier model.PriceTier) int {
	if lvl, ok := priceLevels[tier]; ok {
		return lvl
	}
	return 1
}

// NormalizeVenuePrice converts the venue price formats seen in catalog
// feeds ("$$", "$10–20", "$32.00") into a price tier. Unparseable input
// defaults to moderate.
func NormalizeVenuePrice(price string) model.PriceTier {
	price = strings.TrimSpace(price)
	if price == "" {
		return model.PriceModerate
	}

	switch price {
	case "$":
		return model.PriceBudget
	case "$$":
		return model.PriceModerate
	case "$$$":
		return model.PricePremium
	case "$$$$":
		return model.PriceLuxury
	}

	// Range formats use an en-dash or hyphen: "$10–20", "$30-50", "$100+".
	normalized := strings.ReplaceAll(price, "–", "-")
	normalized = strings.TrimPrefix(normalized, "$")
	normalized = strings.TrimSuffix(normalized, "+")
	if idx := strings.Index(normalized, "-"); idx >= 0 {
		normalized = normalized[:idx]
	}
	normalized = strings.ReplaceAll(normalized, ",", "")

	amount, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return model.PriceModerate
	}
	switch {
	case amount < 15:
		return model.PriceBudget
	case amount < 40:
		return model.PriceModerate
	case amount < 100:
		return model.PricePremium
	default:
		return model.PriceLuxury
	}
}
