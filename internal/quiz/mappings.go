package quiz

import (
	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/taxonomy"
)

// answerAttributes are the taste attributes one quiz answer contributes.
// Category deltas from all answers are summed and clamped to [0,1].
type answerAttributes struct {
	CategoryDeltas map[string]float64
	Social         string
	Cuisine        string
	Exploration    model.ExplorationStyle
	PriceTier      model.PriceTier
	Vibes          []string
}

// questionKeys maps the frontend's numeric question IDs to stable keys.
var questionKeys = map[int]string{
	1: "ideal_friday",
	2: "food_adventure",
	3: "vibe_preference",
	4: "cuisine_preference",
	5: "budget_preference",
}

// quizMappings maps each (question, answer) pair to taste attributes.
// Answer IDs are "a" through "d", matching the mobile quiz screens.
var quizMappings = map[string]map[string]answerAttributes{
	// "What's your ideal Friday night?"
	"ideal_friday": {
		"a": { // Cozy dinner at a quiet spot
			Vibes:          []string{"chill", "intimate"},
			Social:         "small_group",
			CategoryDeltas: map[string]float64{taxonomy.Dining: 0.4, taxonomy.Coffee: 0.2},
		},
		"b": { // Lively bar with friends
			Vibes:          []string{"social", "energetic"},
			Social:         "big_group",
			CategoryDeltas: map[string]float64{taxonomy.Nightlife: 0.5, taxonomy.Dining: 0.2},
		},
		"c": { // Trying a new trendy restaurant
			Vibes:          []string{"trendy", "adventurous"},
			Exploration:    model.ExplorationAdventurous,
			CategoryDeltas: map[string]float64{taxonomy.Dining: 0.5, taxonomy.Entertainment: 0.1},
		},
		"d": { // Cooking at home
			Vibes:          []string{"chill", "homebody"},
			Social:         "solo",
			CategoryDeltas: map[string]float64{taxonomy.Coffee: 0.3, taxonomy.Groceries: 0.3},
		},
	},
	// "How adventurous are you with food?"
	"food_adventure": {
		"a": {Exploration: model.ExplorationRoutine},
		"b": {Exploration: model.ExplorationModerate},
		"c": {Exploration: model.ExplorationAdventurous},
		"d": {Exploration: model.ExplorationVeryAdventurous},
	},
	// "Pick your vibe:"
	"vibe_preference": {
		"a": { // Upscale & elegant
			Vibes:          []string{"upscale", "elegant"},
			CategoryDeltas: map[string]float64{taxonomy.Dining: 0.3},
		},
		"b": { // Casual & relaxed
			Vibes:          []string{"casual", "relaxed"},
			CategoryDeltas: map[string]float64{taxonomy.Coffee: 0.2, taxonomy.FastFood: 0.2},
		},
		"c": { // Energetic & fun
			Vibes:          []string{"energetic", "fun"},
			CategoryDeltas: map[string]float64{taxonomy.Nightlife: 0.3, taxonomy.Entertainment: 0.2},
		},
		"d": { // Intimate & romantic
			Vibes:          []string{"intimate", "romantic"},
			CategoryDeltas: map[string]float64{taxonomy.Dining: 0.3, taxonomy.Coffee: 0.1},
		},
	},
	// "Your go-to cuisine?"
	"cuisine_preference": {
		"a": {Cuisine: "italian", CategoryDeltas: map[string]float64{taxonomy.Dining: 0.2}},
		"b": {Cuisine: "asian", CategoryDeltas: map[string]float64{taxonomy.Dining: 0.2}},
		"c": {Cuisine: "american", CategoryDeltas: map[string]float64{taxonomy.Dining: 0.2}},
		"d": {Cuisine: "mediterranean", CategoryDeltas: map[string]float64{taxonomy.Dining: 0.2}},
	},
	// "Budget for a nice dinner?"
	"budget_preference": {
		"a": {PriceTier: model.PriceBudget},
		"b": {PriceTier: model.PriceModerate},
		"c": {PriceTier: model.PricePremium},
		"d": {PriceTier: model.PriceLuxury},
	},
}
