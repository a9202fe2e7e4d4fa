package titles

import "github.com/ceezaa/tasteflow/internal/model"

// Vibe groups that feed trait bonuses.
var (
	adventureVibes = map[string]bool{"adventurous": true, "trendy": true, "energetic": true, "fun": true}
	socialVibes    = map[string]bool{"social": true, "energetic": true, "fun": true, "lively": true}
	refinedVibes   = map[string]bool{"upscale": true, "elegant": true, "romantic": true, "intimate": true}
	cozyVibes      = map[string]bool{"chill": true, "cozy": true, "intimate": true, "relaxed": true, "homebody": true}
)

// Traits computes the four 0-100 trait scores shown on the profile card.
func Traits(declared model.DeclaredTaste) []model.TasteTrait {
	return []model.TasteTrait{
		{
			Name:        "Adventurous",
			Description: "You love trying new cuisines",
			Score:       adventureScore(declared),
			Color:       "#14B8A6",
		},
		{
			Name:        "Social",
			Description: "Dining is a group activity",
			Score:       socialScore(declared),
			Color:       "#0EA5E9",
		},
		{
			Name:        "Refined",
			Description: "Quality over quantity",
			Score:       refinedScore(declared),
			Color:       "#D3B481",
		},
		{
			Name:        "Cozy",
			Description: "Comfort food lover",
			Score:       cozyScore(declared),
			Color:       "#F59E0B",
		},
	}
}

func adventureScore(declared model.DeclaredTaste) int {
	base := 50
	switch declared.ExplorationStyle {
	case model.ExplorationRoutine:
		base = 30
	case model.ExplorationModerate:
		base = 55
	case model.ExplorationAdventurous:
		base = 80
	case model.ExplorationVeryAdventurous:
		base = 95
	}
	return clampScore(base + countVibes(declared.Vibes, adventureVibes)*5)
}

func socialScore(declared model.DeclaredTaste) int {
	base := 50
	switch declared.SocialPreference {
	case "solo":
		base = 25
	case "small_group":
		base = 55
	case "big_group":
		base = 85
	}
	return clampScore(base + countVibes(declared.Vibes, socialVibes)*10)
}

func refinedScore(declared model.DeclaredTaste) int {
	base := 50
	switch declared.PriceTier {
	case model.PriceBudget:
		base = 30
	case model.PriceModerate:
		base = 50
	case model.PricePremium:
		base = 75
	case model.PriceLuxury:
		base = 95
	}
	return clampScore(base + countVibes(declared.Vibes, refinedVibes)*10)
}

func cozyScore(declared model.DeclaredTaste) int {
	bonus := 10
	switch declared.ExplorationStyle {
	case model.ExplorationRoutine:
		bonus = 30
	case model.ExplorationModerate:
		bonus = 15
	case model.ExplorationAdventurous, model.ExplorationVeryAdventurous:
		bonus = 0
	}
	return clampScore(30 + countVibes(declared.Vibes, cozyVibes)*15 + bonus)
}

func countVibes(vibes []string, group map[string]bool) int {
	n := 0
	for _, v := range vibes {
		if group[v] {
			n++
		}
	}
	return n
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
