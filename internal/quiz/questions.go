package quiz

// Choice is one selectable quiz answer.
type Choice struct {
	ID   string
	Text string
}

// Question is one onboarding quiz screen.
type Question struct {
	ID      int
	Prompt  string
	Choices []Choice
}

// Questions returns the onboarding quiz in display order. Answer IDs line
// up with the mapping tables in this package.
func Questions() []Question {
	return []Question{
		{
			ID:     1,
			Prompt: "What's your ideal Friday night?",
			Choices: []Choice{
				{ID: "a", Text: "Cozy dinner at a quiet spot"},
				{ID: "b", Text: "Lively bar with friends"},
				{ID: "c", Text: "Trying a new trendy restaurant"},
				{ID: "d", Text: "Cooking at home"},
			},
		},
		{
			ID:     2,
			Prompt: "How adventurous are you with food?",
			Choices: []Choice{
				{ID: "a", Text: "I stick to my favorites"},
				{ID: "b", Text: "Open to suggestions"},
				{ID: "c", Text: "I love trying new things"},
				{ID: "d", Text: "The weirder, the better"},
			},
		},
		{
			ID:     3,
			Prompt: "Pick your vibe:",
			Choices: []Choice{
				{ID: "a", Text: "Upscale & elegant"},
				{ID: "b", Text: "Casual & relaxed"},
				{ID: "c", Text: "Energetic & fun"},
				{ID: "d", Text: "Intimate & romantic"},
			},
		},
		{
			ID:     4,
			Prompt: "Your go-to cuisine?",
			Choices: []Choice{
				{ID: "a", Text: "Italian"},
				{ID: "b", Text: "Asian"},
				{ID: "c", Text: "American"},
				{ID: "d", Text: "Mediterranean"},
			},
		},
		{
			ID:     5,
			Prompt: "Budget for a nice dinner?",
			Choices: []Choice{
				{ID: "a", Text: "Under $30"},
				{ID: "b", Text: "$30-60"},
				{ID: "c", Text: "$60-100"},
				{ID: "d", Text: "Sky's the limit"},
			},
		},
	}
}
