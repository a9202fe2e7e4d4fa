package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/taxonomy"
)

func fullQuiz(answerIDs ...string) []model.QuizAnswer {
	answers := make([]model.QuizAnswer, len(answerIDs))
	for i, id := range answerIDs {
		answers[i] = model.QuizAnswer{QuestionID: i + 1, AnswerID: id}
	}
	return answers
}

func TestBuild(t *testing.T) {
	b := NewBuilder()
	taste := b.Build(fullQuiz("c", "c", "c", "b", "c"))

	// Friday c (dining .5) + vibe c + cuisine b (dining .2) sum dining .7.
	assert.InDelta(t, 0.7, taste.CategoryWeights[taxonomy.Dining], 1e-9)
	assert.InDelta(t, 0.3, taste.CategoryWeights[taxonomy.Nightlife], 1e-9)
	assert.Equal(t, model.ExplorationAdventurous, taste.ExplorationStyle)
	assert.Equal(t, model.PricePremium, taste.PriceTier)
	assert.Equal(t, []string{"asian"}, taste.CuisinePreferences)
	assert.Equal(t, []string{"trendy", "adventurous", "energetic", "fun"}, taste.Vibes)
}

func TestBuild_WeightsClampedToOne(t *testing.T) {
	b := NewBuilder()
	// Stack every dining-heavy answer.
	taste := b.Build(fullQuiz("c", "d", "a", "a", "d"))

	for category, weight := range taste.CategoryWeights {
		assert.LessOrEqual(t, weight, 1.0, "category %s", category)
		assert.GreaterOrEqual(t, weight, 0.0, "category %s", category)
	}
}

func TestBuild_VibesDeduplicated(t *testing.T) {
	b := NewBuilder()
	// Friday a and vibe d both contribute "intimate".
	taste := b.Build(fullQuiz("a", "a", "d", "a", "a"))

	seen := make(map[string]int)
	for _, vibe := range taste.Vibes {
		seen[vibe]++
	}
	for vibe, count := range seen {
		assert.Equal(t, 1, count, "vibe %s repeated", vibe)
	}
	assert.Contains(t, taste.Vibes, "intimate")
}

func TestBuild_UnknownIDsSkipped(t *testing.T) {
	b := NewBuilder()
	taste := b.Build([]model.QuizAnswer{
		{QuestionID: 99, AnswerID: "a"},
		{QuestionID: 1, AnswerID: "z"},
		{QuestionID: 2, AnswerID: "d"},
	})

	assert.Empty(t, taste.CategoryWeights)
	assert.Equal(t, model.ExplorationVeryAdventurous, taste.ExplorationStyle)
}

func TestBuild_LastAnswerWinsForScalars(t *testing.T) {
	b := NewBuilder()
	taste := b.Build([]model.QuizAnswer{
		{QuestionID: 5, AnswerID: "a"},
		{QuestionID: 5, AnswerID: "d"},
	})
	assert.Equal(t, model.PriceLuxury, taste.PriceTier)
}

func TestBuild_Deterministic(t *testing.T) {
	b := NewBuilder()
	answers := fullQuiz("b", "c", "c", "b", "b")

	first := b.Build(answers)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, b.Build(answers))
	}
}

func TestQuestionsMatchMappings(t *testing.T) {
	for _, question := range Questions() {
		key, ok := questionKeys[question.ID]
		require.True(t, ok, "question %d has no mapping key", question.ID)
		for _, choice := range question.Choices {
			_, ok := quizMappings[key][choice.ID]
			assert.True(t, ok, "question %d answer %s unmapped", question.ID, choice.ID)
		}
	}
}
