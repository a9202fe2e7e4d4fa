// Package quiz converts onboarding quiz answers into a declared taste
// profile using deterministic answer tables.
package quiz

import (
	"log/slog"

	"github.com/ceezaa/tasteflow/internal/model"
)

// Builder turns ordered quiz answers into a DeclaredTaste. Each
// submission fully replaces the previous declared profile.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a quiz builder.
func NewBuilder() *Builder {
	return &Builder{logger: slog.Default().With("component", "quiz")}
}

// Build maps quiz answers to a declared taste profile. Unmapped question
// or answer IDs contribute nothing; they are logged but never fail the
// whole submission.
func (b *Builder) Build(answers []model.QuizAnswer) model.DeclaredTaste {
	taste := model.DeclaredTaste{
		CategoryWeights: make(map[string]float64),
	}

	var vibes []string
	seenVibes := make(map[string]bool)

	for _, answer := range answers {
		key, ok := questionKeys[answer.QuestionID]
		if !ok {
			b.logger.Warn("Unknown quiz question, skipping",
				"question_id", answer.QuestionID)
			continue
		}

		attrs, ok := quizMappings[key][answer.AnswerID]
		if !ok {
			b.logger.Warn("Unknown quiz answer, skipping",
				"question", key, "answer_id", answer.AnswerID)
			continue
		}

		for category, delta := range attrs.CategoryDeltas {
			taste.CategoryWeights[category] += delta
		}
		for _, vibe := range attrs.Vibes {
			if !seenVibes[vibe] {
				seenVibes[vibe] = true
				vibes = append(vibes, vibe)
			}
		}
		if attrs.Social != "" {
			taste.SocialPreference = attrs.Social
		}
		if attrs.Exploration != "" {
			taste.ExplorationStyle = attrs.Exploration
		}
		if attrs.Cuisine != "" {
			taste.CuisinePreferences = append(taste.CuisinePreferences, attrs.Cuisine)
		}
		if attrs.PriceTier != "" {
			taste.PriceTier = attrs.PriceTier
		}
	}

	// Clamp summed weights to [0,1].
	for category, weight := range taste.CategoryWeights {
		if weight > 1 {
			taste.CategoryWeights[category] = 1
		} else if weight < 0 {
			taste.CategoryWeights[category] = 0
		}
	}

	taste.Vibes = vibes
	return taste
}
