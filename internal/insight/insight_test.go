package insight

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/taxonomy"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func profileWithTotal(total int) *model.ObservedTasteProfile {
	profile := model.NewObservedTasteProfile("user-1")
	profile.TotalTransactions = total
	return profile
}

func TestGenerate_EmptyProfile(t *testing.T) {
	g := New()
	assert.Nil(t, g.Generate(context.Background(), nil))
	assert.Nil(t, g.Generate(context.Background(), profileWithTotal(0)))
}

func TestGenerate_Streak(t *testing.T) {
	g := New()
	profile := profileWithTotal(6)
	profile.Streaks[taxonomy.Coffee] = &model.StreakData{Current: 5, Longest: 7}
	profile.Streaks[taxonomy.Dining] = &model.StreakData{Current: 2, Longest: 2}

	insights := g.Generate(context.Background(), profile)
	require.NotEmpty(t, insights)
	assert.Equal(t, TypeStreak, insights[0].Type)
	assert.Equal(t, "Coffee Streak!", insights[0].Title)
	assert.Contains(t, insights[0].Body, "5 days straight")
}

func TestGenerate_StreakBelowThresholdSkipped(t *testing.T) {
	g := New()
	profile := profileWithTotal(4)
	profile.Streaks[taxonomy.Coffee] = &model.StreakData{Current: 2, Longest: 2}

	for _, insight := range g.Generate(context.Background(), profile) {
		assert.NotEqual(t, TypeStreak, insight.Type)
	}
}

func TestGenerate_Discovery(t *testing.T) {
	g := New()
	profile := profileWithTotal(10)
	profile.Exploration[taxonomy.Dining] = &model.ExplorationStat{Unique: 6, Total: 10}
	// Low volume category ignored.
	profile.Exploration[taxonomy.Coffee] = &model.ExplorationStat{Unique: 2, Total: 2}

	insights := g.Generate(context.Background(), profile)
	require.NotEmpty(t, insights)
	assert.Equal(t, TypeDiscovery, insights[0].Type)
	assert.Equal(t, "Explorer Mode", insights[0].Title)
	assert.Contains(t, insights[0].Body, "60%")
	assert.Contains(t, insights[0].Body, "dining")
}

func TestGenerate_TimePattern(t *testing.T) {
	g := New()
	profile := profileWithTotal(10)
	profile.TimePatterns.TimeOfDay[taxonomy.BucketMorning] = 8
	profile.TimePatterns.TimeOfDay[taxonomy.BucketEvening] = 2

	insights := g.Generate(context.Background(), profile)
	require.NotEmpty(t, insights)
	assert.Equal(t, TypePattern, insights[0].Type)
	assert.Equal(t, "Early Bird", insights[0].Title)
	assert.Contains(t, insights[0].Body, "80%")
}

func TestGenerate_WeekendPattern(t *testing.T) {
	g := New()
	profile := profileWithTotal(10)
	// Spread across times of day so no single bucket dominates.
	profile.TimePatterns.TimeOfDay[taxonomy.BucketMorning] = 5
	profile.TimePatterns.TimeOfDay[taxonomy.BucketEvening] = 5
	profile.TimePatterns.DayType[taxonomy.DayWeekend] = 8
	profile.TimePatterns.DayType[taxonomy.DayWeekday] = 2

	insights := g.Generate(context.Background(), profile)
	require.NotEmpty(t, insights)
	assert.Equal(t, "Weekend Warrior", insights[0].Title)
}

func TestGenerate_Milestone(t *testing.T) {
	g := New()

	insights := g.Generate(context.Background(), profileWithTotal(57))
	require.Len(t, insights, 1)
	assert.Equal(t, TypeMilestone, insights[0].Type)
	assert.Contains(t, insights[0].Body, "50")

	// Too few transactions for any milestone.
	assert.Empty(t, g.Generate(context.Background(), profileWithTotal(3)))
}

func TestGenerate_CapsAtThree(t *testing.T) {
	g := New()
	profile := profileWithTotal(30)
	profile.Streaks[taxonomy.Coffee] = &model.StreakData{Current: 4, Longest: 4}
	profile.Exploration[taxonomy.Dining] = &model.ExplorationStat{Unique: 8, Total: 10}
	profile.TimePatterns.TimeOfDay[taxonomy.BucketNight] = 20
	profile.TimePatterns.TimeOfDay[taxonomy.BucketMorning] = 10

	insights := g.Generate(context.Background(), profile)
	require.Len(t, insights, 3)
	assert.Equal(t, TypeStreak, insights[0].Type)
	assert.Equal(t, TypeDiscovery, insights[1].Type)
	assert.Equal(t, TypePattern, insights[2].Type)
}

func TestGenerate_ContentGeneratorPolish(t *testing.T) {
	stub := &stubGenerator{response: "Nice, 4 coffee days in a row!"}
	g := New(WithContentGenerator(stub))
	profile := profileWithTotal(10)
	profile.Streaks[taxonomy.Coffee] = &model.StreakData{Current: 4, Longest: 4}

	insights := g.Generate(context.Background(), profile)
	require.NotEmpty(t, insights)
	assert.Equal(t, "Nice, 4 coffee days in a row!", insights[0].Body)
	assert.NotEmpty(t, stub.prompts)
}

func TestGenerate_ContentGeneratorFailureFallsBack(t *testing.T) {
	stub := &stubGenerator{err: errors.New("api down")}
	g := New(WithContentGenerator(stub))
	profile := profileWithTotal(10)
	profile.Streaks[taxonomy.Coffee] = &model.StreakData{Current: 4, Longest: 4}

	insights := g.Generate(context.Background(), profile)
	require.NotEmpty(t, insights)
	assert.Contains(t, insights[0].Body, "4 days straight")
}
