// Package insight derives short, human-readable observations from a
// user's observed taste profile. Generation is rule-based and
// deterministic; an optional content generator may rephrase the copy but
// insights never depend on one being available.
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/service"
	"github.com/ceezaa/tasteflow/internal/taxonomy"
)

// Insight types.
const (
	TypeStreak    = "streak"
	TypeDiscovery = "discovery"
	TypePattern   = "pattern"
	TypeMilestone = "milestone"
)

const maxInsights = 3

// Insight is one observation about the user's habits.
type Insight struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Generator produces insights from observed profiles.
type Generator struct {
	content service.ContentGenerator
	logger  *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithContentGenerator lets an external generator rephrase insight copy.
// Failures fall back to the rule-based text.
func WithContentGenerator(content service.ContentGenerator) Option {
	return func(g *Generator) {
		g.content = content
	}
}

// New creates an insight generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		logger: slog.Default().With("component", "insight"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns up to three insights for the profile, most interesting
// first. An empty profile yields no insights.
func (g *Generator) Generate(ctx context.Context, profile *model.ObservedTasteProfile) []Insight {
	if profile == nil || profile.TotalTransactions == 0 {
		return nil
	}

	insights := make([]Insight, 0, maxInsights)
	if streak, ok := streakInsight(profile); ok {
		insights = append(insights, streak)
	}
	if discovery, ok := discoveryInsight(profile); ok {
		insights = append(insights, discovery)
	}
	if pattern, ok := patternInsight(profile); ok {
		insights = append(insights, pattern)
	}
	if milestone, ok := milestoneInsight(profile); ok {
		insights = append(insights, milestone)
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}

	if g.content != nil {
		insights = g.polish(ctx, insights)
	}
	return insights
}

// streakInsight reports the longest currently-running category streak of
// at least three days.
func streakInsight(profile *model.ObservedTasteProfile) (Insight, bool) {
	bestCategory := ""
	bestCurrent := 0
	for category, streak := range profile.Streaks {
		if !taxonomy.Displayable(category) {
			continue
		}
		if streak.Current > bestCurrent ||
			(streak.Current == bestCurrent && category < bestCategory) {
			bestCategory = category
			bestCurrent = streak.Current
		}
	}
	if bestCurrent < 3 {
		return Insight{}, false
	}
	return Insight{
		Type:  TypeStreak,
		Title: fmt.Sprintf("%s Streak!", taxonomy.FormatName(bestCategory)),
		Body:  fmt.Sprintf("%d days straight of %s", bestCurrent, strings.ReplaceAll(bestCategory, "_", " ")),
	}, true
}

// discoveryInsight fires when at least half the visits in a category with
// real volume were to new places.
func discoveryInsight(profile *model.ObservedTasteProfile) (Insight, bool) {
	type candidate struct {
		category string
		ratio    float64
		total    int
	}
	var candidates []candidate
	for category, stat := range profile.Exploration {
		if !taxonomy.Displayable(category) || stat.Total < 5 {
			continue
		}
		ratio := float64(stat.Unique) / float64(stat.Total)
		if ratio >= 0.5 {
			candidates = append(candidates, candidate{category, ratio, stat.Total})
		}
	}
	if len(candidates) == 0 {
		return Insight{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ratio != candidates[j].ratio {
			return candidates[i].ratio > candidates[j].ratio
		}
		return candidates[i].category < candidates[j].category
	})
	best := candidates[0]
	return Insight{
		Type:  TypeDiscovery,
		Title: "Explorer Mode",
		Body: fmt.Sprintf("%.0f%% of your %s visits are new spots",
			math.Round(best.ratio*100), strings.ReplaceAll(best.category, "_", " ")),
	}, true
}

// patternInsight reports a strongly dominant time-of-day or weekend habit.
func patternInsight(profile *model.ObservedTasteProfile) (Insight, bool) {
	total := 0
	for _, count := range profile.TimePatterns.TimeOfDay {
		total += count
	}
	if total < 5 {
		return Insight{}, false
	}

	titles := map[string]string{
		taxonomy.BucketMorning:   "Early Bird",
		taxonomy.BucketAfternoon: "Afternoon Regular",
		taxonomy.BucketEvening:   "Evening Type",
		taxonomy.BucketNight:     "Night Owl",
	}
	for _, bucket := range []string{
		taxonomy.BucketMorning, taxonomy.BucketAfternoon,
		taxonomy.BucketEvening, taxonomy.BucketNight,
	} {
		share := float64(profile.TimePatterns.TimeOfDay[bucket]) / float64(total)
		if share >= 0.6 {
			return Insight{
				Type:  TypePattern,
				Title: titles[bucket],
				Body:  fmt.Sprintf("%.0f%% of your visits happen in the %s", math.Round(share*100), bucket),
			}, true
		}
	}

	weekendShare := float64(profile.TimePatterns.DayType[taxonomy.DayWeekend]) / float64(total)
	if weekendShare >= 0.7 {
		return Insight{
			Type:  TypePattern,
			Title: "Weekend Warrior",
			Body:  fmt.Sprintf("%.0f%% of your visits land on weekends", math.Round(weekendShare*100)),
		}, true
	}
	return Insight{}, false
}

// milestoneThresholds are transaction counts worth celebrating.
var milestoneThresholds = []int{250, 100, 50, 25, 10}

func milestoneInsight(profile *model.ObservedTasteProfile) (Insight, bool) {
	for _, threshold := range milestoneThresholds {
		if profile.TotalTransactions >= threshold {
			return Insight{
				Type:  TypeMilestone,
				Title: "Milestone Reached",
				Body:  fmt.Sprintf("You've logged %d visits and counting", threshold),
			}, true
		}
	}
	return Insight{}, false
}

// polish asks the content generator for friendlier copy, keeping the
// rule-based text whenever generation fails.
func (g *Generator) polish(ctx context.Context, insights []Insight) []Insight {
	for i, insight := range insights {
		prompt := fmt.Sprintf(
			"Rewrite this dining insight in one short friendly sentence, keeping every number: %s", insight.Body)
		rewritten, err := g.content.Generate(ctx, prompt)
		if err != nil {
			g.logger.Debug("content generator unavailable, keeping rule-based copy", "error", err)
			return insights
		}
		rewritten = strings.TrimSpace(rewritten)
		if rewritten != "" {
			insights[i].Body = rewritten
		}
	}
	return insights
}
