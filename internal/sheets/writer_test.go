package sheets

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceezaa/tasteflow/internal/insight"
	"github.com/ceezaa/tasteflow/internal/model"
)

func testReport() *Report {
	return &Report{
		GeneratedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		UserID:      "user-1",
		Title:       model.ProfileTitle{Title: "Trend Hunter", Tagline: "First to find the next big thing"},
		Profile: &model.FusedTasteProfile{
			Confidence:  0.5,
			QuizWeight:  0.5,
			TxWeight:    0.5,
			Vibes:       []string{"trendy", "social"},
			TopCuisines: []string{"thai", "sushi"},
			Categories: []model.FusedCategory{
				{Name: "dining", Percentage: 60, Count: 12},
				{Name: "coffee", Percentage: 40, Count: 8},
			},
		},
		Traits: []model.TasteTrait{
			{Name: "Adventurous", Score: 85},
		},
		Insights: []insight.Insight{
			{Type: insight.TypeStreak, Title: "Coffee Streak!", Body: "4 days straight of coffee"},
		},
		TopMerchants: []model.MerchantVisit{
			{Name: "Blue Bottle Coffee", Count: 8, LastVisit: time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC)},
		},
	}
}

func TestPrepareReportData(t *testing.T) {
	w := &Writer{config: DefaultConfig(), logger: slog.Default()}
	values := w.prepareReportData(testReport())

	require.NotEmpty(t, values)
	assert.Equal(t, []any{"Taste Report", "Mar 10, 2025"}, values[0])
	assert.Equal(t, []any{"Trend Hunter", "First to find the next big thing"}, values[2])

	// Category rows follow the breakdown header, shares as fractions.
	var breakdownAt int
	for i, row := range values {
		if len(row) > 0 && row[0] == "Taste Breakdown" {
			breakdownAt = i
			break
		}
	}
	require.NotZero(t, breakdownAt)
	assert.Equal(t, []any{"Dining", 0.6, 12}, values[breakdownAt+2])
	assert.Equal(t, []any{"Coffee", 0.4, 8}, values[breakdownAt+3])

	// Optional sections present.
	flat := make(map[any]bool)
	for _, row := range values {
		if len(row) > 0 {
			flat[row[0]] = true
		}
	}
	assert.True(t, flat["Traits"])
	assert.True(t, flat["Insights"])
	assert.True(t, flat["Top Spots"])
	assert.True(t, flat["Blue Bottle Coffee"])
}

func TestPrepareReportData_SkipsEmptySections(t *testing.T) {
	w := &Writer{config: DefaultConfig(), logger: slog.Default()}
	report := testReport()
	report.Traits = nil
	report.Insights = nil
	report.TopMerchants = nil

	values := w.prepareReportData(report)
	for _, row := range values {
		if len(row) > 0 {
			assert.NotEqual(t, "Traits", row[0])
			assert.NotEqual(t, "Insights", row[0])
			assert.NotEqual(t, "Top Spots", row[0])
		}
	}
}

func TestMockWriter(t *testing.T) {
	mock := NewMockWriter()

	require.NoError(t, mock.Write(context.Background(), testReport()))
	require.Len(t, mock.WriteCalls, 1)
	assert.Equal(t, "user-1", mock.WriteCalls[0].UserID)

	mock.Reset()
	assert.Empty(t, mock.WriteCalls)
}
