package match

import (
	"math"

	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/taxonomy"
)

const (
	// maxRingSegments keeps the taste ring legible.
	maxRingSegments = 5
	// minRingPercentage folds slivers into the catch-all segment.
	minRingPercentage = 3.0
)

// BuildRing turns a fused category breakdown into taste ring segments.
// Slivers under minRingPercentage are dropped; if more than
// maxRingSegments remain, the tail is folded into a trailing "other"
// segment. Input is expected in fused order (percentage descending).
func BuildRing(categories []model.FusedCategory) []model.RingSegment {
	segments := make([]model.RingSegment, 0, len(categories))
	for _, category := range categories {
		if category.Percentage < minRingPercentage {
			continue
		}
		segments = append(segments, model.RingSegment{
			Category:   category.Name,
			Color:      category.Color,
			Percentage: category.Percentage,
		})
	}

	if len(segments) <= maxRingSegments {
		return segments
	}

	folded := 0.0
	for _, segment := range segments[maxRingSegments-1:] {
		folded += segment.Percentage
	}
	segments = segments[:maxRingSegments-1]
	return append(segments, model.RingSegment{
		Category:   taxonomy.Other,
		Color:      taxonomy.Color(taxonomy.Other),
		Percentage: math.Round(folded*10) / 10,
	})
}
