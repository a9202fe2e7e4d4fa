package sheets

import (
	"time"

	"github.com/ceezaa/tasteflow/internal/insight"
	"github.com/ceezaa/tasteflow/internal/model"
)

// Report holds everything the spreadsheet export needs for one user.
type Report struct {
	GeneratedAt  time.Time
	UserID       string
	Title        model.ProfileTitle
	Profile      *model.FusedTasteProfile
	Ring         []model.RingSegment
	Traits       []model.TasteTrait
	Insights     []insight.Insight
	TopMerchants []model.MerchantVisit
}
