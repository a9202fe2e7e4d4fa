package match

import "github.com/ceezaa/tasteflow/internal/model"

// moodBoostCap prevents mood filtering from inflating rankings past the
// taste signal itself.
const moodBoostCap = 20

// MoodConfig maps one mood-grid selection onto venue attributes.
type MoodConfig struct {
	// Venue energy levels that match this mood.
	EnergyMatch []string
	// Venue best_for tags that match this mood.
	BestForMatch []string
	// Venue standout tags to boost for this mood.
	StandoutBoost []string
}

const (
	energyBoost   = 8 // matching energy level
	bestForBoost  = 4 // per matching best_for tag
	standoutBoost = 3 // per matching standout tag
)

// moodConfigs mirrors the mood grid shown by clients.
var moodConfigs = map[string]MoodConfig{
	"chill": {
		EnergyMatch:   []string{"chill"},
		BestForMatch:  []string{"solo_work", "casual_hangout"},
		StandoutBoost: []string{"cozy_vibes"},
	},
	"energetic": {
		EnergyMatch:  []string{"lively"},
		BestForMatch: []string{"group_celebration", "late_night"},
	},
	"romantic": {
		EnergyMatch:   []string{"chill", "moderate"},
		BestForMatch:  []string{"date_night"},
		StandoutBoost: []string{"cozy_vibes", "upscale_feel"},
	},
	"social": {
		EnergyMatch:  []string{"moderate", "lively"},
		BestForMatch: []string{"group_celebration", "casual_hangout"},
	},
	"adventurous": {
		EnergyMatch:   []string{"moderate", "lively"},
		StandoutBoost: []string{"hidden_gem", "cult_following"},
	},
	"cozy": {
		EnergyMatch:   []string{"chill"},
		BestForMatch:  []string{"casual_hangout", "solo_work"},
		StandoutBoost: []string{"cozy_vibes", "local_favorite"},
	},
}

// AvailableMoods lists the mood IDs clients may pass to Rank.
func AvailableMoods() []string {
	return []string{"chill", "energetic", "romantic", "social", "adventurous", "cozy"}
}

// MoodBoost computes the ranking-only boost a venue gets for the selected
// mood. Unknown or empty moods boost nothing.
func MoodBoost(mood string, venue *model.Venue) int {
	config, ok := moodConfigs[mood]
	if !ok {
		return 0
	}

	boost := 0
	for _, energy := range config.EnergyMatch {
		if venue.Energy == energy {
			boost += energyBoost
			break
		}
	}
	boost += overlapCount(venue.BestFor, config.BestForMatch) * bestForBoost
	boost += overlapCount(venue.Standout, config.StandoutBoost) * standoutBoost

	if boost > moodBoostCap {
		boost = moodBoostCap
	}
	return boost
}

func overlapCount(venueTags, moodTags []string) int {
	if len(venueTags) == 0 || len(moodTags) == 0 {
		return 0
	}
	moodSet := make(map[string]bool, len(moodTags))
	for _, tag := range moodTags {
		moodSet[tag] = true
	}
	n := 0
	for _, tag := range venueTags {
		if moodSet[tag] {
			n++
		}
	}
	return n
}
