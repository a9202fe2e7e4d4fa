// Package titles maps taste attributes to display titles and trait
// scores. Deterministic table lookups, no external calls.
package titles

import (
	"strings"

	"github.com/ceezaa/tasteflow/internal/model"
)

type titleKey struct {
	style model.ExplorationStyle
	vibe  string
}

// profileTitles maps (exploration_style, dominant vibe) to a title and
// tagline. Roughly twenty combinations cover the vast majority of users;
// everything else falls through to the default.
var profileTitles = map[titleKey]model.ProfileTitle{
	{model.ExplorationAdventurous, "trendy"}:    {Title: "Trend Hunter", Tagline: "First to find the next big thing"},
	{model.ExplorationAdventurous, "social"}:    {Title: "Social Explorer", Tagline: "Where the party's at"},
	{model.ExplorationAdventurous, "energetic"}: {Title: "Thrill Seeker", Tagline: "Life's too short for boring food"},
	{model.ExplorationAdventurous, "upscale"}:   {Title: "Refined Adventurer", Tagline: "Luxury with a twist"},
	{model.ExplorationAdventurous, "casual"}:    {Title: "Curious Wanderer", Tagline: "Always open to new flavors"},
	{model.ExplorationAdventurous, "intimate"}:  {Title: "Hidden Gem Hunter", Tagline: "Finds the spots no one knows"},
	{model.ExplorationAdventurous, "romantic"}:  {Title: "Date Night Pioneer", Tagline: "Romance meets discovery"},

	{model.ExplorationVeryAdventurous, "trendy"}:    {Title: "Culinary Trailblazer", Tagline: "No dish too daring"},
	{model.ExplorationVeryAdventurous, "social"}:    {Title: "Party Pioneer", Tagline: "Leading the crew to new places"},
	{model.ExplorationVeryAdventurous, "energetic"}: {Title: "Flavor Chaser", Tagline: "The weirder, the better"},
	{model.ExplorationVeryAdventurous, "upscale"}:   {Title: "Gourmet Explorer", Tagline: "Fine dining frontiers"},

	{model.ExplorationModerate, "trendy"}:   {Title: "Trend Watcher", Tagline: "Keeps up with what's hot"},
	{model.ExplorationModerate, "social"}:   {Title: "Social Foodie", Tagline: "Great company, great food"},
	{model.ExplorationModerate, "casual"}:   {Title: "Easy Going Eater", Tagline: "Good vibes, good bites"},
	{model.ExplorationModerate, "upscale"}:  {Title: "Occasional Splurger", Tagline: "Treats when it counts"},
	{model.ExplorationModerate, "chill"}:    {Title: "Balanced Palate", Tagline: "Open to suggestions"},
	{model.ExplorationModerate, "intimate"}: {Title: "Thoughtful Diner", Tagline: "Quality over quantity"},

	{model.ExplorationRoutine, "chill"}:    {Title: "Comfort Connoisseur", Tagline: "Knows what they love"},
	{model.ExplorationRoutine, "casual"}:   {Title: "Neighborhood Regular", Tagline: "Loyal to the locals"},
	{model.ExplorationRoutine, "homebody"}: {Title: "Home Chef", Tagline: "Kitchen is their happy place"},
	{model.ExplorationRoutine, "upscale"}:  {Title: "Classic Sophisticate", Tagline: "Timeless taste"},
	{model.ExplorationRoutine, "intimate"}: {Title: "Cozy Corner Lover", Tagline: "Same spot, same smile"},
	{model.ExplorationRoutine, "social"}:   {Title: "Local Legend", Tagline: "Everyone knows their order"},
}

// DefaultTitle is returned for any unmapped combination.
var DefaultTitle = model.ProfileTitle{
	Title:   "Taste Explorer",
	Tagline: "Discovering your perfect spots",
}

// vibePriority orders vibes from most to least characteristic when
// picking the dominant one.
var vibePriority = []string{
	"trendy", "upscale", "romantic", "intimate", "energetic", "social",
	"casual", "chill", "relaxed", "homebody", "fun", "elegant",
	"adventurous",
}

// vibeFallbacks lists related vibes to try when the dominant vibe has no
// table entry.
var vibeFallbacks = map[string][]string{
	"elegant":     {"upscale"},
	"relaxed":     {"casual", "chill"},
	"fun":         {"energetic", "social"},
	"romantic":    {"intimate"},
	"adventurous": {"trendy"},
}

// DominantVibe picks the most characteristic vibe from a preference list,
// or "" for an empty list.
func DominantVibe(vibes []string) string {
	if len(vibes) == 0 {
		return ""
	}
	present := make(map[string]bool, len(vibes))
	for _, v := range vibes {
		present[strings.ToLower(v)] = true
	}
	for _, v := range vibePriority {
		if present[v] {
			return v
		}
	}
	return strings.ToLower(vibes[0])
}

// ForProfile returns the display title for a fused profile.
func ForProfile(profile *model.FusedTasteProfile) model.ProfileTitle {
	return Lookup(profile.ExplorationStyle, DominantVibe(profile.Vibes))
}

// Lookup resolves (exploration style, dominant vibe) through the title
// table with the very_adventurous and related-vibe fallback chain.
func Lookup(style model.ExplorationStyle, dominantVibe string) model.ProfileTitle {
	if style == "" || dominantVibe == "" {
		return DefaultTitle
	}

	style = model.ExplorationStyle(strings.ToLower(string(style)))
	dominantVibe = strings.ToLower(dominantVibe)

	if title, ok := profileTitles[titleKey{style, dominantVibe}]; ok {
		return title
	}

	if style == model.ExplorationVeryAdventurous {
		if title, ok := profileTitles[titleKey{model.ExplorationAdventurous, dominantVibe}]; ok {
			return title
		}
	}

	for _, fallback := range vibeFallbacks[dominantVibe] {
		if title, ok := profileTitles[titleKey{style, fallback}]; ok {
			return title
		}
	}

	return DefaultTitle
}
