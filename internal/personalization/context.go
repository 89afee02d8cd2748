// Package personalization assembles the context bundle attached to outbound
// guidance and identification requests. It performs no network calls and no
// LLM invocation; the bundle contains only data already present in its inputs.
package personalization

import (
	"time"

	"github.com/crystalgrimoire/grimoire/internal/astrology"
	"github.com/crystalgrimoire/grimoire/internal/models"
)

// NeutralMood is the default emotional-state tag when no journal entry exists.
const NeutralMood = "neutral"

// Context is the personalization bundle serialized into outbound AI requests.
// The field names are a wire contract consumed by the guidance dispatcher.
type Context struct {
	SunSign             string   `json:"sun_sign"`
	MoonSign            string   `json:"moon_sign"`
	Ascendant           string   `json:"ascendant"`
	DominantElements    []string `json:"dominant_elements"`
	RecommendedCrystals []string `json:"recommended_crystals"`
	OwnedCrystals       []string `json:"owned_crystals"`
	RecentMood          string   `json:"recent_mood"`
	MoonPhase           string   `json:"moon_phase"`
}

// Build aggregates a user's profile, collection, journal, and the current moon
// phase into a Context. A nil profile yields explicit unknown defaults so that
// guidance stays available to not-yet-onboarded users.
func Build(profile *models.User, collection []models.CollectionEntry, journal []models.JournalEntry, phase astrology.MoonPhase) Context {
	summary := astrology.Summarize(birthDateOf(profile))

	recommended := astrology.CrystalsFor(summary.SunSign)
	if recommended == nil {
		recommended = []string{}
	}

	owned := make([]string, 0, len(collection))
	for _, entry := range collection {
		if entry.CrystalName != "" {
			owned = append(owned, entry.CrystalName)
		}
	}

	return Context{
		SunSign:             summary.SunSign,
		MoonSign:            summary.MoonSign,
		Ascendant:           summary.Ascendant,
		DominantElements:    summary.DominantElements,
		RecommendedCrystals: recommended,
		OwnedCrystals:       owned,
		RecentMood:          recentMood(journal),
		MoonPhase:           phase.Label,
	}
}

// birthDateOf safely extracts the birth date from an optional profile.
func birthDateOf(profile *models.User) *time.Time {
	if profile == nil {
		return nil
	}
	return profile.BirthDate
}

// recentMood returns the mood tag of the most recent journal entry, or the
// neutral default.
func recentMood(journal []models.JournalEntry) string {
	mood := ""
	var latest time.Time
	for _, entry := range journal {
		if entry.Mood == "" {
			continue
		}
		if mood == "" || entry.CreatedAt.After(latest) {
			mood = entry.Mood
			latest = entry.CreatedAt
		}
	}
	if mood == "" {
		return NeutralMood
	}
	return mood
}
