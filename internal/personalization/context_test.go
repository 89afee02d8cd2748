package personalization

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/crystalgrimoire/grimoire/internal/astrology"
	"github.com/crystalgrimoire/grimoire/internal/models"
)

func TestBuildNilProfile(t *testing.T) {
	ctx := Build(nil, nil, nil, astrology.MoonPhase{Label: "full_moon"})

	if ctx.SunSign != astrology.Unknown || ctx.MoonSign != astrology.Unknown || ctx.Ascendant != astrology.Unknown {
		t.Fatalf("expected unknown astrology fields, got %+v", ctx)
	}
	if ctx.RecentMood != NeutralMood {
		t.Fatalf("expected neutral mood, got %q", ctx.RecentMood)
	}
	if ctx.MoonPhase != "full_moon" {
		t.Fatalf("expected moon phase passthrough, got %q", ctx.MoonPhase)
	}
	if ctx.OwnedCrystals == nil || ctx.RecommendedCrystals == nil || ctx.DominantElements == nil {
		t.Fatalf("expected explicit empty slices, got %+v", ctx)
	}
}

func TestBuildAggregatesInputs(t *testing.T) {
	birth := time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC)
	user := &models.User{Name: "Crystal Seeker", BirthDate: &birth}

	collection := []models.CollectionEntry{
		{CrystalName: "Amethyst"},
		{CrystalName: "Rose Quartz"},
		{CrystalName: ""},
	}
	journal := []models.JournalEntry{
		{Mood: "anxious", CreatedAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)},
		{Mood: "calm", CreatedAt: time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)},
		{Mood: "", CreatedAt: time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)},
	}

	ctx := Build(user, collection, journal, astrology.MoonPhase{Label: "waxing_crescent"})

	if ctx.SunSign != "pisces" {
		t.Fatalf("expected pisces, got %q", ctx.SunSign)
	}
	if !reflect.DeepEqual(ctx.OwnedCrystals, []string{"Amethyst", "Rose Quartz"}) {
		t.Fatalf("owned crystals = %v", ctx.OwnedCrystals)
	}
	if ctx.RecentMood != "calm" {
		t.Fatalf("expected most recent tagged mood, got %q", ctx.RecentMood)
	}
	if len(ctx.RecommendedCrystals) == 0 {
		t.Fatal("expected recommendations for a known sun sign")
	}
}

func TestBuildEmptyJournalNeutralMood(t *testing.T) {
	ctx := Build(&models.User{}, nil, []models.JournalEntry{}, astrology.MoonPhase{Label: "new_moon"})
	if ctx.RecentMood != NeutralMood {
		t.Fatalf("expected neutral mood, got %q", ctx.RecentMood)
	}
}

func TestContextWireFieldNames(t *testing.T) {
	data, errMarshal := json.Marshal(Context{})
	if errMarshal != nil {
		t.Fatalf("marshal: %v", errMarshal)
	}

	var fields map[string]any
	if errUnmarshal := json.Unmarshal(data, &fields); errUnmarshal != nil {
		t.Fatalf("unmarshal: %v", errUnmarshal)
	}

	for _, name := range []string{
		"sun_sign", "moon_sign", "ascendant", "dominant_elements",
		"recommended_crystals", "owned_crystals", "recent_mood", "moon_phase",
	} {
		if _, ok := fields[name]; !ok {
			t.Fatalf("missing wire field %q", name)
		}
	}
}
