package astrology

import (
	"testing"
	"time"
)

func TestSunSign(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC), "pisces"},
		{time.Date(1990, time.March, 21, 0, 0, 0, 0, time.UTC), "aries"},
		{time.Date(1990, time.April, 19, 0, 0, 0, 0, time.UTC), "aries"},
		{time.Date(1990, time.April, 20, 0, 0, 0, 0, time.UTC), "taurus"},
		{time.Date(1990, time.August, 1, 0, 0, 0, 0, time.UTC), "leo"},
		{time.Date(1990, time.December, 25, 0, 0, 0, 0, time.UTC), "capricorn"},
		{time.Date(1990, time.January, 10, 0, 0, 0, 0, time.UTC), "capricorn"},
		{time.Date(1990, time.February, 1, 0, 0, 0, 0, time.UTC), "aquarius"},
	}
	for _, tc := range cases {
		if got := SunSign(tc.date); got != tc.want {
			t.Fatalf("SunSign(%s) = %q, want %q", tc.date.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestSummarizeNilBirthDate(t *testing.T) {
	s := Summarize(nil)
	if s.SunSign != Unknown || s.MoonSign != Unknown || s.Ascendant != Unknown {
		t.Fatalf("expected unknowns, got %+v", s)
	}
	if s.DominantElements == nil {
		t.Fatal("expected empty slice, not nil")
	}
}

func TestSummarize(t *testing.T) {
	birth := time.Date(1990, time.August, 1, 0, 0, 0, 0, time.UTC)
	s := Summarize(&birth)
	if s.SunSign != "leo" {
		t.Fatalf("expected leo, got %q", s.SunSign)
	}
	if !ValidSign(s.MoonSign) {
		t.Fatalf("expected a valid moon sign, got %q", s.MoonSign)
	}
	if len(s.DominantElements) == 0 || s.DominantElements[0] != "fire" {
		t.Fatalf("expected fire first, got %v", s.DominantElements)
	}
}

func TestCurrentMoonPhase(t *testing.T) {
	// The reference epoch itself is a new moon.
	phase := CurrentMoonPhase(time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC))
	if phase.Label != "new_moon" {
		t.Fatalf("expected new_moon at epoch, got %q", phase.Label)
	}
	if phase.Illumination > 0.01 {
		t.Fatalf("expected near-zero illumination, got %v", phase.Illumination)
	}

	// Half a synodic month later the moon is full.
	full := CurrentMoonPhase(time.Date(2000, time.January, 21, 5, 0, 0, 0, time.UTC))
	if full.Label != "full_moon" {
		t.Fatalf("expected full_moon, got %q", full.Label)
	}
	if full.Illumination < 0.95 {
		t.Fatalf("expected near-full illumination, got %v", full.Illumination)
	}
}

func TestCurrentMoonPhaseBeforeEpoch(t *testing.T) {
	phase := CurrentMoonPhase(time.Date(1999, time.June, 1, 0, 0, 0, 0, time.UTC))
	if phase.AgeDays < 0 || phase.AgeDays >= 29.6 {
		t.Fatalf("age out of range: %v", phase.AgeDays)
	}
	if phase.Label == "" {
		t.Fatal("expected a phase label")
	}
}

func TestCrystalsFor(t *testing.T) {
	if got := CrystalsFor("Pisces"); len(got) == 0 {
		t.Fatal("expected crystals for pisces")
	}
	if got := CrystalsFor("unknown"); got != nil {
		t.Fatalf("expected nil for unknown sign, got %v", got)
	}
}
