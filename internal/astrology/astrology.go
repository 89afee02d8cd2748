// Package astrology derives astrological summaries and moon-phase data from
// birth data and clock time. All functions are pure.
package astrology

import (
	"math"
	"strings"
	"time"
)

// Unknown is the explicit placeholder for fields that cannot be derived.
const Unknown = "unknown"

// Zodiac signs in ecliptic order starting at Aries.
var signs = []string{
	"aries", "taurus", "gemini", "cancer", "leo", "virgo",
	"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
}

// signElements maps each sign to its classical element.
var signElements = map[string]string{
	"aries": "fire", "leo": "fire", "sagittarius": "fire",
	"taurus": "earth", "virgo": "earth", "capricorn": "earth",
	"gemini": "air", "libra": "air", "aquarius": "air",
	"cancer": "water", "scorpio": "water", "pisces": "water",
}

// signCrystals maps each sign to its traditional crystal allies.
var signCrystals = map[string][]string{
	"aries":       {"carnelian", "red jasper"},
	"taurus":      {"rose quartz", "emerald"},
	"gemini":      {"citrine", "agate"},
	"cancer":      {"moonstone", "selenite"},
	"leo":         {"sunstone", "tiger's eye"},
	"virgo":       {"amazonite", "moss agate"},
	"libra":       {"lapis lazuli", "lepidolite"},
	"scorpio":     {"obsidian", "malachite"},
	"sagittarius": {"turquoise", "sodalite"},
	"capricorn":   {"garnet", "black tourmaline"},
	"aquarius":    {"amethyst", "aquamarine"},
	"pisces":      {"amethyst", "fluorite"},
}

// ValidSign reports whether the given name is a zodiac sign.
func ValidSign(sign string) bool {
	_, ok := signElements[strings.ToLower(strings.TrimSpace(sign))]
	return ok
}

// SunSign returns the tropical sun sign for a birth date.
func SunSign(birth time.Time) string {
	month, day := birth.Month(), birth.Day()
	switch {
	case month == time.March && day >= 21 || month == time.April && day <= 19:
		return "aries"
	case month == time.April || month == time.May && day <= 20:
		return "taurus"
	case month == time.May || month == time.June && day <= 20:
		return "gemini"
	case month == time.June || month == time.July && day <= 22:
		return "cancer"
	case month == time.July || month == time.August && day <= 22:
		return "leo"
	case month == time.August || month == time.September && day <= 22:
		return "virgo"
	case month == time.September || month == time.October && day <= 22:
		return "libra"
	case month == time.October || month == time.November && day <= 21:
		return "scorpio"
	case month == time.November || month == time.December && day <= 21:
		return "sagittarius"
	case month == time.December || month == time.January && day <= 19:
		return "capricorn"
	case month == time.January || month == time.February && day <= 18:
		return "aquarius"
	default:
		return "pisces"
	}
}

// j2000 is the J2000.0 epoch used for lunar longitude arithmetic.
var j2000 = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

// MoonSign approximates the moon's zodiac sign at a given time using the mean
// lunar longitude (good to about a degree per decade, enough for sign lookup).
func MoonSign(at time.Time) string {
	days := at.Sub(j2000).Hours() / 24
	longitude := math.Mod(218.316+13.176396*days, 360)
	if longitude < 0 {
		longitude += 360
	}
	return signs[int(longitude/30)%12]
}

// Element returns the classical element for a sign, or Unknown.
func Element(sign string) string {
	if el, ok := signElements[strings.ToLower(strings.TrimSpace(sign))]; ok {
		return el
	}
	return Unknown
}

// CrystalsFor returns the traditional crystal allies for a sign.
func CrystalsFor(sign string) []string {
	return signCrystals[strings.ToLower(strings.TrimSpace(sign))]
}

// Summary is the derived astrological profile used for personalization.
type Summary struct {
	SunSign          string
	MoonSign         string
	Ascendant        string
	DominantElements []string
}

// Summarize derives a Summary from birth data. A nil birth date yields a
// summary of explicit unknowns rather than an error.
func Summarize(birthDate *time.Time) Summary {
	if birthDate == nil {
		return Summary{
			SunSign:          Unknown,
			MoonSign:         Unknown,
			Ascendant:        Unknown,
			DominantElements: []string{},
		}
	}

	sun := SunSign(*birthDate)
	moon := MoonSign(*birthDate)

	elements := []string{Element(sun)}
	if moonElement := Element(moon); moonElement != elements[0] {
		elements = append(elements, moonElement)
	}

	return Summary{
		SunSign: sun,
		MoonSign: moon,
		// Rising sign needs exact birth time and location; not derived here.
		Ascendant:        Unknown,
		DominantElements: elements,
	}
}

// MoonPhase describes the moon's current phase.
type MoonPhase struct {
	Label        string  // Phase label, e.g. "waxing_crescent".
	Illumination float64 // Illuminated fraction in [0,1].
	AgeDays      float64 // Days since the last new moon.
}

// synodicMonth is the mean length of a lunation in days.
const synodicMonth = 29.530588853

// referenceNewMoon is a known new moon instant (2000-01-06 18:14 UTC).
var referenceNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// CurrentMoonPhase computes the moon phase at the given time.
func CurrentMoonPhase(at time.Time) MoonPhase {
	days := at.Sub(referenceNewMoon).Hours() / 24
	age := math.Mod(days, synodicMonth)
	if age < 0 {
		age += synodicMonth
	}

	illumination := (1 - math.Cos(2*math.Pi*age/synodicMonth)) / 2

	return MoonPhase{
		Label:        phaseLabel(age),
		Illumination: illumination,
		AgeDays:      age,
	}
}

// phaseLabel buckets the moon's age into the eight conventional phases.
func phaseLabel(age float64) string {
	switch {
	case age < 1.84566:
		return "new_moon"
	case age < 5.53699:
		return "waxing_crescent"
	case age < 9.22831:
		return "first_quarter"
	case age < 12.91963:
		return "waxing_gibbous"
	case age < 16.61096:
		return "full_moon"
	case age < 20.30228:
		return "waning_gibbous"
	case age < 23.99361:
		return "last_quarter"
	case age < 27.68493:
		return "waning_crescent"
	default:
		return "new_moon"
	}
}
