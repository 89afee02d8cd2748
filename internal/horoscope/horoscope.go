// Package horoscope serves daily horoscopes. It tries the external horoscope
// API first, falls back to an AI-generated reading, and finally to a static
// table so the endpoint always has content.
package horoscope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crystalgrimoire/grimoire/internal/astrology"
	"github.com/crystalgrimoire/grimoire/internal/config"
	"github.com/crystalgrimoire/grimoire/internal/guidance"
	"github.com/crystalgrimoire/grimoire/internal/tier"

	log "github.com/sirupsen/logrus"
)

// ErrInvalidSign indicates an unrecognized zodiac sign.
var ErrInvalidSign = errors.New("horoscope: invalid zodiac sign")

// apiTimeout bounds the external horoscope API call. Kept short; the static
// fallback makes a slow upstream not worth waiting for.
const apiTimeout = 10 * time.Second

// Horoscope is a daily reading with crystal recommendations.
type Horoscope struct {
	Sign         string   `json:"sign"`
	Date         string   `json:"date"`
	Reading      string   `json:"horoscope"`
	LuckyCrystal string   `json:"lucky_crystal"`
	LuckyNumbers []int    `json:"lucky_numbers"`
	MoonPhase    string   `json:"moon_phase"`
	Source       string   `json:"source"`
	Crystals     []string `json:"compatible_crystals"`
}

// Service fetches and composes daily horoscopes.
type Service struct {
	apiKey  string
	apiURL  string
	apiHost string

	httpClient *http.Client
	dispatcher *guidance.Dispatcher
}

// NewService constructs a Service. The dispatcher may be nil, in which case the
// AI fallback is skipped.
func NewService(cfg config.ServiceConfig, dispatcher *guidance.Dispatcher) *Service {
	return &Service{
		apiKey:     strings.TrimSpace(cfg.HoroscopeAPIKey),
		apiURL:     strings.TrimRight(strings.TrimSpace(cfg.HoroscopeAPIURL), "/"),
		apiHost:    strings.TrimSpace(cfg.HoroscopeAPIHost),
		httpClient: &http.Client{Timeout: apiTimeout},
		dispatcher: dispatcher,
	}
}

// Daily returns the horoscope for a sign on the given day.
func (s *Service) Daily(ctx context.Context, sign string, now time.Time) (Horoscope, error) {
	sign = strings.ToLower(strings.TrimSpace(sign))
	if !astrology.ValidSign(sign) {
		return Horoscope{}, fmt.Errorf("%w: %q", ErrInvalidSign, sign)
	}

	if s.apiKey != "" && s.apiURL != "" {
		if h, errFetch := s.fetchExternal(ctx, sign, now); errFetch == nil {
			return h, nil
		} else {
			log.WithError(errFetch).WithField("sign", sign).Warn("horoscope api failed, falling back")
		}
	}

	if s.dispatcher != nil {
		if h, errAI := s.generateAI(ctx, sign, now); errAI == nil {
			return h, nil
		} else {
			log.WithError(errAI).WithField("sign", sign).Warn("ai horoscope failed, using static fallback")
		}
	}

	return s.static(sign, now), nil
}

// fetchExternal calls the external horoscope API.
func (s *Service) fetchExternal(ctx context.Context, sign string, now time.Time) (Horoscope, error) {
	endpoint := fmt.Sprintf("%s/daily?sign=%s", s.apiURL, url.QueryEscape(sign))
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if errReq != nil {
		return Horoscope{}, fmt.Errorf("horoscope: build request: %w", errReq)
	}
	req.Header.Set("X-RapidAPI-Key", s.apiKey)
	req.Header.Set("X-RapidAPI-Host", s.apiHost)

	resp, errDo := s.httpClient.Do(req)
	if errDo != nil {
		return Horoscope{}, fmt.Errorf("horoscope: request: %w", errDo)
	}
	defer resp.Body.Close()

	data, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return Horoscope{}, fmt.Errorf("horoscope: read response: %w", errRead)
	}
	if resp.StatusCode != http.StatusOK {
		return Horoscope{}, fmt.Errorf("horoscope: status %d", resp.StatusCode)
	}

	// result maps the fields needed from the upstream payload.
	var result struct {
		Horoscope string `json:"horoscope"`
	}
	if errUnmarshal := json.Unmarshal(data, &result); errUnmarshal != nil {
		return Horoscope{}, fmt.Errorf("horoscope: parse response: %w", errUnmarshal)
	}
	if strings.TrimSpace(result.Horoscope) == "" {
		return Horoscope{}, errors.New("horoscope: empty reading")
	}

	h := s.static(sign, now)
	h.Reading = result.Horoscope
	h.Source = "api"
	return h, nil
}

// generateAI asks the guidance dispatcher for a reading.
func (s *Service) generateAI(ctx context.Context, sign string, now time.Time) (Horoscope, error) {
	prompt := fmt.Sprintf(
		"Generate a short personalized daily horoscope for %s for %s. Respond with plain text only.",
		sign, now.UTC().Format("2006-01-02"))

	resp, errGenerate := s.dispatcher.Generate(ctx, prompt, tier.Free)
	if errGenerate != nil {
		return Horoscope{}, errGenerate
	}

	h := s.static(sign, now)
	h.Reading = resp.Text
	h.Source = "ai"
	return h, nil
}

// static composes a reading from the built-in tables. Deterministic for a
// given sign and day.
func (s *Service) static(sign string, now time.Time) Horoscope {
	crystals := astrology.CrystalsFor(sign)
	lucky := "clear quartz"
	if len(crystals) > 0 {
		lucky = crystals[0]
	}
	return Horoscope{
		Sign:         sign,
		Date:         now.UTC().Format("2006-01-02"),
		Reading:      staticReadings[sign],
		LuckyCrystal: lucky,
		LuckyNumbers: luckyNumbers(sign, now),
		MoonPhase:    astrology.CurrentMoonPhase(now).Label,
		Source:       "static",
		Crystals:     crystals,
	}
}

// luckyNumbers derives three stable numbers from the sign and day.
func luckyNumbers(sign string, now time.Time) []int {
	h := fnv.New32a()
	h.Write([]byte(sign + now.UTC().Format("2006-01-02")))
	seed := h.Sum32()
	return []int{
		int(seed%49) + 1,
		int((seed/49)%49) + 1,
		int((seed/(49*49))%49) + 1,
	}
}

var staticReadings = map[string]string{
	"aries":       "Today brings fiery energy perfect for new beginnings. Your ruling planet Mars encourages bold action.",
	"taurus":      "Venus blesses you with harmony and beauty today. Focus on material stability and sensual pleasures.",
	"gemini":      "Mercury enhances your communication skills. It's a perfect day for learning and social connections.",
	"cancer":      "The Moon illuminates your emotional depths. Trust your intuition and nurture those you love.",
	"leo":         "The Sun radiates through you today. Step into your power and let your creativity shine brightly.",
	"virgo":       "Earth energy grounds you in practical matters. Pay attention to details and health routines.",
	"libra":       "Venus brings balance to relationships. Seek harmony and beauty in all your interactions.",
	"scorpio":     "Pluto stirs transformative energies. Embrace change and dive deep into mysteries.",
	"sagittarius": "Jupiter expands your horizons. Adventure and higher learning call to your spirit.",
	"capricorn":   "Saturn supports your ambitions. Structure and discipline lead to lasting achievements.",
	"aquarius":    "Uranus sparks innovation. Think outside the box and embrace your unique perspective.",
	"pisces":      "Neptune enhances your psychic abilities. Dreams and intuition guide your way forward.",
}
