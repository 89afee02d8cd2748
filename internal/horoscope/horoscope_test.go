package horoscope

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/crystalgrimoire/grimoire/internal/config"
)

func TestDailyInvalidSign(t *testing.T) {
	svc := NewService(config.ServiceConfig{}, nil)
	if _, errDaily := svc.Daily(context.Background(), "ophiuchus", time.Now()); !errors.Is(errDaily, ErrInvalidSign) {
		t.Fatalf("expected ErrInvalidSign, got %v", errDaily)
	}
}

func TestDailyStaticFallback(t *testing.T) {
	svc := NewService(config.ServiceConfig{}, nil)
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	h, errDaily := svc.Daily(context.Background(), "Pisces", now)
	if errDaily != nil {
		t.Fatalf("Daily: %v", errDaily)
	}
	if h.Sign != "pisces" {
		t.Fatalf("expected normalized sign, got %q", h.Sign)
	}
	if h.Source != "static" {
		t.Fatalf("expected static source, got %q", h.Source)
	}
	if h.Reading == "" || h.LuckyCrystal == "" || h.MoonPhase == "" {
		t.Fatalf("expected populated reading, got %+v", h)
	}
	if len(h.LuckyNumbers) != 3 {
		t.Fatalf("expected 3 lucky numbers, got %v", h.LuckyNumbers)
	}
	for _, n := range h.LuckyNumbers {
		if n < 1 || n > 49 {
			t.Fatalf("lucky number out of range: %d", n)
		}
	}
}

func TestLuckyNumbersDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)
	later := time.Date(2026, 8, 24, 22, 0, 0, 0, time.UTC)

	if !reflect.DeepEqual(luckyNumbers("leo", now), luckyNumbers("leo", later)) {
		t.Fatal("expected stable numbers within a day")
	}
	if reflect.DeepEqual(luckyNumbers("leo", now), luckyNumbers("virgo", now)) {
		t.Fatal("expected numbers to differ by sign")
	}
}
