package normalize

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestIdentificationNestedDetails(t *testing.T) {
	raw := map[string]any{
		"crystal_details": map[string]any{
			"name":    "Amethyst",
			"chakras": []any{"crown"},
		},
	}

	ident, errNorm := Identification(raw)
	if errNorm != nil {
		t.Fatalf("Identification: %v", errNorm)
	}
	if ident.Crystal.Name != "Amethyst" {
		t.Fatalf("expected name=Amethyst, got %q", ident.Crystal.Name)
	}
	if !reflect.DeepEqual(ident.Crystal.Chakras, []string{"crown"}) {
		t.Fatalf("expected chakras=[crown], got %v", ident.Crystal.Chakras)
	}
	if ident.Confidence != DefaultConfidence {
		t.Fatalf("expected default confidence, got %v", ident.Confidence)
	}
	if ident.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestIdentificationFirstLineHeuristic(t *testing.T) {
	raw := map[string]any{
		"identification_raw": "Rose Quartz\nA pink stone.",
	}

	ident, errNorm := Identification(raw)
	if errNorm != nil {
		t.Fatalf("Identification: %v", errNorm)
	}
	if ident.Crystal.Name != "Rose Quartz" {
		t.Fatalf("expected name=Rose Quartz, got %q", ident.Crystal.Name)
	}
	if ident.Crystal.Description != "Rose Quartz\nA pink stone." {
		t.Fatalf("expected full raw text description, got %q", ident.Crystal.Description)
	}
	if ident.RawResponse != "Rose Quartz\nA pink stone." {
		t.Fatalf("expected raw response retained, got %q", ident.RawResponse)
	}
}

func TestIdentificationFirstLineTooLong(t *testing.T) {
	longLine := strings.Repeat("x", 120)
	raw := map[string]any{
		"identification_raw": longLine + "\nmore text",
	}

	ident, errNorm := Identification(raw)
	if errNorm != nil {
		t.Fatalf("Identification: %v", errNorm)
	}
	if ident.Crystal.Name != DefaultCrystalName {
		t.Fatalf("expected default name for long first line, got %q", ident.Crystal.Name)
	}
}

func TestIdentificationPropertiesPrecedence(t *testing.T) {
	cases := []struct {
		name    string
		details map[string]any
		want    map[string]any
	}{
		{
			name: "mapping wins",
			details: map[string]any{
				"properties":           map[string]any{"love": "heart healing"},
				"healing_applications": []any{"calming"},
			},
			want: map[string]any{"love": "heart healing"},
		},
		{
			name: "healing list second",
			details: map[string]any{
				"healing_applications":    []any{"calming", "sleep"},
				"metaphysical_properties": []any{"intuition"},
			},
			want: map[string]any{"healing": []string{"calming", "sleep"}},
		},
		{
			name:    "metaphysical list third",
			details: map[string]any{"metaphysical_properties": []any{"intuition"}},
			want:    map[string]any{"metaphysical": []string{"intuition"}},
		},
		{
			name:    "empty mapping default",
			details: map[string]any{},
			want:    map[string]any{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ident, errNorm := Identification(map[string]any{"crystal_details": tc.details})
			if errNorm != nil {
				t.Fatalf("Identification: %v", errNorm)
			}
			if !reflect.DeepEqual(ident.Crystal.Properties, tc.want) {
				t.Fatalf("properties = %#v, want %#v", ident.Crystal.Properties, tc.want)
			}
		})
	}
}

func TestConfidenceFromRating(t *testing.T) {
	cases := map[string]float64{
		"high":    0.9,
		"Medium":  0.7,
		"LOW":     0.5,
		"extreme": 0.7,
		"":        0.7,
	}
	for rating, want := range cases {
		if got := ConfidenceFromRating(rating); got != want {
			t.Fatalf("ConfidenceFromRating(%q) = %v, want %v", rating, got, want)
		}
	}
}

func TestIdentificationNeverFailsOnSparseMappings(t *testing.T) {
	sparse := []map[string]any{
		{},
		{"crystal_details": map[string]any{}},
		{"crystal_details": "not a mapping"},
		{"chakras": 42},
		{"identification_raw": ""},
		{"confidence": 123.4},
	}
	for i, raw := range sparse {
		ident, errNorm := Identification(raw)
		if errNorm != nil {
			t.Fatalf("case %d: unexpected error %v", i, errNorm)
		}
		if ident.Crystal.Name == "" {
			t.Fatalf("case %d: expected non-empty name", i)
		}
		if ident.Confidence < 0 || ident.Confidence > 1 {
			t.Fatalf("case %d: confidence %v out of range", i, ident.Confidence)
		}
	}
}

func TestIdentificationRejectsNonMappings(t *testing.T) {
	for _, raw := range []any{nil, "text", 42, []any{"a"}} {
		if _, errNorm := Identification(raw); !errors.Is(errNorm, ErrNotMapping) {
			t.Fatalf("Identification(%v): expected ErrNotMapping, got %v", raw, errNorm)
		}
	}
}

func TestCollectionCrystal(t *testing.T) {
	raw := map[string]any{
		"name":    "Rose Quartz",
		"type":    "Quartz",
		"chakra":  "Heart",
		"element": "Water",
	}
	crystal, errNorm := CollectionCrystal(raw)
	if errNorm != nil {
		t.Fatalf("CollectionCrystal: %v", errNorm)
	}
	if crystal.Name != "Rose Quartz" {
		t.Fatalf("expected name=Rose Quartz, got %q", crystal.Name)
	}
	if crystal.Group != "Quartz" {
		t.Fatalf("expected group fallback to type, got %q", crystal.Group)
	}
	if !reflect.DeepEqual(crystal.Chakras, []string{"Heart"}) {
		t.Fatalf("expected single chakra promoted to list, got %v", crystal.Chakras)
	}

	if _, errNorm = CollectionCrystal([]any{}); !errors.Is(errNorm, ErrNotMapping) {
		t.Fatalf("expected ErrNotMapping, got %v", errNorm)
	}
}

func TestPlaceholder(t *testing.T) {
	ident := Placeholder("garbled response")
	if ident.Crystal.Name != DefaultCrystalName {
		t.Fatalf("expected default name, got %q", ident.Crystal.Name)
	}
	if !ident.NeedsFollowUp {
		t.Fatal("expected placeholder to flag follow-up")
	}
	if ident.RawResponse != "garbled response" {
		t.Fatalf("expected raw text retained, got %q", ident.RawResponse)
	}
}
