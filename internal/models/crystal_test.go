package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestCrystalJSONRoundTrip(t *testing.T) {
	original := Crystal{
		ID:               "c-1",
		Name:             "Amethyst",
		ScientificName:   "Silicon dioxide",
		Group:            "Quartz",
		Description:      "A purple quartz variety.",
		Chakras:          []string{"crown", "third_eye"},
		Elements:         []string{"air"},
		Properties:       map[string]any{"healing": "stress relief"},
		CareInstructions: []string{"keep out of direct sunlight"},
	}

	data, errMarshal := json.Marshal(original)
	if errMarshal != nil {
		t.Fatalf("marshal: %v", errMarshal)
	}

	var decoded Crystal
	if errUnmarshal := json.Unmarshal(data, &decoded); errUnmarshal != nil {
		t.Fatalf("unmarshal: %v", errUnmarshal)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", decoded, original)
	}
}

func TestIdentificationJSONRoundTrip(t *testing.T) {
	original := Identification{
		ID:               "id-1",
		Crystal:          Crystal{ID: "c-1", Name: "Rose Quartz"},
		Confidence:       0.9,
		NeedsFollowUp:    true,
		SpiritualMessage: "Open your heart.",
		RawResponse:      "Rose Quartz\nA pink stone.",
		Timestamp:        time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
	}

	data, errMarshal := json.Marshal(original)
	if errMarshal != nil {
		t.Fatalf("marshal: %v", errMarshal)
	}

	var decoded Identification
	if errUnmarshal := json.Unmarshal(data, &decoded); errUnmarshal != nil {
		t.Fatalf("unmarshal: %v", errUnmarshal)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", decoded, original)
	}
}
