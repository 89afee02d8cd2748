package models

import "time"

// Crystal is the normalized description of an identified crystal.
//
// Only the fields modeled here survive a JSON round trip; unexpected keys in
// inbound payloads are dropped at the normalization boundary.
type Crystal struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	ScientificName   string            `json:"scientific_name"`
	Group            string            `json:"group"`
	Description      string            `json:"description"`
	Chakras          []string          `json:"chakras"`
	Elements         []string          `json:"elements"`
	Properties       map[string]any    `json:"properties"`
	CareInstructions []string          `json:"care_instructions"`
	Keywords         map[string]string `json:"keywords,omitempty"`
}

// Identification is a single identification result. Immutable once constructed;
// the raw backend text is retained for audit.
type Identification struct {
	ID               string    `json:"id"`
	Crystal          Crystal   `json:"crystal"`
	Confidence       float64   `json:"confidence"`
	NeedsFollowUp    bool      `json:"needs_follow_up"`
	SpiritualMessage string    `json:"spiritual_message"`
	RawResponse      string    `json:"raw_response"`
	Timestamp        time.Time `json:"timestamp"`
}
