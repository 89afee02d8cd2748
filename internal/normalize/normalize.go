// Package normalize maps heterogeneous identification-backend JSON shapes into
// the internal record shape, filling defaults for missing fields.
//
// Every fallback path follows a fixed candidate-key precedence so the behavior
// is exhaustively enumerable. Keys not modeled on the output types are dropped;
// this is an accepted lossy boundary.
package normalize

import (
	"errors"
	"strings"
	"time"

	"github.com/crystalgrimoire/grimoire/internal/models"
	"github.com/google/uuid"
)

// ErrNotMapping indicates the raw payload is not a key/value mapping.
var ErrNotMapping = errors.New("normalize: payload is not a mapping")

const (
	// DefaultCrystalName is used when no name can be derived from the payload.
	DefaultCrystalName = "Identified Crystal"

	// DefaultConfidence replaces any numeric confidence sent by the backend.
	DefaultConfidence = 0.7

	// firstLineMaxLen caps how long a raw-text first line may be to count as a name.
	firstLineMaxLen = 100
)

// Identification normalizes an identification response payload.
//
// It never fails for a sparse mapping; the only error is ErrNotMapping when the
// payload itself is not a mapping type.
func Identification(raw any) (*models.Identification, error) {
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		return nil, ErrNotMapping
	}

	id := asString(obj["id"])
	if id == "" {
		id = uuid.NewString()
	}

	// Raw free-text precedence: identification_raw > identification > raw_response.
	rawText := asString(obj["identification_raw"])
	if rawText == "" {
		rawText = asString(obj["identification"])
	}
	if rawText == "" {
		rawText = asString(obj["raw_response"])
	}

	details := asMap(obj["crystal_details"])

	crystal := crystalFromDetails(details, rawText)

	message := asString(details["spiritual_message"])
	if message == "" {
		message = asString(obj["spiritual_message"])
	}

	return &models.Identification{
		ID:               id,
		Crystal:          crystal,
		Confidence:       confidence(obj, details),
		NeedsFollowUp:    asBool(obj["needs_follow_up"]) || asBool(details["needs_follow_up"]),
		SpiritualMessage: message,
		RawResponse:      rawText,
		Timestamp:        time.Now().UTC(),
	}, nil
}

// CollectionCrystal normalizes a stored collection crystal payload.
func CollectionCrystal(raw any) (*models.Crystal, error) {
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		return nil, ErrNotMapping
	}
	crystal := crystalFromDetails(obj, "")
	if crystal.Name == "" {
		crystal.Name = DefaultCrystalName
	}
	return &crystal, nil
}

// crystalFromDetails builds a Crystal from a details mapping, falling back to
// the raw free-text response where fields are missing.
func crystalFromDetails(details map[string]any, rawText string) models.Crystal {
	// Name precedence: crystal_details.name > heuristic first line > default.
	name := asString(details["name"])
	if name == "" {
		if line := firstLine(rawText); line != "" && len(line) < firstLineMaxLen {
			name = line
		}
	}
	if name == "" {
		name = DefaultCrystalName
	}

	// Description precedence: crystal_details.description > raw full response.
	description := asString(details["description"])
	if description == "" {
		description = rawText
	}

	// Group precedence: group > type.
	group := asString(details["group"])
	if group == "" {
		group = asString(details["type"])
	}

	// Chakras precedence: chakras list > single chakra string.
	chakras := asStringList(details["chakras"])
	if len(chakras) == 0 {
		if single := asString(details["chakra"]); single != "" {
			chakras = []string{single}
		}
	}

	// Elements precedence: elements list > single element string.
	elements := asStringList(details["elements"])
	if len(elements) == 0 {
		if single := asString(details["element"]); single != "" {
			elements = []string{single}
		}
	}

	// Care precedence: care_instructions > care.
	care := asStringList(details["care_instructions"])
	if len(care) == 0 {
		care = asStringList(details["care"])
	}

	id := asString(details["id"])
	if id == "" {
		id = uuid.NewString()
	}

	return models.Crystal{
		ID:               id,
		Name:             name,
		ScientificName:   asString(details["scientific_name"]),
		Group:            group,
		Description:      description,
		Chakras:          chakras,
		Elements:         elements,
		Properties:       properties(details),
		CareInstructions: care,
	}
}

// properties applies the fixed precedence for the free-form properties mapping:
// properties (mapping) > healing_applications (list, key "healing") >
// metaphysical_properties (list, key "metaphysical") > empty mapping.
func properties(details map[string]any) map[string]any {
	if m := asMap(details["properties"]); len(m) > 0 {
		return m
	}
	if list := asStringList(details["healing_applications"]); len(list) > 0 {
		return map[string]any{"healing": list}
	}
	if list := asStringList(details["metaphysical_properties"]); len(list) > 0 {
		return map[string]any{"metaphysical": list}
	}
	return map[string]any{}
}

// confidence maps a qualitative textual rating to a fixed constant. Numeric
// confidence values from the backend are not trusted and fall through to the
// default.
func confidence(obj, details map[string]any) float64 {
	rating := asString(details["confidence"])
	if rating == "" {
		rating = asString(obj["confidence"])
	}
	return ConfidenceFromRating(rating)
}

// ConfidenceFromRating maps "high"/"medium"/"low" to 0.9/0.7/0.5. Anything
// else, including an absent rating, yields the default.
func ConfidenceFromRating(rating string) float64 {
	switch strings.ToLower(strings.TrimSpace(rating)) {
	case "high":
		return 0.9
	case "medium":
		return 0.7
	case "low":
		return 0.5
	default:
		return DefaultConfidence
	}
}

// Placeholder builds a best-effort identification for malformed payloads so the
// identification flow always has something to show.
func Placeholder(rawText string) *models.Identification {
	return &models.Identification{
		ID: uuid.NewString(),
		Crystal: models.Crystal{
			ID:          uuid.NewString(),
			Name:        DefaultCrystalName,
			Description: rawText,
			Chakras:     []string{},
			Elements:    []string{},
			Properties:  map[string]any{},
		},
		Confidence:    DefaultConfidence,
		NeedsFollowUp: true,
		RawResponse:   rawText,
		Timestamp:     time.Now().UTC(),
	}
}

// firstLine returns the first non-empty line of text.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// asMap extracts a mapping value, returning nil for anything else.
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asString extracts a trimmed string value.
func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// asBool extracts a boolean value.
func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asStringList extracts a list of strings, tolerating []any payloads.
func asStringList(v any) []string {
	switch list := v.(type) {
	case []string:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
