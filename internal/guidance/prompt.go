package guidance

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/crystalgrimoire/grimoire/internal/personalization"
)

// GuidancePrompt renders a personalized guidance prompt. The context bundle is
// serialized verbatim so the provider sees the same field names the app uses.
func GuidancePrompt(query, guidanceType string, pctx personalization.Context) string {
	contextJSON, _ := json.Marshal(pctx)

	var b strings.Builder
	b.WriteString("PERSONALIZED GUIDANCE REQUEST\n\n")
	fmt.Fprintf(&b, "User context:\n%s\n\n", contextJSON)
	fmt.Fprintf(&b, "Query: %s\n", query)
	fmt.Fprintf(&b, "Guidance type: %s\n\n", guidanceType)
	b.WriteString("Please provide deeply personalized guidance that:\n")
	b.WriteString("1. Addresses the specific question\n")
	b.WriteString("2. Incorporates the astrological profile\n")
	b.WriteString("3. Suggests crystals they might benefit from\n")
	b.WriteString("4. Offers actionable spiritual practices\n")
	b.WriteString("5. Feels like advice from a trusted spiritual mentor\n")
	return b.String()
}

// IdentificationPrompt renders a crystal identification prompt from a free-text
// description and the personalization context.
func IdentificationPrompt(description string, pctx personalization.Context, hasImage bool) string {
	contextJSON, _ := json.Marshal(pctx)

	var b strings.Builder
	b.WriteString("CRYSTAL IDENTIFICATION REQUEST\n\n")
	fmt.Fprintf(&b, "User context:\n%s\n\n", contextJSON)
	fmt.Fprintf(&b, "Description: %s\n", description)
	if hasImage {
		b.WriteString("[Image data provided]\n")
	}
	b.WriteString("\nPlease identify this crystal and respond with JSON containing a ")
	b.WriteString("crystal_details object (name, description, chakras, elements, properties, ")
	b.WriteString("care_instructions), a qualitative confidence rating (high/medium/low), ")
	b.WriteString("and a spiritual_message aligned with the user's sun sign.\n")
	return b.String()
}
