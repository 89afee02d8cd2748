package guidance

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// generateGemini calls the Gemini API through the genai client.
func (d *Dispatcher) generateGemini(ctx context.Context, model, prompt string) (string, error) {
	if d.gemini == nil {
		return "", ErrNoProvider
	}

	result, errGenerate := d.gemini.Models.GenerateContent(ctx, model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.7),
			MaxOutputTokens: 1000,
		},
	)
	if errGenerate != nil {
		return "", fmt.Errorf("guidance: gemini request: %w", errGenerate)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("guidance: gemini returned no text")
	}
	return text, nil
}
