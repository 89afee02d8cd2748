package guidance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// generateOpenAI calls the OpenAI chat completions API.
func (d *Dispatcher) generateOpenAI(ctx context.Context, model, prompt string) (string, error) {
	payload := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
		"max_tokens":  1000,
	}
	body, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		return "", fmt.Errorf("guidance: marshal openai request: %w", errMarshal)
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, bytes.NewReader(body))
	if errReq != nil {
		return "", fmt.Errorf("guidance: build openai request: %w", errReq)
	}
	req.Header.Set("Authorization", "Bearer "+d.openAIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, errDo := d.httpClient.Do(req)
	if errDo != nil {
		return "", fmt.Errorf("guidance: openai request: %w", errDo)
	}
	defer resp.Body.Close()

	data, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return "", fmt.Errorf("guidance: read openai response: %w", errRead)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("guidance: openai status %d", resp.StatusCode)
	}

	// result maps the fields needed from the completion response.
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if errUnmarshal := json.Unmarshal(data, &result); errUnmarshal != nil {
		return "", fmt.Errorf("guidance: parse openai response: %w", errUnmarshal)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("guidance: openai returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}
