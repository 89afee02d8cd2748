package guidance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
)

// generateAnthropic calls the Anthropic messages API.
func (d *Dispatcher) generateAnthropic(ctx context.Context, model, prompt string) (string, error) {
	payload := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens": 1000,
	}
	body, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		return "", fmt.Errorf("guidance: marshal anthropic request: %w", errMarshal)
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, anthropicEndpoint, bytes.NewReader(body))
	if errReq != nil {
		return "", fmt.Errorf("guidance: build anthropic request: %w", errReq)
	}
	req.Header.Set("x-api-key", d.anthropicKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, errDo := d.httpClient.Do(req)
	if errDo != nil {
		return "", fmt.Errorf("guidance: anthropic request: %w", errDo)
	}
	defer resp.Body.Close()

	data, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return "", fmt.Errorf("guidance: read anthropic response: %w", errRead)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("guidance: anthropic status %d", resp.StatusCode)
	}

	// result maps the fields needed from the messages response.
	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if errUnmarshal := json.Unmarshal(data, &result); errUnmarshal != nil {
		return "", fmt.Errorf("guidance: parse anthropic response: %w", errUnmarshal)
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("guidance: anthropic returned no content")
	}
	return result.Content[0].Text, nil
}
