// Package guidance dispatches personalized prompts to AI providers. Provider
// and model choice follow the caller's subscription tier; the personalization
// context bundle is serialized into every outgoing prompt.
package guidance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/crystalgrimoire/grimoire/internal/config"
	"github.com/crystalgrimoire/grimoire/internal/personalization"
	"github.com/crystalgrimoire/grimoire/internal/tier"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Provider identifies an AI backend.
type Provider string

// Supported providers.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
)

// ErrNoProvider indicates no AI provider is configured for the request.
var ErrNoProvider = errors.New("guidance: no AI provider available")

// Response is a completed AI generation.
type Response struct {
	Text     string
	Provider Provider
	Model    string
}

// requestTimeout bounds a single generation call. Generations are not retried;
// a timeout surfaces to the caller once.
const requestTimeout = 60 * time.Second

// Dispatcher routes prompts to the provider matching a subscription tier.
type Dispatcher struct {
	openAIKey    string
	anthropicKey string

	gemini *genai.Client

	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewDispatcher constructs a Dispatcher from service credentials. Providers
// without credentials are simply unavailable, not errors.
func NewDispatcher(ctx context.Context, cfg config.ServiceConfig) (*Dispatcher, error) {
	d := &Dispatcher{
		openAIKey:    strings.TrimSpace(cfg.OpenAIAPIKey),
		anthropicKey: strings.TrimSpace(cfg.AnthropicAPIKey),
		httpClient:   &http.Client{Timeout: requestTimeout},
		limiter:      rate.NewLimiter(rate.Limit(5), 10),
	}

	if key := strings.TrimSpace(cfg.GoogleAIAPIKey); key != "" {
		client, errClient := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
		if errClient != nil {
			return nil, fmt.Errorf("guidance: create gemini client: %w", errClient)
		}
		d.gemini = client
	}
	return d, nil
}

// Available reports configured providers for health checks.
func (d *Dispatcher) Available() map[Provider]bool {
	return map[Provider]bool{
		ProviderOpenAI:    d.openAIKey != "",
		ProviderAnthropic: d.anthropicKey != "",
		ProviderGoogle:    d.gemini != nil,
	}
}

// SelectProvider picks the provider serving a tier: pro and founders prefer
// Anthropic, premium prefers OpenAI, and everything falls back to Google.
func (d *Dispatcher) SelectProvider(t tier.Tier) (Provider, error) {
	switch {
	case t.AtLeast(tier.Pro) && d.anthropicKey != "":
		return ProviderAnthropic, nil
	case t.AtLeast(tier.Premium) && d.openAIKey != "":
		return ProviderOpenAI, nil
	case d.gemini != nil:
		return ProviderGoogle, nil
	case d.openAIKey != "":
		return ProviderOpenAI, nil
	case d.anthropicKey != "":
		return ProviderAnthropic, nil
	default:
		return "", ErrNoProvider
	}
}

// ModelFor returns the model name used for a provider at a tier.
func ModelFor(p Provider, t tier.Tier) string {
	switch p {
	case ProviderOpenAI:
		if t.AtLeast(tier.Pro) {
			return "gpt-4-turbo-preview"
		}
		return "gpt-3.5-turbo"
	case ProviderAnthropic:
		if t == tier.Founders {
			return "claude-3-opus-20240229"
		}
		return "claude-3-sonnet-20240229"
	case ProviderGoogle:
		return "gemini-1.5-flash"
	default:
		return ""
	}
}

// Generate sends a prompt to the provider selected for the tier. No automatic
// retries; errors surface once and are left to user-initiated retry.
func (d *Dispatcher) Generate(ctx context.Context, prompt string, t tier.Tier) (Response, error) {
	provider, errSelect := d.SelectProvider(t)
	if errSelect != nil {
		return Response{}, errSelect
	}

	if errWait := d.limiter.Wait(ctx); errWait != nil {
		return Response{}, fmt.Errorf("guidance: rate limit wait: %w", errWait)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	model := ModelFor(provider, t)
	var text string
	var errGenerate error
	switch provider {
	case ProviderOpenAI:
		text, errGenerate = d.generateOpenAI(ctx, model, prompt)
	case ProviderAnthropic:
		text, errGenerate = d.generateAnthropic(ctx, model, prompt)
	case ProviderGoogle:
		text, errGenerate = d.generateGemini(ctx, model, prompt)
	default:
		return Response{}, ErrNoProvider
	}
	if errGenerate != nil {
		return Response{}, errGenerate
	}
	return Response{Text: text, Provider: provider, Model: model}, nil
}

// FallbackGuidance is the local substitute when every provider fails. The
// identification flow has no equivalent; its provider errors surface directly.
func FallbackGuidance(pctx personalization.Context) string {
	var b strings.Builder
	b.WriteString("The universe is quiet right now, so here is some grounded wisdom: ")
	b.WriteString("trust your intuition and return to your breath. ")
	if len(pctx.OwnedCrystals) > 0 {
		fmt.Fprintf(&b, "Spend a moment with your %s today. ", pctx.OwnedCrystals[0])
	} else {
		b.WriteString("Clear quartz is a gentle companion for any practice. ")
	}
	if pctx.MoonPhase != "" && pctx.MoonPhase != "unknown" {
		fmt.Fprintf(&b, "The %s supports quiet reflection.", strings.ReplaceAll(pctx.MoonPhase, "_", " "))
	}
	return strings.TrimSpace(b.String())
}
