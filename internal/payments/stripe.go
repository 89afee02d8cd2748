// Package payments wraps Stripe checkout and webhook handling for
// subscription tier changes.
package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/crystalgrimoire/grimoire/internal/config"
	"github.com/crystalgrimoire/grimoire/internal/tier"
)

var (
	// ErrNotConfigured indicates Stripe keys are missing from the environment.
	ErrNotConfigured = errors.New("payments: stripe not configured")
	// ErrNoPriceForTier indicates the requested tier has no Stripe price attached.
	ErrNoPriceForTier = errors.New("payments: no price configured for tier")
)

// Service creates checkout sessions and interprets subscription webhooks.
type Service struct {
	webhookSecret string
	baseURL       string
	prices        map[tier.Tier]string
	configured    bool
}

// NewService configures the Stripe client. Returns a service that rejects all
// calls when no secret key is set so the rest of the API keeps working.
func NewService(cfg config.ServiceConfig) *Service {
	key := strings.TrimSpace(cfg.StripeSecretKey)
	if key != "" {
		stripe.Key = key
	}
	return &Service{
		webhookSecret: strings.TrimSpace(cfg.StripeWebhookSecret),
		baseURL:       strings.TrimRight(cfg.APIBaseURL, "/"),
		prices: map[tier.Tier]string{
			tier.Premium:  strings.TrimSpace(cfg.StripePremiumPrice),
			tier.Pro:      strings.TrimSpace(cfg.StripeProPrice),
			tier.Founders: strings.TrimSpace(cfg.StripeFoundersPrice),
		},
		configured: key != "",
	}
}

// Configured reports whether a Stripe secret key is present.
func (s *Service) Configured() bool { return s.configured }

// EnsureCustomer returns the Stripe customer ID for a user, creating the
// customer when none exists yet.
func (s *Service) EnsureCustomer(existingID, email string, userID uint64) (string, error) {
	if !s.configured {
		return "", ErrNotConfigured
	}
	if existingID != "" {
		return existingID, nil
	}

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.AddMetadata("user_id", fmt.Sprintf("%d", userID))
	c, errCreate := customer.New(params)
	if errCreate != nil {
		return "", fmt.Errorf("payments: create customer: %w", errCreate)
	}
	return c.ID, nil
}

// CreateCheckout opens a subscription checkout session for the target tier and
// returns the hosted checkout URL.
func (s *Service) CreateCheckout(customerID string, target tier.Tier, userID uint64) (string, error) {
	if !s.configured {
		return "", ErrNotConfigured
	}
	priceID := s.prices[target]
	if priceID == "" {
		return "", fmt.Errorf("%w: %s", ErrNoPriceForTier, target)
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.baseURL + "/v1/subscription/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.baseURL + "/v1/subscription/cancel"),
	}
	params.AddMetadata("user_id", fmt.Sprintf("%d", userID))
	params.AddMetadata("target_tier", string(target))

	sess, errNew := session.New(params)
	if errNew != nil {
		return "", fmt.Errorf("payments: create checkout session: %w", errNew)
	}
	return sess.URL, nil
}

// TierChange is the outcome of a subscription webhook event.
type TierChange struct {
	CustomerID string
	Tier       tier.Tier
	// Apply is false for events that carry no tier transition.
	Apply bool
}

// HandleWebhook verifies the event signature and maps subscription lifecycle
// events to tier changes. Unknown event types are acknowledged without effect.
func (s *Service) HandleWebhook(payload []byte, signature string) (TierChange, error) {
	if s.webhookSecret == "" {
		return TierChange{}, ErrNotConfigured
	}

	event, errConstruct := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if errConstruct != nil {
		return TierChange{}, fmt.Errorf("payments: verify webhook: %w", errConstruct)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if errUnmarshal := json.Unmarshal(event.Data.Raw, &sess); errUnmarshal != nil {
			return TierChange{}, fmt.Errorf("payments: parse checkout session: %w", errUnmarshal)
		}
		target, errParse := tier.Parse(sess.Metadata["target_tier"])
		if errParse != nil {
			return TierChange{}, fmt.Errorf("payments: checkout session metadata: %w", errParse)
		}
		customerID := ""
		if sess.Customer != nil {
			customerID = sess.Customer.ID
		}
		return TierChange{CustomerID: customerID, Tier: target, Apply: true}, nil

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if errUnmarshal := json.Unmarshal(event.Data.Raw, &sub); errUnmarshal != nil {
			return TierChange{}, fmt.Errorf("payments: parse subscription: %w", errUnmarshal)
		}
		customerID := ""
		if sub.Customer != nil {
			customerID = sub.Customer.ID
		}
		return TierChange{CustomerID: customerID, Tier: tier.Free, Apply: true}, nil

	default:
		return TierChange{}, nil
	}
}
