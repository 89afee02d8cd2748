package payments

import (
	"errors"
	"testing"

	"github.com/crystalgrimoire/grimoire/internal/config"
	"github.com/crystalgrimoire/grimoire/internal/tier"
)

func TestServiceUnconfigured(t *testing.T) {
	svc := NewService(config.ServiceConfig{})
	if svc.Configured() {
		t.Fatal("expected unconfigured service")
	}
	if _, errCheckout := svc.CreateCheckout("cus_123", tier.Premium, 1); !errors.Is(errCheckout, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", errCheckout)
	}
	if _, errCustomer := svc.EnsureCustomer("", "a@b.com", 1); !errors.Is(errCustomer, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", errCustomer)
	}
	if _, errHook := svc.HandleWebhook([]byte("{}"), "sig"); !errors.Is(errHook, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", errHook)
	}
}

func TestCreateCheckoutMissingPrice(t *testing.T) {
	svc := NewService(config.ServiceConfig{
		StripeSecretKey:    "sk_test_abc",
		StripePremiumPrice: "price_premium",
	})
	if _, errCheckout := svc.CreateCheckout("cus_123", tier.Founders, 1); !errors.Is(errCheckout, ErrNoPriceForTier) {
		t.Fatalf("expected ErrNoPriceForTier, got %v", errCheckout)
	}
}

func TestEnsureCustomerKeepsExistingID(t *testing.T) {
	svc := NewService(config.ServiceConfig{StripeSecretKey: "sk_test_abc"})
	id, errCustomer := svc.EnsureCustomer("cus_existing", "a@b.com", 1)
	if errCustomer != nil {
		t.Fatalf("EnsureCustomer: %v", errCustomer)
	}
	if id != "cus_existing" {
		t.Fatalf("expected existing customer id, got %q", id)
	}
}

func TestHandleWebhookBadSignature(t *testing.T) {
	svc := NewService(config.ServiceConfig{
		StripeSecretKey:     "sk_test_abc",
		StripeWebhookSecret: "whsec_test",
	})
	if _, errHook := svc.HandleWebhook([]byte(`{"type":"checkout.session.completed"}`), "t=1,v1=bad"); errHook == nil {
		t.Fatal("expected signature verification error")
	}
}
