package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/crystalgrimoire/grimoire/internal/models"
	"github.com/crystalgrimoire/grimoire/internal/payments"
	"github.com/crystalgrimoire/grimoire/internal/session"
	"github.com/crystalgrimoire/grimoire/internal/tier"
)

// SubscriptionHandler serves checkout, status, and the Stripe webhook.
type SubscriptionHandler struct {
	db       *gorm.DB
	payments *payments.Service
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(db *gorm.DB, paymentsSvc *payments.Service) *SubscriptionHandler {
	return &SubscriptionHandler{db: db, payments: paymentsSvc}
}

// checkoutRequest defines the request body for checkout.
type checkoutRequest struct {
	Tier string `json:"tier"`
}

// Checkout opens a Stripe checkout session for a paid tier.
func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var body checkoutRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	target, errParse := tier.Parse(body.Tier)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tier"})
		return
	}
	if target == tier.Free {
		c.JSON(http.StatusBadRequest, gin.H{"error": "free tier needs no checkout"})
		return
	}

	customerID, errCustomer := h.payments.EnsureCustomer(sess.User.StripeCustomerID, sess.User.Email, sess.User.ID)
	if errCustomer != nil {
		if errors.Is(errCustomer, payments.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments not configured"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "create customer failed"})
		return
	}
	if customerID != sess.User.StripeCustomerID {
		if errUpdate := h.db.WithContext(c.Request.Context()).Model(sess.User).
			Updates(map[string]any{"stripe_customer_id": customerID, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save customer failed"})
			return
		}
	}

	checkoutURL, errCheckout := h.payments.CreateCheckout(customerID, target, sess.User.ID)
	if errCheckout != nil {
		if errors.Is(errCheckout, payments.ErrNoPriceForTier) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tier not purchasable"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "create checkout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout_url": checkoutURL})
}

// Status returns the current subscription tier and its policy.
func (h *SubscriptionHandler) Status(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	policy, errPolicy := tier.PolicyFor(sess.Tier)
	if errPolicy != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid subscription tier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tier": string(sess.Tier),
		"policy": gin.H{
			"daily_identifications": policy.DailyIdentifications,
			"max_collection_size":   policy.MaxCollectionSize,
			"marketplace_selling":   policy.MarketplaceSelling,
			"advanced_ai":           policy.AdvancedAI,
			"model_class":           string(policy.ModelClass),
		},
	})
}

// Webhook applies Stripe subscription events to the user's tier. Unverified
// payloads are rejected; events without a known customer are acknowledged so
// Stripe stops retrying.
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	payload, errRead := io.ReadAll(c.Request.Body)
	if errRead != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read payload failed"})
		return
	}

	change, errHook := h.payments.HandleWebhook(payload, c.GetHeader("Stripe-Signature"))
	if errHook != nil {
		if errors.Is(errHook, payments.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments not configured"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}
	if !change.Apply || strings.TrimSpace(change.CustomerID) == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("stripe_customer_id = ?", change.CustomerID).
		Updates(map[string]any{
			"subscription_tier": string(change.Tier),
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "apply tier change failed"})
		return
	}
	if res.RowsAffected == 0 {
		log.WithField("customer_id", change.CustomerID).Warn("webhook for unknown customer")
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
