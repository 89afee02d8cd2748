package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/crystalgrimoire/grimoire/internal/guidance"
	"github.com/crystalgrimoire/grimoire/internal/models"
	"github.com/crystalgrimoire/grimoire/internal/normalize"
	"github.com/crystalgrimoire/grimoire/internal/quota"
	"github.com/crystalgrimoire/grimoire/internal/session"
	"github.com/crystalgrimoire/grimoire/internal/tier"
)

// IdentifyHandler serves crystal identification requests.
type IdentifyHandler struct {
	db         *gorm.DB
	counter    quota.Counter
	dispatcher *guidance.Dispatcher
}

// NewIdentifyHandler constructs an IdentifyHandler.
func NewIdentifyHandler(db *gorm.DB, counter quota.Counter, dispatcher *guidance.Dispatcher) *IdentifyHandler {
	return &IdentifyHandler{db: db, counter: counter, dispatcher: dispatcher}
}

// identifyRequest defines the request body for identification.
type identifyRequest struct {
	Description string `json:"description"`
	ImageBase64 string `json:"image_base64"`
}

// Identify runs the tier gate, dispatches the identification prompt, and
// normalizes whatever the provider returns. A malformed provider payload still
// yields a placeholder identification rather than an error.
func (h *IdentifyHandler) Identify(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var body identifyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	description := strings.TrimSpace(body.Description)
	hasImage := strings.TrimSpace(body.ImageBase64) != ""
	if description == "" && !hasImage {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description or image required"})
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()

	usage, errUsage := h.counter.Usage(ctx, sess.User.ID, string(tier.FeatureIdentification), now)
	if errUsage != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "usage lookup failed"})
		return
	}
	decision, errResolve := tier.Resolve(sess.Tier, tier.FeatureIdentification, usage)
	if errResolve != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "access check failed"})
		return
	}
	if !decision.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":  "daily identification limit reached",
			"reason": string(decision.Reason),
			"tier":   string(sess.Tier),
		})
		return
	}

	pctx, errPersonalize := loadPersonalization(ctx, h.db, sess.User, now)
	if errPersonalize != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load personalization failed"})
		return
	}

	prompt := guidance.IdentificationPrompt(description, pctx, hasImage)
	resp, errGenerate := h.dispatcher.Generate(ctx, prompt, sess.Tier)
	if errGenerate != nil {
		h.recordUsage(c, sess.User.ID, "", "", true, now)
		log.WithError(errGenerate).Warn("identification generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "identification unavailable"})
		return
	}

	ident := normalizeResponse(resp.Text)

	if _, errIncrement := h.counter.Increment(ctx, sess.User.ID, string(tier.FeatureIdentification), now); errIncrement != nil {
		log.WithError(errIncrement).Warn("usage increment failed")
	}
	h.recordUsage(c, sess.User.ID, string(resp.Provider), resp.Model, false, now)

	c.JSON(http.StatusOK, gin.H{
		"identification": ident,
		"remaining":      decision.Remaining,
	})
}

// normalizeResponse maps raw provider text to an identification. Providers are
// asked for JSON but free text happens; both paths end in a usable result.
func normalizeResponse(text string) *models.Identification {
	var payload any
	if errUnmarshal := json.Unmarshal([]byte(text), &payload); errUnmarshal != nil {
		return normalize.Placeholder(text)
	}
	ident, errNormalize := normalize.Identification(payload)
	if errNormalize != nil {
		return normalize.Placeholder(text)
	}
	return ident
}

// recordUsage persists a metered-call audit row.
func (h *IdentifyHandler) recordUsage(c *gin.Context, userID uint64, provider, model string, failed bool, now time.Time) {
	record := models.UsageRecord{
		UserID:      userID,
		Feature:     string(tier.FeatureIdentification),
		Provider:    provider,
		Model:       model,
		Failed:      failed,
		RequestedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&record).Error; errCreate != nil {
		log.WithError(errCreate).Warn("usage record write failed")
	}
}
