package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/crystalgrimoire/grimoire/internal/guidance"
	"github.com/crystalgrimoire/grimoire/internal/models"
	"github.com/crystalgrimoire/grimoire/internal/session"
	"github.com/crystalgrimoire/grimoire/internal/tier"
)

// GuidanceHandler serves personalized spiritual guidance requests.
type GuidanceHandler struct {
	db         *gorm.DB
	dispatcher *guidance.Dispatcher
}

// NewGuidanceHandler constructs a GuidanceHandler.
func NewGuidanceHandler(db *gorm.DB, dispatcher *guidance.Dispatcher) *GuidanceHandler {
	return &GuidanceHandler{db: db, dispatcher: dispatcher}
}

// guidanceRequest defines the request body for guidance.
type guidanceRequest struct {
	Query        string `json:"query"`
	GuidanceType string `json:"guidance_type"`
}

// Personalized builds the context bundle, dispatches the prompt, and falls
// back to local guidance text when every provider fails.
func (h *GuidanceHandler) Personalized(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var body guidanceRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	query := strings.TrimSpace(body.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query"})
		return
	}
	guidanceType := strings.TrimSpace(body.GuidanceType)
	if guidanceType == "" {
		guidanceType = "general"
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()

	pctx, errPersonalize := loadPersonalization(ctx, h.db, sess.User, now)
	if errPersonalize != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load personalization failed"})
		return
	}

	prompt := guidance.GuidancePrompt(query, guidanceType, pctx)
	resp, errGenerate := h.dispatcher.Generate(ctx, prompt, sess.Tier)
	if errGenerate != nil {
		log.WithError(errGenerate).Warn("guidance generation failed, serving fallback")
		c.JSON(http.StatusOK, gin.H{
			"guidance": guidance.FallbackGuidance(pctx),
			"source":   "fallback",
			"context":  pctx,
		})
		return
	}

	h.recordUsage(c, sess.User.ID, string(resp.Provider), resp.Model, now)

	c.JSON(http.StatusOK, gin.H{
		"guidance": resp.Text,
		"source":   string(resp.Provider),
		"model":    resp.Model,
		"context":  pctx,
	})
}

// recordUsage persists a guidance audit row.
func (h *GuidanceHandler) recordUsage(c *gin.Context, userID uint64, provider, model string, now time.Time) {
	record := models.UsageRecord{
		UserID:      userID,
		Feature:     string(tier.FeatureAdvancedAI),
		Provider:    provider,
		Model:       model,
		RequestedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&record).Error; errCreate != nil {
		log.WithError(errCreate).Warn("usage record write failed")
	}
}
