package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crystalgrimoire/grimoire/internal/astrology"
	"github.com/crystalgrimoire/grimoire/internal/models"
	"github.com/crystalgrimoire/grimoire/internal/session"
)

// JournalHandler serves the mood journal endpoints.
type JournalHandler struct {
	db *gorm.DB
}

// NewJournalHandler constructs a JournalHandler.
func NewJournalHandler(db *gorm.DB) *JournalHandler {
	return &JournalHandler{db: db}
}

// List returns the user's journal entries, newest first.
func (h *JournalHandler) List(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	limit := 50
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	var entries []models.JournalEntry
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", sess.User.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list journal failed"})
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		out = append(out, gin.H{
			"id":         entry.ID,
			"mood":       entry.Mood,
			"content":    entry.Content,
			"moon_phase": entry.MoonPhase,
			"created_at": entry.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

// createJournalRequest defines the request body for journal entries.
type createJournalRequest struct {
	Mood    string `json:"mood"`
	Content string `json:"content"`
}

// Create stores a journal entry stamped with the current moon phase.
func (h *JournalHandler) Create(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var body createJournalRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Mood) == "" && strings.TrimSpace(body.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mood or content required"})
		return
	}

	entry := models.JournalEntry{
		UserID:    sess.User.ID,
		Mood:      strings.TrimSpace(body.Mood),
		Content:   body.Content,
		MoonPhase: astrology.CurrentMoonPhase(time.Now().UTC()).Label,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&entry).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create entry failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         entry.ID,
		"mood":       entry.Mood,
		"content":    entry.Content,
		"moon_phase": entry.MoonPhase,
		"created_at": entry.CreatedAt,
	})
}

// Delete removes an owned journal entry.
func (h *JournalHandler) Delete(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, sess.User.ID).
		Delete(&models.JournalEntry{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
