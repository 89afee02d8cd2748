package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crystalgrimoire/grimoire/internal/models"
	"github.com/crystalgrimoire/grimoire/internal/normalize"
	"github.com/crystalgrimoire/grimoire/internal/session"
	"github.com/crystalgrimoire/grimoire/internal/tier"
)

// CollectionHandler serves the crystal collection endpoints.
type CollectionHandler struct {
	db *gorm.DB
}

// NewCollectionHandler constructs a CollectionHandler.
func NewCollectionHandler(db *gorm.DB) *CollectionHandler {
	return &CollectionHandler{db: db}
}

// List returns the user's collection under the "crystals" key.
func (h *CollectionHandler) List(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var entries []models.CollectionEntry
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", sess.User.ID).
		Order("created_at DESC").
		Find(&entries).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list collection failed"})
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		out = append(out, collectionEntryJSON(entry))
	}
	c.JSON(http.StatusOK, gin.H{"crystals": out, "total": len(out)})
}

// collectionEntryJSON shapes one collection entry for responses. A stored
// identification payload is re-normalized so clients always see the same
// crystal shape the identify endpoint produces.
func collectionEntryJSON(entry models.CollectionEntry) gin.H {
	out := gin.H{
		"id":           entry.ID,
		"crystal_name": entry.CrystalName,
		"crystal_type": entry.CrystalType,
		"acquired_at":  entry.AcquiredAt,
		"notes":        entry.Notes,
		"intentions":   entry.Intentions,
		"usage_count":  entry.UsageCount,
		"last_used_at": entry.LastUsedAt,
		"created_at":   entry.CreatedAt,
	}

	var chakras []string
	if errUnmarshal := json.Unmarshal(entry.Chakras, &chakras); errUnmarshal == nil {
		out["chakras"] = chakras
	} else {
		out["chakras"] = []string{}
	}
	var tags []string
	if errUnmarshal := json.Unmarshal(entry.MetaphysicalTags, &tags); errUnmarshal == nil {
		out["metaphysical_tags"] = tags
	} else {
		out["metaphysical_tags"] = []string{}
	}

	if entry.IdentificationRaw != "" {
		var payload any
		if errUnmarshal := json.Unmarshal([]byte(entry.IdentificationRaw), &payload); errUnmarshal == nil {
			if crystal, errNormalize := normalize.CollectionCrystal(payload); errNormalize == nil {
				out["crystal"] = crystal
			}
		}
	}
	return out
}

// addCollectionRequest defines the request body for adding a crystal.
type addCollectionRequest struct {
	CrystalName      string   `json:"crystal_name"`
	CrystalType      string   `json:"crystal_type"`
	AcquiredAt       string   `json:"acquired_at"` // YYYY-MM-DD, optional.
	Notes            string   `json:"notes"`
	Intentions       string   `json:"intentions"`
	Chakras          []string `json:"chakras"`
	MetaphysicalTags []string `json:"metaphysical_tags"`
	Identification   any      `json:"identification"` // Raw identify response, optional.
}

// Add inserts a crystal into the collection, gated by the tier's collection
// size limit.
func (h *CollectionHandler) Add(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var body addCollectionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.CrystalName)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing crystal_name"})
		return
	}

	ctx := c.Request.Context()

	var count int64
	if errCount := h.db.WithContext(ctx).Model(&models.CollectionEntry{}).
		Where("user_id = ?", sess.User.ID).
		Count(&count).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count collection failed"})
		return
	}
	decision, errResolve := tier.Resolve(sess.Tier, tier.FeatureCollectionSize, int(count))
	if errResolve != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "access check failed"})
		return
	}
	if !decision.Allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"error":  "collection size limit reached",
			"reason": string(decision.Reason),
			"tier":   string(sess.Tier),
		})
		return
	}

	var acquiredAt *time.Time
	if raw := strings.TrimSpace(body.AcquiredAt); raw != "" {
		parsed, errParse := time.Parse("2006-01-02", raw)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid acquired_at, expected YYYY-MM-DD"})
			return
		}
		acquiredAt = &parsed
	}

	entry := models.CollectionEntry{
		UserID:           sess.User.ID,
		CrystalName:      name,
		CrystalType:      strings.TrimSpace(body.CrystalType),
		AcquiredAt:       acquiredAt,
		Notes:            body.Notes,
		Intentions:       body.Intentions,
		Chakras:          mustJSONList(body.Chakras),
		MetaphysicalTags: mustJSONList(body.MetaphysicalTags),
	}
	if body.Identification != nil {
		if raw, errMarshal := json.Marshal(body.Identification); errMarshal == nil {
			entry.IdentificationRaw = string(raw)
		}
	}

	if errCreate := h.db.WithContext(ctx).Create(&entry).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "add crystal failed"})
		return
	}
	c.JSON(http.StatusCreated, collectionEntryJSON(entry))
}

// updateCollectionRequest defines the request body for updating an entry.
type updateCollectionRequest struct {
	Notes            *string   `json:"notes"`
	Intentions       *string   `json:"intentions"`
	Chakras          *[]string `json:"chakras"`
	MetaphysicalTags *[]string `json:"metaphysical_tags"`
}

// Update modifies notes, intentions, or tags on an owned entry.
func (h *CollectionHandler) Update(c *gin.Context) {
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
	var body updateCollectionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.Notes != nil {
		updates["notes"] = *body.Notes
	}
	if body.Intentions != nil {
		updates["intentions"] = *body.Intentions
	}
	if body.Chakras != nil {
		updates["chakras"] = mustJSONList(*body.Chakras)
	}
	if body.MetaphysicalTags != nil {
		updates["metaphysical_tags"] = mustJSONList(*body.MetaphysicalTags)
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.CollectionEntry{}).
		Where("id = ? AND user_id = ?", id, sess.User.ID).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RecordUse bumps the usage counter on an owned entry.
func (h *CollectionHandler) RecordUse(c *gin.Context) {
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

	now := time.Now().UTC()
	res := h.db.WithContext(c.Request.Context()).Model(&models.CollectionEntry{}).
		Where("id = ? AND user_id = ?", id, sess.User.ID).
		Updates(map[string]any{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "record use failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes an owned entry.
func (h *CollectionHandler) Delete(c *gin.Context) {
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

	var entry models.CollectionEntry
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, sess.User.ID).
		First(&entry).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&entry).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// mustJSONList marshals a string list into a JSON column value. A nil list
// becomes the empty array.
func mustJSONList(list []string) datatypes.JSON {
	if list == nil {
		list = []string{}
	}
	raw, _ := json.Marshal(list)
	return datatypes.JSON(raw)
}
