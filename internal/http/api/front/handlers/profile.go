package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crystalgrimoire/grimoire/internal/astrology"
	"github.com/crystalgrimoire/grimoire/internal/quota"
	"github.com/crystalgrimoire/grimoire/internal/session"
	"github.com/crystalgrimoire/grimoire/internal/tier"
)

// ProfileHandler serves the user profile endpoints.
type ProfileHandler struct {
	db      *gorm.DB
	counter quota.Counter
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB, counter quota.Counter) *ProfileHandler {
	return &ProfileHandler{db: db, counter: counter}
}

// Get returns the profile, derived astrology, and remaining daily quota.
func (h *ProfileHandler) Get(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	user := sess.User

	policy, errPolicy := tier.PolicyFor(sess.Tier)
	if errPolicy != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid subscription tier"})
		return
	}

	now := time.Now().UTC()
	usage, errUsage := h.counter.Usage(c.Request.Context(), user.ID, string(tier.FeatureIdentification), now)
	if errUsage != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "usage lookup failed"})
		return
	}
	remaining := policy.DailyIdentifications
	if remaining != tier.Unlimited {
		remaining -= usage
		if remaining < 0 {
			remaining = 0
		}
	}

	var preferences map[string]any
	if errUnmarshal := json.Unmarshal(user.SpiritualPreferences, &preferences); errUnmarshal != nil {
		preferences = map[string]any{}
	}

	summary := astrology.Summarize(user.BirthDate)

	c.JSON(http.StatusOK, gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"name":              user.Name,
		"birth_date":        user.BirthDate,
		"birth_time":        user.BirthTime,
		"birth_location":    user.BirthLocation,
		"subscription_tier": string(sess.Tier),
		"totp_enabled":      user.TOTPSecret != "",
		"spiritual_preferences": preferences,
		"astrology": gin.H{
			"sun_sign":          summary.SunSign,
			"moon_sign":         summary.MoonSign,
			"ascendant":         summary.Ascendant,
			"dominant_elements": summary.DominantElements,
		},
		"quota": gin.H{
			"identifications_today":     usage,
			"identifications_remaining": remaining,
			"max_collection_size":       policy.MaxCollectionSize,
			"marketplace_selling":       policy.MarketplaceSelling,
			"advanced_ai":               policy.AdvancedAI,
			"model_class":               string(policy.ModelClass),
		},
	})
}

// updateProfileRequest defines the request body for profile updates.
type updateProfileRequest struct {
	Name                 *string        `json:"name"`
	BirthDate            *string        `json:"birth_date"` // YYYY-MM-DD; empty clears.
	BirthTime            *string        `json:"birth_time"`
	BirthLocation        *string        `json:"birth_location"`
	Latitude             *float64       `json:"latitude"`
	Longitude            *float64       `json:"longitude"`
	SpiritualPreferences map[string]any `json:"spiritual_preferences"`
}

// Update modifies the profile's birth data and preferences.
func (h *ProfileHandler) Update(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var body updateProfileRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.Name != nil {
		updates["name"] = strings.TrimSpace(*body.Name)
	}
	if body.BirthDate != nil {
		raw := strings.TrimSpace(*body.BirthDate)
		if raw == "" {
			updates["birth_date"] = nil
		} else {
			parsed, errParse := time.Parse("2006-01-02", raw)
			if errParse != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid birth_date, expected YYYY-MM-DD"})
				return
			}
			updates["birth_date"] = parsed
		}
	}
	if body.BirthTime != nil {
		updates["birth_time"] = strings.TrimSpace(*body.BirthTime)
	}
	if body.BirthLocation != nil {
		updates["birth_location"] = strings.TrimSpace(*body.BirthLocation)
	}
	if body.Latitude != nil {
		updates["latitude"] = *body.Latitude
	}
	if body.Longitude != nil {
		updates["longitude"] = *body.Longitude
	}
	if body.SpiritualPreferences != nil {
		raw, errMarshal := json.Marshal(body.SpiritualPreferences)
		if errMarshal != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spiritual_preferences"})
			return
		}
		updates["spiritual_preferences"] = datatypes.JSON(raw)
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(sess.User).
		Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update profile failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
