package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crystalgrimoire/grimoire/internal/astrology"
)

// MoonHandler serves the current moon phase.
type MoonHandler struct{}

// NewMoonHandler constructs a MoonHandler.
func NewMoonHandler() *MoonHandler {
	return &MoonHandler{}
}

// Current returns the moon phase at request time.
func (h *MoonHandler) Current(c *gin.Context) {
	phase := astrology.CurrentMoonPhase(time.Now().UTC())
	c.JSON(http.StatusOK, gin.H{
		"phase":        phase.Label,
		"illumination": phase.Illumination,
		"age_days":     phase.AgeDays,
	})
}
