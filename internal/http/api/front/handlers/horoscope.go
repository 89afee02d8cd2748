package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crystalgrimoire/grimoire/internal/horoscope"
)

// HoroscopeHandler serves daily horoscope requests.
type HoroscopeHandler struct {
	svc *horoscope.Service
}

// NewHoroscopeHandler constructs a HoroscopeHandler.
func NewHoroscopeHandler(svc *horoscope.Service) *HoroscopeHandler {
	return &HoroscopeHandler{svc: svc}
}

// Daily returns the horoscope for the sign in the path.
func (h *HoroscopeHandler) Daily(c *gin.Context) {
	result, errDaily := h.svc.Daily(c.Request.Context(), c.Param("sign"), time.Now().UTC())
	if errDaily != nil {
		if errors.Is(errDaily, horoscope.ErrInvalidSign) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid zodiac sign"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "horoscope unavailable"})
		return
	}
	c.JSON(http.StatusOK, result)
}
