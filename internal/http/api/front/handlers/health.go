package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crystalgrimoire/grimoire/internal/guidance"
)

// HealthHandler serves liveness and readiness checks.
type HealthHandler struct {
	db         *gorm.DB
	dispatcher *guidance.Dispatcher
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *gorm.DB, dispatcher *guidance.Dispatcher) *HealthHandler {
	return &HealthHandler{db: db, dispatcher: dispatcher}
}

// Health reports database reachability and configured AI providers.
func (h *HealthHandler) Health(c *gin.Context) {
	dbStatus := "ok"
	sqlDB, errDB := h.db.DB()
	if errDB != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "unreachable"
	}

	providers := gin.H{}
	if h.dispatcher != nil {
		for provider, available := range h.dispatcher.Available() {
			providers[string(provider)] = available
		}
	}

	status := http.StatusOK
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":    dbStatus,
		"providers": providers,
	})
}
