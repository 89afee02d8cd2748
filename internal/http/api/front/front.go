// Package front registers the user-facing API routes.
package front

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crystalgrimoire/grimoire/internal/config"
	"github.com/crystalgrimoire/grimoire/internal/guidance"
	"github.com/crystalgrimoire/grimoire/internal/horoscope"
	handlers "github.com/crystalgrimoire/grimoire/internal/http/api/front/handlers"
	"github.com/crystalgrimoire/grimoire/internal/models"
	"github.com/crystalgrimoire/grimoire/internal/payments"
	"github.com/crystalgrimoire/grimoire/internal/quota"
	"github.com/crystalgrimoire/grimoire/internal/security"
	"github.com/crystalgrimoire/grimoire/internal/session"
	"github.com/crystalgrimoire/grimoire/internal/tier"
)

// Deps bundles the shared services behind the front API.
type Deps struct {
	DB         *gorm.DB
	JWT        config.JWTConfig
	Counter    quota.Counter
	Dispatcher *guidance.Dispatcher
	Horoscope  *horoscope.Service
	Payments   *payments.Service
}

// RegisterFrontRoutes registers routes, middleware, and handlers for the
// user-facing API.
func RegisterFrontRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Dispatcher)
	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/v1")

	authHandler := handlers.NewAuthHandler(deps.DB, deps.JWT)
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	subscriptionHandler := handlers.NewSubscriptionHandler(deps.DB, deps.Payments)
	v1.POST("/webhook/stripe", subscriptionHandler.Webhook)

	moonHandler := handlers.NewMoonHandler()
	v1.GET("/moon/phase", moonHandler.Current)

	horoscopeHandler := handlers.NewHoroscopeHandler(deps.Horoscope)
	v1.GET("/horoscope/:sign", horoscopeHandler.Daily)

	marketplaceHandler := handlers.NewMarketplaceHandler(deps.DB)
	v1.GET("/marketplace/listings", marketplaceHandler.List)

	authed := v1.Group("")
	authed.Use(userAuthMiddleware(deps.DB, deps.JWT))

	authed.POST("/auth/totp/prepare", authHandler.PrepareTOTP)
	authed.POST("/auth/totp/confirm", authHandler.ConfirmTOTP)
	authed.POST("/auth/totp/disable", authHandler.DisableTOTP)

	identifyHandler := handlers.NewIdentifyHandler(deps.DB, deps.Counter, deps.Dispatcher)
	authed.POST("/crystal/identify", identifyHandler.Identify)

	guidanceHandler := handlers.NewGuidanceHandler(deps.DB, deps.Dispatcher)
	authed.POST("/guidance/personalized", guidanceHandler.Personalized)

	collectionHandler := handlers.NewCollectionHandler(deps.DB)
	authed.GET("/collection", collectionHandler.List)
	authed.POST("/collection", collectionHandler.Add)
	authed.PUT("/collection/:id", collectionHandler.Update)
	authed.POST("/collection/:id/used", collectionHandler.RecordUse)
	authed.DELETE("/collection/:id", collectionHandler.Delete)

	journalHandler := handlers.NewJournalHandler(deps.DB)
	authed.GET("/journal", journalHandler.List)
	authed.POST("/journal", journalHandler.Create)
	authed.DELETE("/journal/:id", journalHandler.Delete)

	profileHandler := handlers.NewProfileHandler(deps.DB, deps.Counter)
	authed.GET("/profile", profileHandler.Get)
	authed.PUT("/profile", profileHandler.Update)

	authed.POST("/subscription/checkout", subscriptionHandler.Checkout)
	authed.GET("/subscription/status", subscriptionHandler.Status)

	authed.POST("/marketplace/listings", marketplaceHandler.Create)
	authed.DELETE("/marketplace/listings/:id", marketplaceHandler.Delete)
}

// userAuthMiddleware validates user JWTs and attaches the session.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseUserToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}

		// A tier value outside the enumeration is data corruption, not a
		// reason to silently grant free-tier access.
		userTier, errTier := tier.Parse(user.SubscriptionTier)
		if errTier != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "invalid subscription tier"})
			return
		}

		session.Set(c, &session.Session{User: &user, Tier: userTier})
		c.Next()
	}
}
