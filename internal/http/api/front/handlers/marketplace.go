package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbutil "github.com/crystalgrimoire/grimoire/internal/db"
	"github.com/crystalgrimoire/grimoire/internal/models"
	"github.com/crystalgrimoire/grimoire/internal/session"
	"github.com/crystalgrimoire/grimoire/internal/tier"
)

// MarketplaceHandler serves marketplace listing endpoints.
type MarketplaceHandler struct {
	db *gorm.DB
}

// NewMarketplaceHandler constructs a MarketplaceHandler.
func NewMarketplaceHandler(db *gorm.DB) *MarketplaceHandler {
	return &MarketplaceHandler{db: db}
}

// List returns in-stock listings, optionally filtered by crystal name.
func (h *MarketplaceHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Listing{}).
		Where("in_stock = ?", true)

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "crystal_name"), pattern)
	}

	var listings []models.Listing
	if errFind := q.Order("created_at DESC").Limit(100).Find(&listings).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list listings failed"})
		return
	}

	out := make([]gin.H, 0, len(listings))
	for _, listing := range listings {
		out = append(out, gin.H{
			"id":           listing.ID,
			"seller_id":    listing.SellerID,
			"crystal_name": listing.CrystalName,
			"description":  listing.Description,
			"price":        listing.Price,
			"image_url":    listing.ImageURL,
			"created_at":   listing.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"listings": out})
}

// createListingRequest defines the request body for listing creation.
type createListingRequest struct {
	CrystalName string  `json:"crystal_name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
}

// Create publishes a listing, gated on the tier's selling permission.
func (h *MarketplaceHandler) Create(c *gin.Context) {
	sess, errSession := session.FromContext(c)
	if errSession != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	decision, errResolve := tier.Resolve(sess.Tier, tier.FeatureMarketplaceSelling, 0)
	if errResolve != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "access check failed"})
		return
	}
	if !decision.Allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"error":  "marketplace selling requires a premium subscription",
			"reason": string(decision.Reason),
			"tier":   string(sess.Tier),
		})
		return
	}

	var body createListingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.CrystalName)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing crystal_name"})
		return
	}
	if body.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}

	listing := models.Listing{
		SellerID:    sess.User.ID,
		CrystalName: name,
		Description: body.Description,
		Price:       body.Price,
		ImageURL:    strings.TrimSpace(body.ImageURL),
		InStock:     true,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&listing).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create listing failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":           listing.ID,
		"crystal_name": listing.CrystalName,
		"price":        listing.Price,
	})
}

// Delete removes one of the seller's own listings.
func (h *MarketplaceHandler) Delete(c *gin.Context) {
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
		Where("id = ? AND seller_id = ?", id, sess.User.ID).
		Delete(&models.Listing{})
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
