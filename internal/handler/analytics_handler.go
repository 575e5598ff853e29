package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
	"github.com/kpmisthah/twaybastore-admin/internal/service"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	logger           *zap.Logger
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// TopSearches handles GET /analytics/search.
func (h *AnalyticsHandler) TopSearches(c *gin.Context) {
	entries, err := h.analyticsService.TopSearches(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to read search analytics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read analytics"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// TopPages handles GET /analytics/pages.
func (h *AnalyticsHandler) TopPages(c *gin.Context) {
	entries, err := h.analyticsService.TopPages(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to read page analytics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read analytics"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// CategoryClicks handles GET /category-clicks.
func (h *AnalyticsHandler) CategoryClicks(c *gin.Context) {
	entries, err := h.analyticsService.CategoryClicks(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to read category analytics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read analytics"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// RecordCategoryClick handles POST /category-clicks; the storefront
// fires it when a visitor opens a category section.
func (h *AnalyticsHandler) RecordCategoryClick(c *gin.Context) {
	var req domain.CategoryClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		return
	}

	h.analyticsService.RecordCategoryClick(c.Request.Context(), req.Category)
	c.JSON(http.StatusAccepted, gin.H{"message": "recorded"})
}
