package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
	"github.com/kpmisthah/twaybastore-admin/internal/guard"
	"github.com/kpmisthah/twaybastore-admin/internal/service"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

func NewInventoryHandler(inventoryService *service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// AddStock handles PATCH /admin/products/:id/add-stock.
func (h *InventoryHandler) AddStock(c *gin.Context) {
	h.adjust(c, guard.OpAdd)
}

// AdjustStock handles PATCH /admin/products/:id/adjust-stock, the
// subtract path.
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	h.adjust(c, guard.OpSubtract)
}

func (h *InventoryHandler) adjust(c *gin.Context, op guard.Operation) {
	productID := c.Param("id")

	var req domain.StockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "quantity must be a positive integer",
		})
		return
	}

	result, err := h.inventoryService.AdjustStock(c.Request.Context(), productID, req, op)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		case errors.Is(err, service.ErrVariantNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Variant not found"})
		case errors.Is(err, service.ErrInsufficientStock):
			c.JSON(http.StatusBadRequest, gin.H{
				"message":   "Insufficient stock",
				"requested": req.Quantity,
			})
		case errors.Is(err, service.ErrAdjustmentInFlight):
			c.JSON(http.StatusConflict, gin.H{
				"message": "An adjustment for this item is already in flight",
			})
		case errors.Is(err, guard.ErrQuantityTooSmall):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			h.logger.Error("Failed to adjust stock",
				zap.String("product_id", productID),
				zap.String("operation", string(op)),
				zap.Error(err))
			// Surface the backend's message when it has one; the
			// dashboard shows it verbatim.
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Failed to adjust stock",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
