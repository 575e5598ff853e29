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

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// ListOrders handles GET /orders/admin/orders.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list orders",
		})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// ChangeStatus handles PUT /orders/:id/status.
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req domain.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "status and confirmation are required",
		})
		return
	}

	order, err := h.orderService.ChangeStatus(c.Request.Context(), orderID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, guard.ErrConfirmationMismatch):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Enter last 6 digits of Order ID to confirm!",
			})
		case errors.Is(err, guard.ErrStatusLocked):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Order status can only be changed after 2 hours of placement.",
			})
		case errors.Is(err, guard.ErrOrderCancelled):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Status cannot be changed for cancelled orders",
			})
		case errors.Is(err, guard.ErrStatusChangePending):
			c.JSON(http.StatusConflict, gin.H{
				"error": "A status change for this order is already pending",
			})
		default:
			h.logger.Error("Failed to change order status",
				zap.String("order_id", orderID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change order status"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}
