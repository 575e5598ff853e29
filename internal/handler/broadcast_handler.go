package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
	"github.com/kpmisthah/twaybastore-admin/internal/service"
)

type BroadcastHandler struct {
	broadcastService *service.BroadcastService
	logger           *zap.Logger
}

func NewBroadcastHandler(broadcastService *service.BroadcastService, logger *zap.Logger) *BroadcastHandler {
	return &BroadcastHandler{
		broadcastService: broadcastService,
		logger:           logger,
	}
}

// SendBroadcast handles POST /admin/send-broadcast.
func (h *BroadcastHandler) SendBroadcast(c *gin.Context) {
	var req domain.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "subject and content are required"})
		return
	}

	resp, err := h.broadcastService.SendBroadcast(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBroadcastEmpty),
			errors.Is(err, service.ErrBroadcastUnsafe),
			errors.Is(err, service.ErrBroadcastTooShort),
			errors.Is(err, service.ErrNoBroadcastTargets):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			h.logger.Error("Failed to send broadcast", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send broadcast"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Email sent successfully!",
		"recipients": resp.Recipients,
		"failed":     resp.Failed,
	})
}
