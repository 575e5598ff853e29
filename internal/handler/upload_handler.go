package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/upload"
)

type UploadHandler struct {
	store  upload.ImageStore
	logger *zap.Logger
}

func NewUploadHandler(store upload.ImageStore, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		store:  store,
		logger: logger,
	}
}

// UploadProductImage handles POST /upload/product-image (multipart,
// field name "file") and returns {"url": ...}.
func (h *UploadHandler) UploadProductImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a file field is required"})
		return
	}
	if fileHeader.Size > upload.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds the 5 MiB limit"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer f.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.store.PutImage(c.Request.Context(), f, fileHeader.Size, contentType)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedImageType) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to store image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
