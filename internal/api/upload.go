package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/service"
)

// multipart framing allowance on top of the attachment limit
const uploadOverhead = 1 << 20

type UploadHandler struct {
	uploadService service.IUploadService
}

func NewUploadHandler(uploadService service.IUploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

func (h *UploadHandler) RegisterRoutes(router *gin.RouterGroup, writeLimit gin.HandlerFunc) {
	router.POST("/feedback/upload", writeLimit, h.Upload)
}

// Upload accepts one image in the multipart field "file"
func (h *UploadHandler) Upload(c *gin.Context) {
	maxBytes := h.uploadService.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+uploadOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, apierrors.PayloadTooLarge(fmt.Sprintf("file exceeds %dMB limit.", maxBytes>>20)))
			return
		}
		respondError(c, apierrors.BadRequest("file is required."))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, apierrors.BadRequest("file is required.").Wrap(err))
		return
	}
	defer file.Close()

	resp, err := h.uploadService.Upload(c.Request.Context(), service.UploadFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
