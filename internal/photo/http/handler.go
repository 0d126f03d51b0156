package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/item-sharing-backend/internal/auth"
	"github.com/nekogravitycat/item-sharing-backend/internal/photo"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/response"
)

type Handler struct {
	service  photo.Service
	maxBytes int64
}

func NewHandler(service photo.Service, maxBytes int64) *Handler {
	return &Handler{
		service:  service,
		maxBytes: maxBytes,
	}
}

// Upload attaches a multipart "file" field to the item as its photo.
func (h *Handler) Upload(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	// Leave room for the multipart envelope around the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer src.Close()

	p, err := h.service.Upload(c.Request.Context(), photo.UploadRequest{
		ItemID:     uri.ID,
		UploaderID: auth.GetUserID(c),
		Filename:   header.Filename,
		Content:    src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPhotoUploadResponse(p))
}

func (h *Handler) Serve(c *gin.Context) {
	h.serve(c, h.service.Download, false)
}

func (h *Handler) ServeThumbnail(c *gin.Context) {
	h.serve(c, h.service.DownloadThumbnail, true)
}

func (h *Handler) serve(c *gin.Context, open func(ctx context.Context, id string) (io.ReadCloser, *photo.Photo, error), thumb bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	stream, p, err := open(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	contentType := p.ContentType
	if thumb {
		contentType = "image/jpeg"
	}
	c.Header("Content-Type", contentType)
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Cache-Control", "private, max-age=86400")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		slog.Warn("photo stream interrupted", "photo_id", p.ID, "error", err)
	}
}
