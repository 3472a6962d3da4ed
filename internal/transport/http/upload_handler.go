package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shfq/lovechat-server/internal/blob"
)

// UploadHandlers provides the image upload gateway: binary payload in, public
// URL out. The relay consumes only the URL.
type UploadHandlers struct {
	blobs blob.Store
	log   *zerolog.Logger
}

// NewUploadHandlers creates a new upload handlers instance.
func NewUploadHandlers(blobs blob.Store, logger *zerolog.Logger) *UploadHandlers {
	return &UploadHandlers{
		blobs: blobs,
		log:   logger,
	}
}

// UploadResponse represents a successful upload response body.
type UploadResponse struct {
	URL string `json:"url"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Upload handles image uploads.
// POST /api/upload, multipart field "image"
func (h *UploadHandlers) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		h.log.Debug().Err(err).Msg("upload without file")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "upload failed"})
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "upload failed"})
		return
	}

	mtype := mimetype.Detect(payload)
	if !strings.HasPrefix(mtype.String(), "image/") {
		h.log.Debug().Str("content_type", mtype.String()).Msg("rejected non-image upload")
		c.JSON(http.StatusUnsupportedMediaType, ErrorResponse{Error: "only image uploads are accepted"})
		return
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), mtype.Extension())
	url, err := h.blobs.Put(c.Request.Context(), name, mtype.String(), bytes.NewReader(payload))
	if err != nil {
		h.log.Error().Err(err).Str("name", name).Msg("failed to store upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "upload failed"})
		return
	}

	h.log.Info().Str("name", name).Str("content_type", mtype.String()).Int("size", len(payload)).Msg("image uploaded")
	c.JSON(http.StatusOK, UploadResponse{URL: url})
}
