package transport

import (
	"encoding/base64"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/uu4k/promotimg-back/internal/entity"
)

const (
	createFailedMessage    = "failed to create caption image"
	unreadableImageMessage = "baseimage is not a readable image"
)

func (h *CaptionHandler) CreateCaption(c *gin.Context) {
	if c.ContentType() != gin.MIMEJSON {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": entity.ErrUnsupportedEncoding.Error()})
		return
	}
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	var payload entity.CaptionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		writeValidationError(c, toValidationError(err))
		return
	}

	req, err := toCaptionRequest(payload)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp, err := h.service.CreateCaption(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CaptionHandler) GetCaption(c *gin.Context) {
	id := c.Param("id")

	record, err := h.service.GetCaption(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, entity.ErrCaptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Caption not found"})
			return
		}
		logrus.WithError(err).WithField("caption_id", id).Error("failed to load caption")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load caption"})
		return
	}

	c.JSON(http.StatusOK, record)
}

func toCaptionRequest(payload entity.CaptionPayload) (entity.CaptionRequest, error) {
	ext := strings.ToLower(filepath.Ext(payload.BaseImageName))
	if !isValidImageType(ext) {
		return entity.CaptionRequest{}, &entity.ValidationError{Fields: []entity.FieldError{{
			Field:      "baseimagename",
			Constraint: "ext",
			Message:    "baseimagename must end in .jpg, .jpeg, .png or .gif",
		}}}
	}

	image, err := base64.StdEncoding.DecodeString(payload.BaseImage)
	if err != nil {
		return entity.CaptionRequest{}, &entity.ValidationError{Fields: []entity.FieldError{{
			Field:      "baseimage",
			Constraint: "base64",
			Message:    "baseimage must be base64 encoded",
		}}}
	}

	return entity.CaptionRequest{
		Text:         *payload.Text,
		Position:     payload.TextPosition,
		TextColor:    payload.TextColor,
		BgColor:      payload.BgColor,
		TextSizePx:   float64(payload.TextSize),
		BaseImage:    image,
		BaseImageExt: ext,
	}, nil
}

// writeError maps service errors to responses; tool output is logged, never returned.
func (h *CaptionHandler) writeError(c *gin.Context, err error) {
	var validationErr *entity.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeValidationError(c, validationErr)
	case errors.Is(err, entity.ErrInvalidBaseImage), errors.Is(err, entity.ErrUnsupportedImage):
		logrus.WithError(err).Warn("base image rejected")
		writeValidationError(c, singleField("baseimage", "image", unreadableImageMessage))
	default:
		logrus.WithError(err).Error("caption request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": createFailedMessage})
	}
}

func writeValidationError(c *gin.Context, err *entity.ValidationError) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  err.Error(),
		"fields": err.Fields,
	})
}

func isValidImageType(ext string) bool {
	validTypes := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
	}
	return validTypes[ext]
}
