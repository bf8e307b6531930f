package transport

import (
	"github.com/uu4k/promotimg-back/internal/service"
)

type CaptionHandler struct {
	service      service.CaptionService
	maxBodyBytes int64
}

// NewCaptionHandler limits request bodies to maxBodyBytes; zero or less means unlimited.
func NewCaptionHandler(service service.CaptionService, maxBodyBytes int64) *CaptionHandler {
	return &CaptionHandler{service: service, maxBodyBytes: maxBodyBytes}
}
