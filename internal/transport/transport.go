package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uu4k/promotimg-back/internal/pkg/storage"
	"github.com/uu4k/promotimg-back/internal/transport/middleware"
)

// InitRoutes builds the router. filesDir is served under storage.FilesRoute
// when non-empty.
func InitRoutes(captionHandler *CaptionHandler, filesDir string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(), middleware.CORS())

	router.POST("/", captionHandler.CreateCaption)
	router.GET("/captions/:id", captionHandler.GetCaption)

	if filesDir != "" {
		router.Static(storage.FilesRoute, filesDir)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "caption-image-service",
		})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return router
}
