package clips

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/clipdeck-api/api/types"
)

// RegisterRoutes registers clip-related routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// Clip management endpoints
	router.POST("", CreateClip(deps))         // Create new clip definition
	router.GET("", ListClips(deps))           // List clips with filters
	router.GET("/:uuid", GetClip(deps))       // Get specific clip
	router.PUT("/:uuid", UpdateClip(deps))    // Update metadata or time range
	router.DELETE("/:uuid", DeleteClip(deps)) // Delete clip and its files

	// Processing and download
	router.POST("/:uuid/process", ProcessClip(deps))  // Queue background processing
	router.GET("/:uuid/download", DownloadClip(deps)) // Stream completed clip file
}
