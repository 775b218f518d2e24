package videos

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/clipdeck-api/api/types"
)

// RegisterRoutes registers video-related routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("", CreateVideo(deps))         // Register new video
	router.GET("", ListVideos(deps))           // List registered videos
	router.GET("/:uuid", GetVideo(deps))       // Get specific video
	router.DELETE("/:uuid", DeleteVideo(deps)) // Delete video and its clips
}
