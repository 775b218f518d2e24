package posts

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/clipdeck-api/api/types"
)

// RegisterRoutes registers post-related routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("", CreatePost(deps))         // Create publish request
	router.GET("", ListPosts(deps))           // List posts with filters
	router.GET("/:uuid", GetPost(deps))       // Get specific post
	router.DELETE("/:uuid", DeletePost(deps)) // Delete post
}
