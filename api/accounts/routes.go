package accounts

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/clipdeck-api/api/types"
)

// RegisterRoutes registers social account routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("", CreateAccount(deps))         // Connect account
	router.GET("", ListAccounts(deps))           // List connected accounts
	router.GET("/:uuid", GetAccount(deps))       // Get specific account
	router.DELETE("/:uuid", DeleteAccount(deps)) // Disconnect account
}
