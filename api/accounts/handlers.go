package accounts

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/clipdeck-api/api/types"
	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/accounts"
)

// CreateAccountRequest represents the request to connect a social account
// @Description Request body for connecting a social account. Credentials are
// @Description stored for the browser automation layer and never returned.
type CreateAccountRequest struct {
	Platform string `json:"platform" binding:"required" example:"tiktok" description:"Publishing platform: tiktok, instagram, or youtube_shorts"`
	Username string `json:"username" binding:"required,min=1" example:"creator123" description:"Platform username"`
	Password string `json:"password" binding:"required,min=1" description:"Platform password (write-only)"`
}

// AccountResponse represents a social account in API responses.
// The password is never included.
// @Description Information about a connected social account
type AccountResponse struct {
	UUID       string `json:"uuid" example:"052f3b9b-cc02-418c-a9ab-8f49534c01c8" description:"Unique identifier for the account"`
	Platform   string `json:"platform" example:"tiktok" description:"Publishing platform"`
	Username   string `json:"username" example:"creator123" description:"Platform username"`
	Connected  bool   `json:"connected" example:"true" description:"Whether the account is usable for publishing"`
	LastUsedAt string `json:"last_used_at,omitempty" example:"2025-09-25T16:36:45Z" description:"Timestamp of the last publish attempt"`
	CreatedAt  string `json:"created_at" example:"2025-09-25T16:36:45Z" description:"Connection timestamp"`
}

func toAccountResponse(account *models.SocialAccount) AccountResponse {
	resp := AccountResponse{
		UUID:      account.UUID,
		Platform:  string(account.Platform),
		Username:  account.Username,
		Connected: account.Connected,
		CreatedAt: account.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if account.LastUsedAt != nil {
		resp.LastUsedAt = account.LastUsedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// CreateAccount connects a social account
// @Summary Connect a social account
// @Description Connect a social account for publishing. At most one account per
// @Description platform can be connected per user. Credentials are stored for the
// @Description scripted browser automation and never returned by the API.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Platform and credentials"
// @Success 201 {object} AccountResponse "Account connected successfully"
// @Failure 400 {object} types.ErrorResponse "Invalid platform or missing credentials"
// @Failure 409 {object} types.ErrorResponse "Account already connected for this platform"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/accounts [post]
func CreateAccount(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}

		account, err := deps.AccountService.CreateAccount(c.Request.Context(), types.UserID(c), accounts.CreateAccountParams{
			Platform: models.Platform(req.Platform),
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, accounts.ErrInvalidPlatform):
				types.SendBadRequest(c, err.Error())
			case errors.Is(err, accounts.ErrDuplicateAccount):
				types.SendConflict(c, "Account already connected for this platform")
			default:
				types.SendInternalError(c, fmt.Sprintf("Failed to connect account: %v", err))
			}
			return
		}

		types.SendCreated(c, toAccountResponse(account))
	}
}

// GetAccount retrieves a specific account
// @Summary Get account details by UUID
// @Description Retrieve a connected social account. The password is never returned.
// @Tags accounts
// @Produce json
// @Param uuid path string true "Unique account identifier (UUID format)"
// @Success 200 {object} AccountResponse "Account details retrieved successfully"
// @Failure 404 {object} types.ErrorResponse "Account with specified UUID not found"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/accounts/{uuid} [get]
func GetAccount(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		account, err := deps.AccountService.GetAccount(c.Request.Context(), types.UserID(c), uuid)
		if err != nil {
			if errors.Is(err, accounts.ErrAccountNotFound) {
				types.SendNotFound(c, "Account not found")
			} else {
				types.SendInternalError(c, fmt.Sprintf("Failed to get account: %v", err))
			}
			return
		}

		types.SendSuccess(c, toAccountResponse(account))
	}
}

// ListAccounts lists the caller's connected accounts
// @Summary List connected social accounts
// @Description Retrieve all of the caller's connected social accounts.
// @Tags accounts
// @Produce json
// @Success 200 {array} AccountResponse "List of connected accounts"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/accounts [get]
func ListAccounts(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.AccountService.ListAccounts(c.Request.Context(), types.UserID(c))
		if err != nil {
			types.SendInternalError(c, fmt.Sprintf("Failed to list accounts: %v", err))
			return
		}

		response := make([]AccountResponse, len(list))
		for i, account := range list {
			response[i] = toAccountResponse(account)
		}
		types.SendSuccess(c, response)
	}
}

// DeleteAccount disconnects an account
// @Summary Disconnect a social account
// @Description Disconnect and delete a social account. Existing posts keep their
// @Description history but no new posts can target the account.
// @Tags accounts
// @Param uuid path string true "Unique account identifier (UUID format)"
// @Success 204 "Account disconnected successfully (no content returned)"
// @Failure 404 {object} types.ErrorResponse "Account with specified UUID not found"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/accounts/{uuid} [delete]
func DeleteAccount(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		if err := deps.AccountService.DeleteAccount(c.Request.Context(), types.UserID(c), uuid); err != nil {
			if errors.Is(err, accounts.ErrAccountNotFound) {
				types.SendNotFound(c, "Account not found")
			} else {
				types.SendInternalError(c, fmt.Sprintf("Failed to disconnect account: %v", err))
			}
			return
		}

		c.Status(http.StatusNoContent)
	}
}
