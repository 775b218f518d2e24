package posts

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/clipdeck-api/api/types"
	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/posts"
)

// CreatePostRequest represents the request to publish a clip
// @Description Request body for creating a publish request. Omitting scheduled_at
// @Description publishes immediately; providing it defers publishing until that time.
type CreatePostRequest struct {
	ClipUUID    string     `json:"clip_uuid" binding:"required" example:"052f3b9b-cc02-418c-a9ab-8f49534c01c8" description:"UUID of the completed clip to publish"`
	AccountUUID string     `json:"account_uuid" binding:"required" example:"9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d" description:"UUID of the connected account to publish to"`
	Title       string     `json:"title" example:"Check this out" description:"Post title (defaults to the clip title)"`
	Description string     `json:"description" description:"Post caption/description"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" example:"2025-10-01T18:00:00Z" description:"Optional future publish time (RFC3339)"`
}

// PostResponse represents a publish request in API responses
// @Description Complete information about a publish request
type PostResponse struct {
	UUID         string            `json:"uuid" example:"052f3b9b-cc02-418c-a9ab-8f49534c01c8" description:"Unique identifier for the post"`
	ClipUUID     string            `json:"clip_uuid,omitempty" description:"UUID of the clip being published"`
	AccountUUID  string            `json:"account_uuid,omitempty" description:"UUID of the target account"`
	Platform     string            `json:"platform,omitempty" example:"tiktok" description:"Target platform"`
	Title        string            `json:"title" example:"Check this out" description:"Post title"`
	Description  string            `json:"description,omitempty" description:"Post caption/description"`
	Status       models.PostStatus `json:"status" example:"pending" description:"Lifecycle status: pending, scheduled, posting, posted, or failed"`
	ScheduledAt  string            `json:"scheduled_at,omitempty" example:"2025-10-01T18:00:00Z" description:"Scheduled publish time for deferred posts"`
	PlatformURL  string            `json:"platform_url,omitempty" description:"URL of the published content once posted"`
	ErrorMessage string            `json:"error_message,omitempty" description:"Error details if status is failed"`
	PostedAt     string            `json:"posted_at,omitempty" description:"Timestamp of successful publication"`
	CreatedAt    string            `json:"created_at" example:"2025-09-25T16:36:45Z" description:"Creation timestamp"`
	UpdatedAt    string            `json:"updated_at" example:"2025-09-25T16:36:47Z" description:"Last update timestamp"`
}

func toPostResponse(post *models.Post) PostResponse {
	resp := PostResponse{
		UUID:         post.UUID,
		Title:        post.Title,
		Description:  post.Description,
		Status:       post.Status,
		PlatformURL:  post.PlatformURL,
		ErrorMessage: post.ErrorMessage,
		CreatedAt:    post.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    post.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if post.Clip != nil {
		resp.ClipUUID = post.Clip.UUID
	}
	if post.SocialAccount != nil {
		resp.AccountUUID = post.SocialAccount.UUID
		resp.Platform = string(post.SocialAccount.Platform)
	}
	if post.ScheduledAt != nil {
		resp.ScheduledAt = post.ScheduledAt.UTC().Format(time.RFC3339)
	}
	if post.PostedAt != nil {
		resp.PostedAt = post.PostedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// CreatePost creates a publish request
// @Summary Publish a clip to a social account
// @Description Create a publish request tying a completed clip to a connected account.
// @Description Without scheduled_at the publish job is queued immediately; with it the
// @Description post waits in "scheduled" status until the dispatcher promotes it.
// @Description Publishing runs in the background via scripted browser automation;
// @Description poll the post's status to track the outcome.
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Clip, target account, and optional schedule"
// @Success 202 {object} PostResponse "Publish request accepted"
// @Failure 400 {object} types.ErrorResponse "Invalid request or scheduled time in the past"
// @Failure 404 {object} types.ErrorResponse "Clip or account not found"
// @Failure 409 {object} types.ErrorResponse "Clip is not completed or account is disconnected"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/posts [post]
func CreatePost(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}

		post, err := deps.PostService.CreatePost(c.Request.Context(), types.UserID(c), posts.CreatePostParams{
			ClipUUID:    req.ClipUUID,
			AccountUUID: req.AccountUUID,
			Title:       req.Title,
			Description: req.Description,
			ScheduledAt: req.ScheduledAt,
		})
		if err != nil {
			switch {
			case err.Error() == "clip not found":
				types.SendNotFound(c, "Clip not found")
			case errors.Is(err, posts.ErrClipNotReady):
				types.SendConflict(c, "Clip is not completed")
			case errors.Is(err, posts.ErrAccountNotUsable):
				types.SendConflict(c, "Account not found or disconnected")
			case errors.Is(err, posts.ErrScheduleInPast):
				types.SendBadRequest(c, "Scheduled time is in the past")
			default:
				types.SendInternalError(c, fmt.Sprintf("Failed to create post: %v", err))
			}
			return
		}

		types.SendAccepted(c, toPostResponse(post))
	}
}

// GetPost retrieves a specific post
// @Summary Get post details by UUID
// @Description Retrieve a publish request including its lifecycle status, the
// @Description platform URL once posted, and error details on failure.
// @Tags posts
// @Produce json
// @Param uuid path string true "Unique post identifier (UUID format)"
// @Success 200 {object} PostResponse "Post details retrieved successfully"
// @Failure 404 {object} types.ErrorResponse "Post with specified UUID not found"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/posts/{uuid} [get]
func GetPost(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		post, err := deps.PostService.GetPost(c.Request.Context(), types.UserID(c), uuid)
		if err != nil {
			if errors.Is(err, posts.ErrPostNotFound) {
				types.SendNotFound(c, "Post not found")
			} else {
				types.SendInternalError(c, fmt.Sprintf("Failed to get post: %v", err))
			}
			return
		}

		types.SendSuccess(c, toPostResponse(post))
	}
}

// ListPosts lists posts with optional filters
// @Summary List posts with optional filtering
// @Description Retrieve a paginated list of the caller's publish requests with
// @Description optional status filtering. Results are ordered by creation time
// @Description (newest first).
// @Tags posts
// @Produce json
// @Param status query string false "Filter by lifecycle status" Enums(pending, scheduled, posting, posted, failed)
// @Param limit query int false "Maximum number of posts to return (1-1000)" default(100) minimum(1) maximum(1000)
// @Param offset query int false "Number of posts to skip for pagination" default(0) minimum(0)
// @Success 200 {array} PostResponse "List of posts matching the filters"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/posts [get]
func ListPosts(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		list, err := deps.PostService.ListPosts(c.Request.Context(), types.UserID(c), posts.ListPostsFilters{
			Status: c.Query("status"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			types.SendInternalError(c, fmt.Sprintf("Failed to list posts: %v", err))
			return
		}

		response := make([]PostResponse, len(list))
		for i, post := range list {
			response[i] = toPostResponse(post)
		}
		types.SendSuccess(c, response)
	}
}

// DeletePost deletes a post
// @Summary Delete a publish request
// @Description Delete a publish request. Deletion is rejected while a publish
// @Description attempt is in flight. Deleting a scheduled post cancels it.
// @Tags posts
// @Param uuid path string true "Unique post identifier (UUID format)"
// @Success 204 "Post deleted successfully (no content returned)"
// @Failure 404 {object} types.ErrorResponse "Post with specified UUID not found"
// @Failure 409 {object} types.ErrorResponse "Post is currently publishing"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/posts/{uuid} [delete]
func DeletePost(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		if err := deps.PostService.DeletePost(c.Request.Context(), types.UserID(c), uuid); err != nil {
			switch {
			case errors.Is(err, posts.ErrPostNotFound):
				types.SendNotFound(c, "Post not found")
			case errors.Is(err, posts.ErrPostInFlight):
				types.SendConflict(c, "Post is currently publishing")
			default:
				types.SendInternalError(c, fmt.Sprintf("Failed to delete post: %v", err))
			}
			return
		}

		c.Status(http.StatusNoContent)
	}
}
