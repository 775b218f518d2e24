package videos

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/clipdeck-api/api/types"
	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/resolver"
	"github.com/killallgit/clipdeck-api/internal/services/videos"
	apperrors "github.com/killallgit/clipdeck-api/pkg/errors"
)

// CreateVideoRequest represents the request to register a source video
// @Description Request body for registering a new source video by URL
type CreateVideoRequest struct {
	URL string `json:"url" binding:"required" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ" description:"Source video URL"`
}

// VideoResponse represents a source video in API responses
// @Description Complete information about a registered source video
type VideoResponse struct {
	UUID         string `json:"uuid" example:"052f3b9b-cc02-418c-a9ab-8f49534c01c8" description:"Unique identifier for the video"`
	URL          string `json:"url" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ" description:"Original source URL"`
	Title        string `json:"title" example:"Never Gonna Give You Up" description:"Resolved video title"`
	Description  string `json:"description,omitempty" description:"Resolved video description"`
	Duration     int    `json:"duration" example:"213" description:"Duration in seconds"`
	ThumbnailURL string `json:"thumbnail_url,omitempty" description:"Resolved thumbnail URL"`
	CreatedAt    string `json:"created_at" example:"2025-09-25T16:36:45Z" description:"Registration timestamp"`
	UpdatedAt    string `json:"updated_at" example:"2025-09-25T16:36:45Z" description:"Last update timestamp"`
}

func toVideoResponse(video *models.SourceVideo) VideoResponse {
	return VideoResponse{
		UUID:         video.UUID,
		URL:          video.URL,
		Title:        video.Title,
		Description:  video.Description,
		Duration:     video.Duration,
		ThumbnailURL: video.ThumbnailURL,
		CreatedAt:    video.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    video.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// CreateVideo handles source video registration
// @Summary Register a source video by URL
// @Description Resolve metadata for the given URL and register it as a source video.
// @Description Metadata is fetched synchronously; the media itself is downloaded lazily
// @Description when the first clip over this video is processed.
// @Tags videos
// @Accept json
// @Produce json
// @Param request body CreateVideoRequest true "Source video URL"
// @Success 201 {object} VideoResponse "Video registered successfully"
// @Failure 400 {object} types.ErrorResponse "Invalid or unsupported URL"
// @Failure 409 {object} types.ErrorResponse "URL already registered"
// @Failure 502 {object} types.ErrorResponse "Metadata resolution failed"
// @Router /api/v1/videos [post]
func CreateVideo(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateVideoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}

		video, err := deps.VideoService.CreateVideo(c.Request.Context(), types.UserID(c), req.URL)
		if err != nil {
			switch {
			case errors.Is(err, videos.ErrDuplicateURL):
				types.SendConflict(c, "Video URL already registered")
			case errors.Is(err, resolver.ErrUnsupportedURL):
				types.SendBadRequest(c, "Unsupported video URL")
			default:
				var resErr *resolver.ResolutionError
				if errors.As(err, &resErr) {
					types.SendError(c, apperrors.ExternalServiceError("metadata resolver", err))
					return
				}
				types.SendInternalError(c, fmt.Sprintf("Failed to register video: %v", err))
			}
			return
		}

		types.SendCreated(c, toVideoResponse(video))
	}
}

// GetVideo retrieves a specific source video
// @Summary Get video details by UUID
// @Description Retrieve metadata for a registered source video.
// @Tags videos
// @Produce json
// @Param uuid path string true "Unique video identifier (UUID format)"
// @Success 200 {object} VideoResponse "Video details retrieved successfully"
// @Failure 404 {object} types.ErrorResponse "Video with specified UUID not found"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/videos/{uuid} [get]
func GetVideo(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		video, err := deps.VideoService.GetVideo(c.Request.Context(), types.UserID(c), uuid)
		if err != nil {
			if errors.Is(err, videos.ErrVideoNotFound) {
				types.SendNotFound(c, "Video not found")
			} else {
				types.SendInternalError(c, fmt.Sprintf("Failed to get video: %v", err))
			}
			return
		}

		types.SendSuccess(c, toVideoResponse(video))
	}
}

// ListVideos lists the caller's registered videos
// @Summary List registered source videos
// @Description Retrieve a paginated list of the caller's registered source videos,
// @Description ordered by registration time (newest first).
// @Tags videos
// @Produce json
// @Param limit query int false "Maximum number of videos to return (1-1000)" default(100) minimum(1) maximum(1000)
// @Param offset query int false "Number of videos to skip for pagination" default(0) minimum(0)
// @Success 200 {array} VideoResponse "List of registered videos"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/videos [get]
func ListVideos(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		list, err := deps.VideoService.ListVideos(c.Request.Context(), types.UserID(c), limit, offset)
		if err != nil {
			types.SendInternalError(c, fmt.Sprintf("Failed to list videos: %v", err))
			return
		}

		response := make([]VideoResponse, len(list))
		for i, video := range list {
			response[i] = toVideoResponse(video)
		}
		types.SendSuccess(c, response)
	}
}

// DeleteVideo deletes a video, its clips, and all stored files
// @Summary Delete a source video
// @Description Permanently delete a source video together with all of its clips and
// @Description every stored file (source media, clip files, thumbnails).
// @Description This operation cannot be undone.
// @Tags videos
// @Param uuid path string true "Unique video identifier (UUID format)"
// @Success 204 "Video deleted successfully (no content returned)"
// @Failure 404 {object} types.ErrorResponse "Video with specified UUID not found"
// @Failure 500 {object} types.ErrorResponse "Internal server error during deletion"
// @Router /api/v1/videos/{uuid} [delete]
func DeleteVideo(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		if err := deps.VideoService.DeleteVideo(c.Request.Context(), types.UserID(c), uuid); err != nil {
			if errors.Is(err, videos.ErrVideoNotFound) {
				types.SendNotFound(c, "Video not found")
			} else {
				types.SendInternalError(c, fmt.Sprintf("Failed to delete video: %v", err))
			}
			return
		}

		c.Status(http.StatusNoContent)
	}
}
