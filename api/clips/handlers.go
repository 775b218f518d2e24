package clips

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/clipdeck-api/api/types"
	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/clips"
)

// CreateClipRequest represents the request to create a clip
// @Description Request body for defining a new clip over a source video
type CreateClipRequest struct {
	VideoUUID   string  `json:"video_uuid" binding:"required" example:"052f3b9b-cc02-418c-a9ab-8f49534c01c8" description:"UUID of the source video"`
	Title       string  `json:"title" binding:"required,min=1" example:"Best moment" description:"Clip title"`
	Description string  `json:"description" example:"The part everyone talks about" description:"Clip description"`
	StartTime   float64 `json:"start_time" binding:"min=0" example:"30" description:"Start time in seconds (can be 0)"`
	EndTime     float64 `json:"end_time" binding:"required,gt=0" example:"45" description:"End time in seconds (must be > start_time)"`
}

// UpdateClipRequest represents the request to update a clip
// @Description Request body for updating a clip's metadata or time range.
// @Description All fields are optional; only provided fields are changed.
type UpdateClipRequest struct {
	Title       *string  `json:"title,omitempty" example:"Better title"`
	Description *string  `json:"description,omitempty"`
	StartTime   *float64 `json:"start_time,omitempty" example:"25"`
	EndTime     *float64 `json:"end_time,omitempty" example:"40"`
}

// ClipResponse represents a clip in API responses
// @Description Complete information about a clip
type ClipResponse struct {
	UUID         string            `json:"uuid" example:"052f3b9b-cc02-418c-a9ab-8f49534c01c8" description:"Unique identifier for the clip"`
	VideoUUID    string            `json:"video_uuid,omitempty" description:"UUID of the source video"`
	Title        string            `json:"title" example:"Best moment" description:"Clip title"`
	Description  string            `json:"description,omitempty" description:"Clip description"`
	StartTime    float64           `json:"start_time" example:"30" description:"Start time in the source, in seconds"`
	EndTime      float64           `json:"end_time" example:"45" description:"End time in the source, in seconds"`
	Duration     float64           `json:"duration" example:"15" description:"Derived duration in seconds"`
	Status       models.ClipStatus `json:"status" example:"pending" description:"Processing status: pending, processing, completed, or failed"`
	ErrorMessage string            `json:"error_message,omitempty" example:"failed to download source video: HTTP 403" description:"Error details if status is failed"`
	CreatedAt    string            `json:"created_at" example:"2025-09-25T16:36:45Z" description:"Creation timestamp"`
	UpdatedAt    string            `json:"updated_at" example:"2025-09-25T16:36:47Z" description:"Last update timestamp"`
}

func toClipResponse(clip *models.Clip) ClipResponse {
	resp := ClipResponse{
		UUID:         clip.UUID,
		Title:        clip.Title,
		Description:  clip.Description,
		StartTime:    clip.StartTime,
		EndTime:      clip.EndTime,
		Duration:     clip.Duration,
		Status:       clip.Status,
		ErrorMessage: clip.ErrorMessage,
		CreatedAt:    clip.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    clip.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if clip.SourceVideo != nil {
		resp.VideoUUID = clip.SourceVideo.UUID
	}
	return resp
}

// CreateClip handles clip creation
// @Summary Define a new clip over a source video
// @Description Define a time-bounded clip of a registered source video. The clip is
// @Description created in "pending" status; trigger processing explicitly via the
// @Description process endpoint to produce the trimmed file and thumbnail.
// @Tags clips
// @Accept json
// @Produce json
// @Param request body CreateClipRequest true "Clip definition with source video UUID and time range in seconds"
// @Success 201 {object} ClipResponse "Clip created successfully"
// @Failure 400 {object} types.ErrorResponse "Invalid request parameters (e.g., end_time <= start_time or range beyond video duration)"
// @Failure 404 {object} types.ErrorResponse "Source video not found"
// @Failure 500 {object} types.ErrorResponse "Internal server error during clip creation"
// @Router /api/v1/clips [post]
func CreateClip(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateClipRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}

		clip, err := deps.ClipService.CreateClip(c.Request.Context(), types.UserID(c), clips.CreateClipParams{
			VideoUUID:   req.VideoUUID,
			Title:       req.Title,
			Description: req.Description,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		})
		if err != nil {
			switch {
			case errors.Is(err, clips.ErrInvalidTimeRange):
				types.SendBadRequest(c, err.Error())
			case err.Error() == "source video not found":
				types.SendNotFound(c, "Source video not found")
			default:
				types.SendInternalError(c, fmt.Sprintf("Failed to create clip: %v", err))
			}
			return
		}

		types.SendCreated(c, toClipResponse(clip))
	}
}

// CreateClipForVideoRequest is the request body for the nested
// creation route, where the source video comes from the URL
// @Description Request body for defining a clip under a specific video
type CreateClipForVideoRequest struct {
	Title       string  `json:"title" binding:"required,min=1" example:"Best moment"`
	Description string  `json:"description"`
	StartTime   float64 `json:"start_time" binding:"min=0" example:"30"`
	EndTime     float64 `json:"end_time" binding:"required,gt=0" example:"45"`
}

// CreateClipForVideo handles clip creation under a video path
// @Summary Define a new clip under a source video
// @Description Same as POST /clips, with the source video taken from the URL
// @Description instead of the request body.
// @Tags clips
// @Accept json
// @Produce json
// @Param uuid path string true "Source video identifier (UUID format)"
// @Param request body CreateClipForVideoRequest true "Clip definition with time range in seconds"
// @Success 201 {object} ClipResponse "Clip created successfully"
// @Failure 400 {object} types.ErrorResponse "Invalid request parameters"
// @Failure 404 {object} types.ErrorResponse "Source video not found"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/videos/{uuid}/clips [post]
func CreateClipForVideo(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		videoUUID := c.Param("uuid")
		if videoUUID == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		var req CreateClipForVideoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}

		clip, err := deps.ClipService.CreateClip(c.Request.Context(), types.UserID(c), clips.CreateClipParams{
			VideoUUID:   videoUUID,
			Title:       req.Title,
			Description: req.Description,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		})
		if err != nil {
			switch {
			case errors.Is(err, clips.ErrInvalidTimeRange):
				types.SendBadRequest(c, err.Error())
			case err.Error() == "source video not found":
				types.SendNotFound(c, "Source video not found")
			default:
				types.SendInternalError(c, fmt.Sprintf("Failed to create clip: %v", err))
			}
			return
		}

		types.SendCreated(c, toClipResponse(clip))
	}
}

// GetClip retrieves a specific clip
// @Summary Get clip details by UUID
// @Description Retrieve detailed information about a clip including its processing
// @Description status. Check the 'status' field to determine whether the clip file
// @Description is ready for download or publishing.
// @Tags clips
// @Produce json
// @Param uuid path string true "Unique clip identifier (UUID format)"
// @Success 200 {object} ClipResponse "Clip details retrieved successfully"
// @Failure 404 {object} types.ErrorResponse "Clip with specified UUID not found"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/clips/{uuid} [get]
func GetClip(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		clip, err := deps.ClipService.GetClip(c.Request.Context(), types.UserID(c), uuid)
		if err != nil {
			if errors.Is(err, clips.ErrClipNotFound) {
				types.SendNotFound(c, "Clip not found")
			} else {
				types.SendInternalError(c, fmt.Sprintf("Failed to get clip: %v", err))
			}
			return
		}

		types.SendSuccess(c, toClipResponse(clip))
	}
}

// ListClips lists clips with optional filters
// @Summary List clips with optional filtering
// @Description Retrieve a paginated list of the caller's clips with optional filtering
// @Description by source video and processing status. Results are ordered by creation
// @Description time (newest first).
// @Tags clips
// @Produce json
// @Param video_uuid query string false "Filter clips by source video UUID"
// @Param status query string false "Filter by processing status" Enums(pending, processing, completed, failed)
// @Param limit query int false "Maximum number of clips to return (1-1000)" default(100) minimum(1) maximum(1000)
// @Param offset query int false "Number of clips to skip for pagination" default(0) minimum(0)
// @Success 200 {array} ClipResponse "List of clips matching the filters"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/clips [get]
func ListClips(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		clipsList, err := deps.ClipService.ListClips(c.Request.Context(), types.UserID(c), clips.ListClipsFilters{
			VideoUUID: c.Query("video_uuid"),
			Status:    c.Query("status"),
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			types.SendInternalError(c, fmt.Sprintf("Failed to list clips: %v", err))
			return
		}

		response := make([]ClipResponse, len(clipsList))
		for i, clip := range clipsList {
			response[i] = toClipResponse(clip)
		}
		types.SendSuccess(c, response)
	}
}

// UpdateClip updates a clip's metadata or time range
// @Summary Update a clip
// @Description Update a clip's title, description, or time range. Edits are rejected
// @Description while the clip is processing. Changing the time range of a completed
// @Description clip removes its stale files and resets it to "pending" since the
// @Description existing output no longer matches the definition.
// @Tags clips
// @Accept json
// @Produce json
// @Param uuid path string true "Unique clip identifier (UUID format)"
// @Param request body UpdateClipRequest true "Fields to update (all optional)"
// @Success 200 {object} ClipResponse "Clip updated successfully"
// @Failure 400 {object} types.ErrorResponse "Invalid request (empty title or invalid time range)"
// @Failure 404 {object} types.ErrorResponse "Clip with specified UUID not found"
// @Failure 409 {object} types.ErrorResponse "Clip is currently processing"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/clips/{uuid} [put]
func UpdateClip(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		var req UpdateClipRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}

		clip, err := deps.ClipService.UpdateClip(c.Request.Context(), types.UserID(c), uuid, clips.UpdateClipParams{
			Title:       req.Title,
			Description: req.Description,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		})
		if err != nil {
			switch {
			case errors.Is(err, clips.ErrClipNotFound):
				types.SendNotFound(c, "Clip not found")
			case errors.Is(err, clips.ErrClipProcessing):
				types.SendConflict(c, "Clip is currently processing")
			case errors.Is(err, clips.ErrInvalidTimeRange):
				types.SendBadRequest(c, err.Error())
			default:
				types.SendInternalError(c, fmt.Sprintf("Failed to update clip: %v", err))
			}
			return
		}

		types.SendSuccess(c, toClipResponse(clip))
	}
}

// DeleteClip deletes a clip
// @Summary Delete a clip and its files
// @Description Permanently delete a clip from the database and remove its stored
// @Description files (clip media, thumbnail, optimized variants). Deletion is
// @Description rejected while the clip is processing.
// @Tags clips
// @Param uuid path string true "Unique clip identifier (UUID format)"
// @Success 204 "Clip deleted successfully (no content returned)"
// @Failure 404 {object} types.ErrorResponse "Clip with specified UUID not found"
// @Failure 409 {object} types.ErrorResponse "Clip is currently processing"
// @Failure 500 {object} types.ErrorResponse "Internal server error during deletion"
// @Router /api/v1/clips/{uuid} [delete]
func DeleteClip(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		if err := deps.ClipService.DeleteClip(c.Request.Context(), types.UserID(c), uuid); err != nil {
			switch {
			case errors.Is(err, clips.ErrClipNotFound):
				types.SendNotFound(c, "Clip not found")
			case errors.Is(err, clips.ErrClipProcessing):
				types.SendConflict(c, "Clip is currently processing")
			default:
				types.SendInternalError(c, fmt.Sprintf("Failed to delete clip: %v", err))
			}
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// ProcessClip queues a pending clip for processing
// @Summary Trigger clip processing
// @Description Queue a pending clip for background processing. A worker downloads the
// @Description source media if needed, trims the clip range, and generates a thumbnail.
// @Description Poll the clip's status to track progress. Triggering an already-queued
// @Description clip is a no-op that returns the existing state.
// @Tags clips
// @Produce json
// @Param uuid path string true "Unique clip identifier (UUID format)"
// @Success 202 {object} ClipResponse "Processing queued"
// @Failure 404 {object} types.ErrorResponse "Clip with specified UUID not found"
// @Failure 409 {object} types.ErrorResponse "Clip is not in pending status"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/clips/{uuid}/process [post]
func ProcessClip(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		clip, err := deps.ClipService.StartProcessing(c.Request.Context(), types.UserID(c), uuid)
		if err != nil {
			switch {
			case errors.Is(err, clips.ErrClipNotFound):
				types.SendNotFound(c, "Clip not found")
			case errors.Is(err, clips.ErrClipNotPending):
				types.SendConflict(c, "Clip is not in pending status")
			default:
				types.SendInternalError(c, fmt.Sprintf("Failed to queue processing: %v", err))
			}
			return
		}

		types.SendAccepted(c, toClipResponse(clip))
	}
}

// DownloadClip streams a completed clip's media file
// @Summary Download a completed clip
// @Description Stream the trimmed MP4 file of a completed clip as an attachment.
// @Description Only clips in "completed" status can be downloaded.
// @Tags clips
// @Produce video/mp4
// @Param uuid path string true "Unique clip identifier (UUID format)"
// @Success 200 {file} binary "Clip media file"
// @Failure 404 {object} types.ErrorResponse "Clip not found or its file is missing"
// @Failure 409 {object} types.ErrorResponse "Clip is not completed"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /api/v1/clips/{uuid}/download [get]
func DownloadClip(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			types.SendBadRequest(c, "UUID is required")
			return
		}

		clip, path, err := deps.ClipService.ClipFile(c.Request.Context(), types.UserID(c), uuid)
		if err != nil {
			switch {
			case errors.Is(err, clips.ErrClipNotFound):
				types.SendNotFound(c, "Clip not found")
			case errors.Is(err, clips.ErrClipNotCompleted):
				types.SendConflict(c, "Clip is not completed")
			case errors.Is(err, clips.ErrClipFileMissing):
				types.SendNotFound(c, "Clip file not found")
			default:
				types.SendInternalError(c, fmt.Sprintf("Failed to get clip file: %v", err))
			}
			return
		}

		c.Header("Content-Type", "video/mp4")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", clip.DownloadFilename()))
		c.File(path)
	}
}
