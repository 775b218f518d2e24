// Package clips manages clip definitions and their processing
// lifecycle. A clip is a time range over a source video; processing
// turns the range into a trimmed file plus thumbnail in background.
package clips

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/jobs"
	"github.com/killallgit/clipdeck-api/internal/services/storage"
	"gorm.io/gorm"
)

var (
	ErrClipNotFound     = errors.New("clip not found")
	ErrClipProcessing   = errors.New("clip is currently processing")
	ErrClipNotPending   = errors.New("clip is not pending")
	ErrClipNotCompleted = errors.New("clip is not completed")
	ErrClipFileMissing  = errors.New("clip file not found on disk")
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// Service defines the interface for clip management
type Service interface {
	// CreateClip defines a new clip over a source video
	CreateClip(ctx context.Context, userID string, params CreateClipParams) (*models.Clip, error)

	// GetClip retrieves a clip by UUID, scoped to the owner
	GetClip(ctx context.Context, userID, uuid string) (*models.Clip, error)

	// ListClips lists the owner's clips with optional filters
	ListClips(ctx context.Context, userID string, filters ListClipsFilters) ([]*models.Clip, error)

	// UpdateClip changes a clip's metadata or time range
	UpdateClip(ctx context.Context, userID, uuid string, params UpdateClipParams) (*models.Clip, error)

	// DeleteClip removes a clip and its files
	DeleteClip(ctx context.Context, userID, uuid string) error

	// StartProcessing queues a pending clip for background processing
	StartProcessing(ctx context.Context, userID, uuid string) (*models.Clip, error)

	// ClipFile returns a completed clip and the path of its media file
	ClipFile(ctx context.Context, userID, uuid string) (*models.Clip, string, error)
}

// CreateClipParams contains parameters for creating a clip
type CreateClipParams struct {
	VideoUUID   string
	Title       string
	Description string
	StartTime   float64
	EndTime     float64
}

// UpdateClipParams contains optional fields for updating a clip
type UpdateClipParams struct {
	Title       *string
	Description *string
	StartTime   *float64
	EndTime     *float64
}

// ListClipsFilters contains filters for listing clips
type ListClipsFilters struct {
	VideoUUID string
	Status    string
	Limit     int
	Offset    int
}

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	db         *gorm.DB
	store      storage.MediaStore
	jobService jobs.Service
}

// NewService creates a new clips service
func NewService(db *gorm.DB, store storage.MediaStore, jobService jobs.Service) Service {
	return &ServiceImpl{
		db:         db,
		store:      store,
		jobService: jobService,
	}
}

// CreateClip defines a new clip over a source video
func (s *ServiceImpl) CreateClip(ctx context.Context, userID string, params CreateClipParams) (*models.Clip, error) {
	if params.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	var video models.SourceVideo
	err := s.db.WithContext(ctx).
		Where("uuid = ? AND user_id = ?", params.VideoUUID, userID).
		First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("source video not found")
		}
		return nil, fmt.Errorf("failed to get source video: %w", err)
	}

	if err := validateRange(params.StartTime, params.EndTime, video.Duration); err != nil {
		return nil, err
	}

	clip := &models.Clip{
		SourceVideoID: video.ID,
		UserID:        userID,
		Title:         params.Title,
		Description:   params.Description,
		StartTime:     params.StartTime,
		EndTime:       params.EndTime,
		Status:        models.ClipStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(clip).Error; err != nil {
		return nil, fmt.Errorf("failed to create clip record: %w", err)
	}

	log.Printf("[INFO] Created clip %s over video %s (%.1fs-%.1fs)",
		clip.UUID, video.UUID, clip.StartTime, clip.EndTime)
	return clip, nil
}

// GetClip retrieves a clip by UUID, scoped to the owner
func (s *ServiceImpl) GetClip(ctx context.Context, userID, uuid string) (*models.Clip, error) {
	var clip models.Clip
	err := s.db.WithContext(ctx).
		Where("uuid = ? AND user_id = ?", uuid, userID).
		First(&clip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClipNotFound
		}
		return nil, fmt.Errorf("failed to get clip: %w", err)
	}
	return &clip, nil
}

// ListClips lists the owner's clips with optional filters
func (s *ServiceImpl) ListClips(ctx context.Context, userID string, filters ListClipsFilters) ([]*models.Clip, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Clip{}).
		Where("clips.user_id = ?", userID)

	if filters.VideoUUID != "" {
		query = query.Joins("JOIN source_videos ON source_videos.id = clips.source_video_id").
			Where("source_videos.uuid = ?", filters.VideoUUID)
	}
	if filters.Status != "" {
		query = query.Where("clips.status = ?", filters.Status)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var clips []*models.Clip
	if err := query.Order("clips.created_at DESC").Find(&clips).Error; err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	return clips, nil
}

// UpdateClip changes a clip's metadata or time range. Edits are
// rejected while the clip is processing; editing the range of a
// completed clip resets it to pending since its file no longer matches.
func (s *ServiceImpl) UpdateClip(ctx context.Context, userID, uuid string, params UpdateClipParams) (*models.Clip, error) {
	clip, err := s.GetClip(ctx, userID, uuid)
	if err != nil {
		return nil, err
	}

	if clip.IsProcessing() {
		return nil, ErrClipProcessing
	}

	if params.Title != nil {
		if *params.Title == "" {
			return nil, fmt.Errorf("title cannot be empty")
		}
		clip.Title = *params.Title
	}
	if params.Description != nil {
		clip.Description = *params.Description
	}

	rangeChanged := false
	start, end := clip.StartTime, clip.EndTime
	if params.StartTime != nil {
		start = *params.StartTime
		rangeChanged = true
	}
	if params.EndTime != nil {
		end = *params.EndTime
		rangeChanged = true
	}

	if rangeChanged {
		var video models.SourceVideo
		if err := s.db.WithContext(ctx).First(&video, clip.SourceVideoID).Error; err != nil {
			return nil, fmt.Errorf("failed to get source video: %w", err)
		}
		if err := validateRange(start, end, video.Duration); err != nil {
			return nil, err
		}

		clip.StartTime = start
		clip.EndTime = end

		// The existing output no longer matches the definition
		if clip.IsCompleted() {
			if err := s.store.RemoveClipArtifacts(clip.UUID); err != nil {
				log.Printf("[WARN] Failed to remove stale files for clip %s: %v", clip.UUID, err)
			}
			clip.Status = models.ClipStatusPending
			clip.ErrorMessage = ""
		}
	}

	if err := s.db.WithContext(ctx).Save(clip).Error; err != nil {
		return nil, fmt.Errorf("failed to update clip: %w", err)
	}
	return clip, nil
}

// DeleteClip removes a clip and its files
func (s *ServiceImpl) DeleteClip(ctx context.Context, userID, uuid string) error {
	clip, err := s.GetClip(ctx, userID, uuid)
	if err != nil {
		return err
	}

	if clip.IsProcessing() {
		return ErrClipProcessing
	}

	if err := s.store.RemoveClipArtifacts(clip.UUID); err != nil {
		log.Printf("[WARN] Failed to remove files for clip %s: %v", clip.UUID, err)
	}

	if err := s.db.WithContext(ctx).Unscoped().Delete(clip).Error; err != nil {
		return fmt.Errorf("failed to delete clip record: %w", err)
	}

	log.Printf("[INFO] Deleted clip %s", clip.UUID)
	return nil
}

// StartProcessing queues a pending clip for background processing. The
// clip stays pending until a worker claims the job; only one active job
// per clip exists at a time.
func (s *ServiceImpl) StartProcessing(ctx context.Context, userID, uuid string) (*models.Clip, error) {
	clip, err := s.GetClip(ctx, userID, uuid)
	if err != nil {
		return nil, err
	}

	if clip.Status != models.ClipStatusPending {
		return nil, ErrClipNotPending
	}

	payload := models.JobPayload{"clip_uuid": clip.UUID}
	if _, err := s.jobService.EnqueueUniqueJob(ctx, models.JobTypeClipProcessing, payload, "clip_uuid"); err != nil {
		return nil, fmt.Errorf("failed to enqueue processing job: %w", err)
	}

	log.Printf("[INFO] Queued processing for clip %s", clip.UUID)
	return clip, nil
}

// ClipFile returns a completed clip and the path of its media file
func (s *ServiceImpl) ClipFile(ctx context.Context, userID, uuid string) (*models.Clip, string, error) {
	clip, err := s.GetClip(ctx, userID, uuid)
	if err != nil {
		return nil, "", err
	}

	if !clip.IsCompleted() {
		return nil, "", ErrClipNotCompleted
	}

	path := s.store.ClipPath(clip.UUID)
	if !s.store.Exists(path) {
		return nil, "", ErrClipFileMissing
	}

	return clip, path, nil
}

// validateRange checks a clip's time range against the video duration
func validateRange(start, end float64, videoDuration int) error {
	if start < 0 || end <= start {
		return fmt.Errorf("%w: start=%.2f end=%.2f", ErrInvalidTimeRange, start, end)
	}
	if videoDuration > 0 && end > float64(videoDuration) {
		return fmt.Errorf("%w: end %.2f exceeds video duration %ds", ErrInvalidTimeRange, end, videoDuration)
	}
	return nil
}
