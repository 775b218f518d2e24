// Package videos manages source video records. Registration resolves
// metadata up front; the actual media download is deferred until the
// first clip that needs it is processed.
package videos

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/resolver"
	"github.com/killallgit/clipdeck-api/internal/services/storage"
	"gorm.io/gorm"
)

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrDuplicateURL  = errors.New("video URL already registered")
)

// Service defines the interface for source video management
type Service interface {
	// CreateVideo resolves metadata for the URL and registers it
	CreateVideo(ctx context.Context, userID, sourceURL string) (*models.SourceVideo, error)

	// GetVideo retrieves a video by UUID, scoped to the owner
	GetVideo(ctx context.Context, userID, uuid string) (*models.SourceVideo, error)

	// ListVideos lists the owner's videos, newest first
	ListVideos(ctx context.Context, userID string, limit, offset int) ([]*models.SourceVideo, error)

	// DeleteVideo removes a video, its clips, and all files on disk
	DeleteVideo(ctx context.Context, userID, uuid string) error
}

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	db       *gorm.DB
	resolver resolver.Resolver
	store    storage.MediaStore
}

// NewService creates a new videos service
func NewService(db *gorm.DB, res resolver.Resolver, store storage.MediaStore) Service {
	return &ServiceImpl{
		db:       db,
		resolver: res,
		store:    store,
	}
}

// CreateVideo resolves metadata for the URL and registers it
func (s *ServiceImpl) CreateVideo(ctx context.Context, userID, sourceURL string) (*models.SourceVideo, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("url is required")
	}

	// Duplicate check before the network round trip
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SourceVideo{}).
		Where("url = ?", sourceURL).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check for existing video: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateURL
	}

	info, err := s.resolver.ResolveInfo(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	video := &models.SourceVideo{
		UserID:       userID,
		URL:          sourceURL,
		Title:        info.Title,
		Description:  info.Description,
		Duration:     info.Duration,
		ThumbnailURL: info.ThumbnailURL,
	}

	if err := s.db.WithContext(ctx).Create(video).Error; err != nil {
		return nil, fmt.Errorf("failed to create video record: %w", err)
	}

	log.Printf("[INFO] Registered video %s: %q (%ds)", video.UUID, video.Title, video.Duration)
	return video, nil
}

// GetVideo retrieves a video by UUID, scoped to the owner
func (s *ServiceImpl) GetVideo(ctx context.Context, userID, uuid string) (*models.SourceVideo, error) {
	var video models.SourceVideo
	err := s.db.WithContext(ctx).
		Where("uuid = ? AND user_id = ?", uuid, userID).
		First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

// ListVideos lists the owner's videos, newest first
func (s *ServiceImpl) ListVideos(ctx context.Context, userID string, limit, offset int) ([]*models.SourceVideo, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var videos []*models.SourceVideo
	if err := query.Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, nil
}

// DeleteVideo removes a video, its clips, and all files on disk
func (s *ServiceImpl) DeleteVideo(ctx context.Context, userID, uuid string) error {
	video, err := s.GetVideo(ctx, userID, uuid)
	if err != nil {
		return err
	}

	var clips []*models.Clip
	if err := s.db.WithContext(ctx).
		Where("source_video_id = ?", video.ID).
		Find(&clips).Error; err != nil {
		return fmt.Errorf("failed to list clips for deletion: %w", err)
	}

	// Files first; a failed removal is logged, not fatal, since the
	// cleanup sweep catches stragglers
	for _, clip := range clips {
		if err := s.store.RemoveClipArtifacts(clip.UUID); err != nil {
			log.Printf("[WARN] Failed to remove files for clip %s: %v", clip.UUID, err)
		}
	}
	if err := s.store.Remove(s.store.SourcePath(video.UUID)); err != nil {
		log.Printf("[WARN] Failed to remove source file for video %s: %v", video.UUID, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("source_video_id = ?", video.ID).
			Delete(&models.Clip{}).Error; err != nil {
			return fmt.Errorf("failed to delete clip records: %w", err)
		}
		if err := tx.Unscoped().Delete(video).Error; err != nil {
			return fmt.Errorf("failed to delete video record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[INFO] Deleted video %s with %d clips", video.UUID, len(clips))
	return nil
}
