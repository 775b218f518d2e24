// Package posts manages publish requests. A post ties a completed clip
// to a connected account; immediate posts queue a publish job right
// away, scheduled posts wait for the dispatcher to promote them.
package posts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/jobs"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrPostInFlight     = errors.New("post is currently publishing")
	ErrClipNotReady     = errors.New("clip is not completed")
	ErrAccountNotUsable = errors.New("account not found or disconnected")
	ErrScheduleInPast   = errors.New("scheduled time is in the past")
)

// Service defines the interface for post management
type Service interface {
	// CreatePost creates a publish request for a completed clip
	CreatePost(ctx context.Context, userID string, params CreatePostParams) (*models.Post, error)

	// GetPost retrieves a post by UUID, scoped to the owner
	GetPost(ctx context.Context, userID, uuid string) (*models.Post, error)

	// ListPosts lists the owner's posts with optional filters
	ListPosts(ctx context.Context, userID string, filters ListPostsFilters) ([]*models.Post, error)

	// DeletePost removes a post that is not mid-publish
	DeletePost(ctx context.Context, userID, uuid string) error

	// DispatchDue promotes due scheduled posts and queues their publish jobs
	DispatchDue(ctx context.Context, now time.Time) (int, error)
}

// CreatePostParams contains parameters for creating a post
type CreatePostParams struct {
	ClipUUID    string
	AccountUUID string
	Title       string
	Description string
	ScheduledAt *time.Time
}

// ListPostsFilters contains filters for listing posts
type ListPostsFilters struct {
	Status string
	Limit  int
	Offset int
}

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	db         *gorm.DB
	jobService jobs.Service
}

// NewService creates a new posts service
func NewService(db *gorm.DB, jobService jobs.Service) Service {
	return &ServiceImpl{
		db:         db,
		jobService: jobService,
	}
}

// CreatePost creates a publish request for a completed clip
func (s *ServiceImpl) CreatePost(ctx context.Context, userID string, params CreatePostParams) (*models.Post, error) {
	var clip models.Clip
	err := s.db.WithContext(ctx).
		Where("uuid = ? AND user_id = ?", params.ClipUUID, userID).
		First(&clip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("clip not found")
		}
		return nil, fmt.Errorf("failed to get clip: %w", err)
	}
	if !clip.IsCompleted() {
		return nil, ErrClipNotReady
	}

	var account models.SocialAccount
	err = s.db.WithContext(ctx).
		Where("uuid = ? AND user_id = ?", params.AccountUUID, userID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotUsable
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if !account.Connected {
		return nil, ErrAccountNotUsable
	}

	title := params.Title
	if title == "" {
		title = clip.Title
	}

	post := &models.Post{
		UserID:          userID,
		ClipID:          clip.ID,
		SocialAccountID: account.ID,
		Title:           title,
		Description:     params.Description,
		Status:          models.PostStatusPending,
	}

	if params.ScheduledAt != nil {
		if params.ScheduledAt.Before(time.Now()) {
			return nil, ErrScheduleInPast
		}
		post.Status = models.PostStatusScheduled
		post.ScheduledAt = params.ScheduledAt
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post record: %w", err)
	}

	// Immediate posts go straight onto the queue
	if post.Status == models.PostStatusPending {
		if err := s.enqueuePublish(ctx, post.UUID); err != nil {
			s.db.WithContext(ctx).Model(post).Updates(map[string]interface{}{
				"status":        models.PostStatusFailed,
				"error_message": fmt.Sprintf("failed to enqueue publish job: %v", err),
			})
			return nil, fmt.Errorf("failed to enqueue publish job: %w", err)
		}
	}

	log.Printf("[INFO] Created %s post %s for clip %s on %s",
		post.Status, post.UUID, clip.UUID, account.Platform)
	return post, nil
}

// GetPost retrieves a post by UUID, scoped to the owner
func (s *ServiceImpl) GetPost(ctx context.Context, userID, uuid string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Clip").
		Preload("SocialAccount").
		Where("uuid = ? AND user_id = ?", uuid, userID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// ListPosts lists the owner's posts with optional filters
func (s *ServiceImpl) ListPosts(ctx context.Context, userID string, filters ListPostsFilters) ([]*models.Post, error) {
	query := s.db.WithContext(ctx).
		Preload("Clip").
		Preload("SocialAccount").
		Where("user_id = ?", userID)

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var posts []*models.Post
	if err := query.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// DeletePost removes a post that is not mid-publish
func (s *ServiceImpl) DeletePost(ctx context.Context, userID, uuid string) error {
	post, err := s.GetPost(ctx, userID, uuid)
	if err != nil {
		return err
	}

	if post.Status == models.PostStatusPosting {
		return ErrPostInFlight
	}

	if err := s.db.WithContext(ctx).Unscoped().Delete(post).Error; err != nil {
		return fmt.Errorf("failed to delete post record: %w", err)
	}

	log.Printf("[INFO] Deleted post %s", post.UUID)
	return nil
}

// DispatchDue promotes due scheduled posts and queues their publish
// jobs. Called by the scheduler on each tick.
func (s *ServiceImpl) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	var due []*models.Post
	err := s.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", models.PostStatusScheduled, now).
		Order("scheduled_at ASC").
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find due posts: %w", err)
	}

	dispatched := 0
	for _, post := range due {
		// Promote before enqueue so a second tick never double-queues
		result := s.db.WithContext(ctx).
			Model(&models.Post{}).
			Where("id = ? AND status = ?", post.ID, models.PostStatusScheduled).
			Update("status", models.PostStatusPending)
		if result.Error != nil {
			log.Printf("[ERROR] Failed to promote scheduled post %s: %v", post.UUID, result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			continue
		}

		if err := s.enqueuePublish(ctx, post.UUID); err != nil {
			log.Printf("[ERROR] Failed to enqueue publish for post %s: %v", post.UUID, err)
			s.db.WithContext(ctx).Model(post).Updates(map[string]interface{}{
				"status":        models.PostStatusFailed,
				"error_message": fmt.Sprintf("failed to enqueue publish job: %v", err),
			})
			continue
		}
		dispatched++
	}

	if dispatched > 0 {
		log.Printf("[INFO] Dispatched %d scheduled posts", dispatched)
	}
	return dispatched, nil
}

func (s *ServiceImpl) enqueuePublish(ctx context.Context, postUUID string) error {
	payload := models.JobPayload{"post_uuid": postUUID}
	_, err := s.jobService.EnqueueUniqueJob(ctx, models.JobTypePostPublishing, payload, "post_uuid")
	return err
}
