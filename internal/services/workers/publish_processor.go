package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/accounts"
	"github.com/killallgit/clipdeck-api/internal/services/automator"
	"github.com/killallgit/clipdeck-api/internal/services/jobs"
	"github.com/killallgit/clipdeck-api/internal/services/storage"
	"github.com/killallgit/clipdeck-api/pkg/ffmpeg"
	"gorm.io/gorm"
)

// PublishProcessor publishes a completed clip to a social platform. It
// re-encodes the clip to the platform's geometry, drives a browser
// session through the platform's upload flow, and records the outcome
// on the post.
type PublishProcessor struct {
	jobService     jobs.Service
	db             *gorm.DB
	store          storage.MediaStore
	transcoder     *ffmpeg.FFmpeg
	registry       *automator.Registry
	accountService accounts.Service
	sessionOptions automator.Options
	inflight       *inflightRegistry
	jobTimeout     time.Duration
}

// NewPublishProcessor creates a publish processor
func NewPublishProcessor(
	jobService jobs.Service,
	db *gorm.DB,
	store storage.MediaStore,
	transcoder *ffmpeg.FFmpeg,
	registry *automator.Registry,
	accountService accounts.Service,
	sessionOptions automator.Options,
	jobTimeout time.Duration,
) *PublishProcessor {
	if jobTimeout == 0 {
		jobTimeout = 30 * time.Minute
	}
	return &PublishProcessor{
		jobService:     jobService,
		db:             db,
		store:          store,
		transcoder:     transcoder,
		registry:       registry,
		accountService: accountService,
		sessionOptions: sessionOptions,
		inflight:       newInflightRegistry(),
		jobTimeout:     jobTimeout,
	}
}

func (p *PublishProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypePostPublishing
}

func (p *PublishProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	if !p.CanProcess(job.Type) {
		return fmt.Errorf("unsupported job type: %s", job.Type)
	}

	postUUID, err := payloadString(job.Payload, "post_uuid")
	if err != nil {
		return models.NewSystemError("invalid_payload", "Invalid job payload", err.Error(), err)
	}

	if !p.inflight.TryAcquire("post:" + postUUID) {
		log.Printf("[WARN] Post %s already in flight, skipping job %d", postUUID, job.ID)
		return nil
	}
	defer p.inflight.Release("post:" + postUUID)

	log.Printf("[DEBUG] Processing publish job %d for post %s", job.ID, postUUID)

	var post models.Post
	err = p.db.Preload("Clip").Preload("SocialAccount").
		Where("uuid = ?", postUUID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError(
				"post_not_found",
				fmt.Sprintf("Post %s not found", postUUID),
				"The post record was deleted before publishing started",
				err,
			)
		}
		return models.NewSystemError("database_error", "Failed to fetch post", err.Error(), err)
	}

	// The clip or account row can vanish between enqueue and claim
	if post.Clip == nil || post.SocialAccount == nil {
		p.markFailed(&post, "clip or account record no longer exists")
		return models.NewNotFoundError(
			"post_references_missing",
			fmt.Sprintf("Post %s references a deleted clip or account", postUUID),
			"The clip or account row was removed after the post was queued",
			gorm.ErrRecordNotFound,
		)
	}

	// Only a pending post moves to posting
	result := p.db.Model(&models.Post{}).
		Where("id = ? AND status = ?", post.ID, models.PostStatusPending).
		Update("status", models.PostStatusPosting)
	if result.Error != nil {
		return models.NewSystemError("database_error", "Failed to mark post posting", result.Error.Error(), result.Error)
	}
	if result.RowsAffected == 0 {
		log.Printf("[WARN] Post %s is %s, not pending; skipping job %d", postUUID, post.Status, job.ID)
		return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{"skipped": true, "reason": "post not pending"})
	}

	// Every attempt counts against the account from here on
	defer func() {
		if err := p.accountService.TouchLastUsed(context.Background(), post.SocialAccountID); err != nil {
			log.Printf("[WARN] Failed to record account usage for post %s: %v", postUUID, err)
		}
	}()

	publishCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	p.progress(ctx, job.ID, 10)

	uploadResult, err := p.publish(publishCtx, job, &post)
	if err != nil {
		p.markFailed(&post, err.Error())
		return p.classifyError(err, postUUID)
	}
	if !uploadResult.Success {
		p.markFailed(&post, uploadResult.ErrorMessage)
		return models.NewAutomationError(
			"publish_failed",
			fmt.Sprintf("Publishing post %s failed", postUUID),
			uploadResult.ErrorMessage,
			errors.New(uploadResult.ErrorMessage),
		)
	}

	now := time.Now()
	if err := p.db.Model(&post).Updates(map[string]interface{}{
		"status":        models.PostStatusPosted,
		"platform_url":  uploadResult.PlatformURL,
		"posted_at":     &now,
		"error_message": "",
	}).Error; err != nil {
		return models.NewSystemError("database_error", "Failed to mark post posted", err.Error(), err)
	}

	jobResult := models.JobResult{
		"post_uuid":    postUUID,
		"platform":     string(post.SocialAccount.Platform),
		"platform_url": uploadResult.PlatformURL,
	}
	if err := p.jobService.CompleteJob(ctx, job.ID, jobResult); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	log.Printf("[INFO] Post %s published to %s: %s",
		postUUID, post.SocialAccount.Platform, uploadResult.PlatformURL)
	return nil
}

// publish validates preconditions, optimizes the clip, and drives the
// browser session
func (p *PublishProcessor) publish(ctx context.Context, job *models.Job, post *models.Post) (*automator.UploadResult, error) {
	clip := post.Clip
	account := post.SocialAccount

	if !clip.IsCompleted() {
		return nil, fmt.Errorf("clip %s is not completed (status %s)", clip.UUID, clip.Status)
	}
	if !account.Connected {
		return nil, fmt.Errorf("account %s is disconnected", account.UUID)
	}

	// Verify the file before any browser work; a missing file must
	// fail fast, not after a login round trip
	clipPath := p.store.ClipPath(clip.UUID)
	if !p.store.Exists(clipPath) {
		return nil, fmt.Errorf("clip file missing for clip %s", clip.UUID)
	}

	spec, ok := models.SpecForPlatform(account.Platform)
	if !ok {
		return nil, fmt.Errorf("no encoding spec for platform %s", account.Platform)
	}

	optimizedPath := p.store.OptimizedPath(string(account.Platform), clip.UUID)
	// The optimized variant is transient; remove it whether the
	// publish succeeds or fails
	defer func() {
		if err := p.store.Remove(optimizedPath); err != nil {
			log.Printf("[WARN] Failed to remove optimized file %s: %v", optimizedPath, err)
		}
	}()

	log.Printf("[DEBUG] Optimizing clip %s for %s (%dx%d)",
		clip.UUID, account.Platform, spec.Width, spec.Height)
	if err := p.transcoder.Optimize(ctx, clipPath, spec.Width, spec.Height, spec.Aspect, optimizedPath); err != nil {
		return nil, err
	}

	p.progress(ctx, job.ID, 40)

	publisher, err := p.registry.Get(account.Platform)
	if err != nil {
		return nil, err
	}

	session := automator.NewSession(p.sessionOptions)
	if err := session.Open(ctx); err != nil {
		return nil, &automator.AutomatorError{Platform: account.Platform, Step: "session_open", Err: err}
	}
	defer session.Close()

	p.progress(ctx, job.ID, 50)

	req := &automator.UploadRequest{
		VideoPath:   optimizedPath,
		Title:       post.Title,
		Description: post.Description,
		Credentials: automator.Credentials{
			Username: account.Username,
			Password: account.Password,
		},
	}

	return publisher.Publish(ctx, session, req)
}

func (p *PublishProcessor) markFailed(post *models.Post, message string) {
	if err := p.db.Model(post).Updates(map[string]interface{}{
		"status":        models.PostStatusFailed,
		"error_message": message,
	}).Error; err != nil {
		log.Printf("[ERROR] Failed to mark post %s failed: %v", post.UUID, err)
	}
}

func (p *PublishProcessor) progress(ctx context.Context, jobID uint, progress int) {
	if err := p.jobService.UpdateProgress(ctx, jobID, progress); err != nil {
		log.Printf("[WARN] Failed to update job progress: %v", err)
	}
}

func (p *PublishProcessor) classifyError(err error, postUUID string) error {
	var procErr *ffmpeg.ProcessingError
	if errors.As(err, &procErr) {
		return models.NewProcessingError(
			"optimize_failed",
			fmt.Sprintf("Failed to optimize clip for post %s", postUUID),
			err.Error(),
			err,
		)
	}

	var autoErr *automator.AutomatorError
	if errors.As(err, &autoErr) {
		return models.NewAutomationError(
			"automation_failed",
			fmt.Sprintf("Browser automation failed for post %s", postUUID),
			err.Error(),
			err,
		)
	}

	return models.NewSystemError(
		"publish_failed",
		fmt.Sprintf("Publishing failed for post %s", postUUID),
		err.Error(),
		err,
	)
}
