package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/jobs"
	"github.com/killallgit/clipdeck-api/internal/services/resolver"
	"github.com/killallgit/clipdeck-api/internal/services/storage"
	"github.com/killallgit/clipdeck-api/pkg/ffmpeg"
	"gorm.io/gorm"
)

// ClipProcessor turns a pending clip definition into a trimmed file
// plus thumbnail. The source video is downloaded for the run and
// removed when the run ends, success or failure.
type ClipProcessor struct {
	jobService jobs.Service
	db         *gorm.DB
	resolver   resolver.Resolver
	store      storage.MediaStore
	transcoder *ffmpeg.FFmpeg
	inflight   *inflightRegistry
	jobTimeout time.Duration
}

// NewClipProcessor creates a clip processor
func NewClipProcessor(
	jobService jobs.Service,
	db *gorm.DB,
	res resolver.Resolver,
	store storage.MediaStore,
	transcoder *ffmpeg.FFmpeg,
	jobTimeout time.Duration,
) *ClipProcessor {
	if jobTimeout == 0 {
		jobTimeout = 30 * time.Minute
	}
	return &ClipProcessor{
		jobService: jobService,
		db:         db,
		resolver:   res,
		store:      store,
		transcoder: transcoder,
		inflight:   newInflightRegistry(),
		jobTimeout: jobTimeout,
	}
}

func (p *ClipProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeClipProcessing
}

func (p *ClipProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	if !p.CanProcess(job.Type) {
		return fmt.Errorf("unsupported job type: %s", job.Type)
	}

	clipUUID, err := payloadString(job.Payload, "clip_uuid")
	if err != nil {
		return models.NewSystemError(
			"invalid_payload",
			"Invalid job payload",
			err.Error(),
			err,
		)
	}

	if !p.inflight.TryAcquire("clip:" + clipUUID) {
		log.Printf("[WARN] Clip %s already in flight, skipping job %d", clipUUID, job.ID)
		return nil
	}
	defer p.inflight.Release("clip:" + clipUUID)

	log.Printf("[DEBUG] Processing clip job %d for clip %s", job.ID, clipUUID)

	var clip models.Clip
	if err := p.db.Where("uuid = ?", clipUUID).First(&clip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError(
				"clip_not_found",
				fmt.Sprintf("Clip %s not found", clipUUID),
				"The clip record was deleted before processing started",
				err,
			)
		}
		return models.NewSystemError("database_error", "Failed to fetch clip", err.Error(), err)
	}

	// Only a pending clip moves to processing; anything else means a
	// stale or duplicate job
	result := p.db.Model(&models.Clip{}).
		Where("id = ? AND status = ?", clip.ID, models.ClipStatusPending).
		Update("status", models.ClipStatusProcessing)
	if result.Error != nil {
		return models.NewSystemError("database_error", "Failed to mark clip processing", result.Error.Error(), result.Error)
	}
	if result.RowsAffected == 0 {
		log.Printf("[WARN] Clip %s is %s, not pending; skipping job %d", clipUUID, clip.Status, job.ID)
		return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{"skipped": true, "reason": "clip not pending"})
	}

	processCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	if err := p.process(processCtx, job, &clip); err != nil {
		p.markFailed(&clip, err)
		return p.classifyError(err, clipUUID)
	}

	if err := p.db.Model(&clip).Updates(map[string]interface{}{
		"status":        models.ClipStatusCompleted,
		"error_message": "",
	}).Error; err != nil {
		return models.NewSystemError("database_error", "Failed to mark clip completed", err.Error(), err)
	}

	jobResult := models.JobResult{
		"clip_uuid": clipUUID,
		"clip_path": p.store.ClipPath(clipUUID),
		"duration":  clip.EndTime - clip.StartTime,
	}
	if err := p.jobService.CompleteJob(ctx, job.ID, jobResult); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	log.Printf("[INFO] Clip %s processed (%.2fs-%.2fs)", clipUUID, clip.StartTime, clip.EndTime)
	return nil
}

// process runs the download, trim, and thumbnail steps
func (p *ClipProcessor) process(ctx context.Context, job *models.Job, clip *models.Clip) error {
	var video models.SourceVideo
	if err := p.db.First(&video, clip.SourceVideoID).Error; err != nil {
		return fmt.Errorf("failed to fetch source video: %w", err)
	}

	p.progress(ctx, job.ID, 10)

	sourcePath := p.store.SourcePath(video.UUID)
	if !p.store.Exists(sourcePath) {
		log.Printf("[DEBUG] Downloading source video %s", video.UUID)
		if err := p.resolver.Download(ctx, video.URL, sourcePath); err != nil {
			return err
		}
	}
	// The downloaded source does not outlive the run
	defer func() {
		if err := p.store.Remove(sourcePath); err != nil {
			log.Printf("[WARN] Failed to remove source file %s: %v", sourcePath, err)
		}
	}()

	p.progress(ctx, job.ID, 50)

	// Trim into a work file so a crashed run never leaves a partial
	// file at the clip's final path
	workPath := p.store.WorkPath(fmt.Sprintf("trim_%s.mp4", clip.UUID))
	defer func() {
		if err := p.store.Remove(workPath); err != nil {
			log.Printf("[WARN] Failed to remove work file %s: %v", workPath, err)
		}
	}()

	if err := p.transcoder.Trim(ctx, sourcePath, clip.StartTime, clip.EndTime, workPath); err != nil {
		return err
	}
	if err := p.store.Promote(workPath, p.store.ClipPath(clip.UUID)); err != nil {
		return err
	}

	p.progress(ctx, job.ID, 85)

	clipDuration := clip.EndTime - clip.StartTime
	if err := p.transcoder.Thumbnail(ctx, p.store.ClipPath(clip.UUID), clipDuration, p.store.ThumbnailPath(clip.UUID)); err != nil {
		// The clip itself is fine; failing on the whole run would
		// discard a good encode over a missing preview image
		log.Printf("[WARN] Thumbnail generation failed for clip %s: %v", clip.UUID, err)
	}

	p.progress(ctx, job.ID, 100)
	return nil
}

func (p *ClipProcessor) markFailed(clip *models.Clip, cause error) {
	if err := p.db.Model(clip).Updates(map[string]interface{}{
		"status":        models.ClipStatusFailed,
		"error_message": cause.Error(),
	}).Error; err != nil {
		log.Printf("[ERROR] Failed to mark clip %s failed: %v", clip.UUID, err)
	}
}

func (p *ClipProcessor) progress(ctx context.Context, jobID uint, progress int) {
	if err := p.jobService.UpdateProgress(ctx, jobID, progress); err != nil {
		log.Printf("[WARN] Failed to update job progress: %v", err)
	}
}

func (p *ClipProcessor) classifyError(err error, clipUUID string) error {
	var dlErr *resolver.DownloadError
	var resErr *resolver.ResolutionError
	if errors.As(err, &dlErr) || errors.As(err, &resErr) {
		return models.NewDownloadError(
			"download_failed",
			fmt.Sprintf("Failed to download source for clip %s", clipUUID),
			err.Error(),
			err,
		)
	}

	var procErr *ffmpeg.ProcessingError
	if errors.As(err, &procErr) {
		return models.NewProcessingError(
			"transcode_failed",
			fmt.Sprintf("Failed to transcode clip %s", clipUUID),
			err.Error(),
			err,
		)
	}

	return models.NewSystemError(
		"clip_processing_failed",
		fmt.Sprintf("Clip processing failed for %s", clipUUID),
		err.Error(),
		err,
	)
}

// payloadString pulls a required string field out of a job payload
func payloadString(payload models.JobPayload, key string) (string, error) {
	value, exists := payload[key]
	if !exists {
		return "", fmt.Errorf("%s not found in payload", key)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s is not a string: %T", key, value)
	}
	if strings.TrimSpace(str) == "" {
		return "", fmt.Errorf("%s is empty", key)
	}
	return str, nil
}
