package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Job{}))
	return NewService(NewRepository(db))
}

func TestEnqueueJob_Defaults(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	job, err := service.EnqueueJob(ctx, models.JobTypeClipProcessing,
		models.JobPayload{"clip_uuid": "c1"})
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, 1, job.MaxRetries)
	assert.Equal(t, 0, job.RetryCount)
}

func TestEnqueueUniqueJob_Deduplicates(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	first, err := service.EnqueueUniqueJob(ctx, models.JobTypeClipProcessing,
		models.JobPayload{"clip_uuid": "c1"}, "clip_uuid")
	require.NoError(t, err)

	second, err := service.EnqueueUniqueJob(ctx, models.JobTypeClipProcessing,
		models.JobPayload{"clip_uuid": "c1"}, "clip_uuid")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "active job must be reused, not duplicated")

	// A different clip gets its own job
	other, err := service.EnqueueUniqueJob(ctx, models.JobTypeClipProcessing,
		models.JobPayload{"clip_uuid": "c2"}, "clip_uuid")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestEnqueueUniqueJob_TerminalJobAllowsReEnqueue(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	first, err := service.EnqueueUniqueJob(ctx, models.JobTypeClipProcessing,
		models.JobPayload{"clip_uuid": "c1"}, "clip_uuid")
	require.NoError(t, err)

	claimed, err := service.ClaimNextJob(ctx, "w1", []models.JobType{models.JobTypeClipProcessing})
	require.NoError(t, err)
	require.NoError(t, service.CompleteJob(ctx, claimed.ID, models.JobResult{"status": "done"}))

	second, err := service.EnqueueUniqueJob(ctx, models.JobTypeClipProcessing,
		models.JobPayload{"clip_uuid": "c1"}, "clip_uuid")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "completed job must not block a new run")
}

func TestClaimNextJob_Ordering(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.EnqueueJob(ctx, models.JobTypeClipProcessing,
		models.JobPayload{"clip_uuid": "low"})
	require.NoError(t, err)

	high, err := service.EnqueueJob(ctx, models.JobTypeClipProcessing,
		models.JobPayload{"clip_uuid": "high"}, WithPriority(10))
	require.NoError(t, err)

	claimed, err := service.ClaimNextJob(ctx, "w1", []models.JobType{models.JobTypeClipProcessing})
	require.NoError(t, err)

	assert.Equal(t, high.ID, claimed.ID)
	assert.Equal(t, models.JobStatusProcessing, claimed.Status)
	assert.Equal(t, "w1", claimed.WorkerID)
	require.NotNil(t, claimed.StartedAt)
}

func TestClaimNextJob_TypeFilter(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.EnqueueJob(ctx, models.JobTypePostPublishing,
		models.JobPayload{"post_uuid": "p1"})
	require.NoError(t, err)

	_, err = service.ClaimNextJob(ctx, "w1", []models.JobType{models.JobTypeClipProcessing})
	assert.True(t, errors.Is(err, ErrNoJobsAvailable))
}

func TestFailJob_SingleAttemptIsPermanent(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	job, err := service.EnqueueJob(ctx, models.JobTypeClipProcessing,
		models.JobPayload{"clip_uuid": "c1"})
	require.NoError(t, err)

	claimed, err := service.ClaimNextJob(ctx, "w1", []models.JobType{models.JobTypeClipProcessing})
	require.NoError(t, err)
	require.Equal(t, job.ID, claimed.ID)

	require.NoError(t, service.FailJob(ctx, job.ID, fmt.Errorf("encode failed")))

	failed, err := service.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPermanentlyFailed, failed.Status)
	assert.Equal(t, "encode failed", failed.Error)

	// Not claimable again
	_, err = service.ClaimNextJob(ctx, "w2", []models.JobType{models.JobTypeClipProcessing})
	assert.True(t, errors.Is(err, ErrNoJobsAvailable))
}

func TestGetJobForClip(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	created, err := service.EnqueueJob(ctx, models.JobTypeClipProcessing,
		models.JobPayload{"clip_uuid": "c1"})
	require.NoError(t, err)

	found, err := service.GetJobForClip(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = service.GetJobForClip(ctx, "nope")
	assert.True(t, errors.Is(err, ErrJobNotFound))
}
