package clips

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/jobs"
	"github.com/killallgit/clipdeck-api/internal/services/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	service Service
	jobs    jobs.Service
	store   storage.MediaStore
	db      *gorm.DB
	video   *models.SourceVideo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	store, err := storage.NewLocalMediaStore(t.TempDir())
	require.NoError(t, err)

	jobService := jobs.NewService(jobs.NewRepository(db))

	video := &models.SourceVideo{
		UserID:   "user-1",
		URL:      "https://youtu.be/dQw4w9WgXcQ",
		Title:    "Test Video",
		Duration: 300,
	}
	require.NoError(t, db.Create(video).Error)

	return &testEnv{
		service: NewService(db, store, jobService),
		jobs:    jobService,
		store:   store,
		db:      db,
		video:   video,
	}
}

func (e *testEnv) createClip(t *testing.T) *models.Clip {
	t.Helper()
	clip, err := e.service.CreateClip(context.Background(), "user-1", CreateClipParams{
		VideoUUID: e.video.UUID,
		Title:     "Intro",
		StartTime: 10,
		EndTime:   40,
	})
	require.NoError(t, err)
	return clip
}

func TestCreateClip(t *testing.T) {
	env := newTestEnv(t)
	clip := env.createClip(t)

	assert.NotEmpty(t, clip.UUID)
	assert.Equal(t, models.ClipStatusPending, clip.Status)
	assert.Equal(t, 30.0, clip.Duration)
}

func TestCreateClip_RangeValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		start float64
		end   float64
	}{
		{"end before start", 40, 10},
		{"zero length", 10, 10},
		{"negative start", -1, 10},
		{"past video end", 10, 301},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.CreateClip(ctx, "user-1", CreateClipParams{
				VideoUUID: env.video.UUID,
				Title:     "Bad",
				StartTime: tt.start,
				EndTime:   tt.end,
			})
			assert.True(t, errors.Is(err, ErrInvalidTimeRange), "got: %v", err)
		})
	}
}

func TestUpdateClip_RejectedWhileProcessing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clip := env.createClip(t)

	require.NoError(t, env.db.Model(clip).Update("status", models.ClipStatusProcessing).Error)

	title := "New Title"
	_, err := env.service.UpdateClip(ctx, "user-1", clip.UUID, UpdateClipParams{Title: &title})
	assert.True(t, errors.Is(err, ErrClipProcessing))
}

func TestUpdateClip_RangeEditResetsCompleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clip := env.createClip(t)

	require.NoError(t, env.db.Model(clip).Update("status", models.ClipStatusCompleted).Error)
	require.NoError(t, os.WriteFile(env.store.ClipPath(clip.UUID), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(env.store.ThumbnailPath(clip.UUID), []byte("x"), 0644))

	newEnd := 60.0
	updated, err := env.service.UpdateClip(ctx, "user-1", clip.UUID, UpdateClipParams{EndTime: &newEnd})
	require.NoError(t, err)

	assert.Equal(t, models.ClipStatusPending, updated.Status)
	assert.Equal(t, 50.0, updated.Duration, "duration recomputed from the new range")
	assert.False(t, env.store.Exists(env.store.ClipPath(clip.UUID)), "stale output removed")
	assert.False(t, env.store.Exists(env.store.ThumbnailPath(clip.UUID)))
}

func TestUpdateClip_TitleOnlyKeepsStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clip := env.createClip(t)

	require.NoError(t, env.db.Model(clip).Update("status", models.ClipStatusCompleted).Error)

	title := "Renamed"
	updated, err := env.service.UpdateClip(ctx, "user-1", clip.UUID, UpdateClipParams{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, models.ClipStatusCompleted, updated.Status)
}

func TestStartProcessing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clip := env.createClip(t)

	returned, err := env.service.StartProcessing(ctx, "user-1", clip.UUID)
	require.NoError(t, err)

	// Status stays pending until a worker claims the job
	assert.Equal(t, models.ClipStatusPending, returned.Status)

	job, err := env.jobs.GetJobForClip(ctx, clip.UUID)
	require.NoError(t, err)
	assert.Equal(t, models.JobTypeClipProcessing, job.Type)

	// Triggering again reuses the active job instead of stacking a second
	_, err = env.service.StartProcessing(ctx, "user-1", clip.UUID)
	require.NoError(t, err)

	var jobCount int64
	env.db.Model(&models.Job{}).Count(&jobCount)
	assert.Equal(t, int64(1), jobCount)
}

func TestStartProcessing_NotPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clip := env.createClip(t)

	for _, status := range []models.ClipStatus{
		models.ClipStatusProcessing,
		models.ClipStatusCompleted,
		models.ClipStatusFailed,
	} {
		require.NoError(t, env.db.Model(&models.Clip{}).
			Where("id = ?", clip.ID).Update("status", status).Error)

		_, err := env.service.StartProcessing(ctx, "user-1", clip.UUID)
		assert.True(t, errors.Is(err, ErrClipNotPending), "status %s must reject trigger", status)
	}
}

func TestClipFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clip := env.createClip(t)

	// Not completed yet
	_, _, err := env.service.ClipFile(ctx, "user-1", clip.UUID)
	assert.True(t, errors.Is(err, ErrClipNotCompleted))

	require.NoError(t, env.db.Model(clip).Update("status", models.ClipStatusCompleted).Error)

	// Completed but file missing on disk
	_, _, err = env.service.ClipFile(ctx, "user-1", clip.UUID)
	assert.True(t, errors.Is(err, ErrClipFileMissing))

	require.NoError(t, os.WriteFile(env.store.ClipPath(clip.UUID), []byte("mp4"), 0644))

	got, path, err := env.service.ClipFile(ctx, "user-1", clip.UUID)
	require.NoError(t, err)
	assert.Equal(t, clip.UUID, got.UUID)
	assert.Equal(t, env.store.ClipPath(clip.UUID), path)
}

func TestDeleteClip_RemovesFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clip := env.createClip(t)

	require.NoError(t, os.WriteFile(env.store.ClipPath(clip.UUID), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(env.store.OptimizedPath("tiktok", clip.UUID), []byte("x"), 0644))

	require.NoError(t, env.service.DeleteClip(ctx, "user-1", clip.UUID))

	_, err := env.service.GetClip(ctx, "user-1", clip.UUID)
	assert.True(t, errors.Is(err, ErrClipNotFound))
	assert.False(t, env.store.Exists(env.store.ClipPath(clip.UUID)))
	assert.False(t, env.store.Exists(env.store.OptimizedPath("tiktok", clip.UUID)))
}

func TestListClips_VideoFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createClip(t)

	other := &models.SourceVideo{UserID: "user-1", URL: "https://youtu.be/abcdefghijk", Title: "Other", Duration: 100}
	require.NoError(t, env.db.Create(other).Error)
	_, err := env.service.CreateClip(ctx, "user-1", CreateClipParams{
		VideoUUID: other.UUID,
		Title:     "Other clip",
		StartTime: 0,
		EndTime:   10,
	})
	require.NoError(t, err)

	all, err := env.service.ListClips(ctx, "user-1", ListClipsFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := env.service.ListClips(ctx, "user-1", ListClipsFilters{VideoUUID: env.video.UUID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Intro", filtered[0].Title)
}
