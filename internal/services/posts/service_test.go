package posts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	service Service
	jobs    jobs.Service
	db      *gorm.DB
	clip    *models.Clip
	account *models.SocialAccount
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	video := &models.SourceVideo{UserID: "user-1", URL: "https://youtu.be/dQw4w9WgXcQ", Title: "V", Duration: 300}
	require.NoError(t, db.Create(video).Error)

	clip := &models.Clip{
		SourceVideoID: video.ID,
		UserID:        "user-1",
		Title:         "Intro",
		StartTime:     0,
		EndTime:       30,
		Status:        models.ClipStatusCompleted,
	}
	require.NoError(t, db.Create(clip).Error)

	account := &models.SocialAccount{
		UserID:    "user-1",
		Platform:  models.PlatformTikTok,
		Username:  "creator",
		Password:  "secret",
		Connected: true,
	}
	require.NoError(t, db.Create(account).Error)

	jobService := jobs.NewService(jobs.NewRepository(db))

	return &testEnv{
		service: NewService(db, jobService),
		jobs:    jobService,
		db:      db,
		clip:    clip,
		account: account,
	}
}

func TestCreatePost_ImmediateEnqueues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post, err := env.service.CreatePost(ctx, "user-1", CreatePostParams{
		ClipUUID:    env.clip.UUID,
		AccountUUID: env.account.UUID,
		Description: "check this out",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPending, post.Status)
	assert.Equal(t, "Intro", post.Title, "title defaults to the clip title")

	job, err := env.jobs.GetJobForPost(ctx, post.UUID)
	require.NoError(t, err)
	assert.Equal(t, models.JobTypePostPublishing, job.Type)
}

func TestCreatePost_ScheduledWaits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	future := time.Now().Add(2 * time.Hour)
	post, err := env.service.CreatePost(ctx, "user-1", CreatePostParams{
		ClipUUID:    env.clip.UUID,
		AccountUUID: env.account.UUID,
		Title:       "Later",
		ScheduledAt: &future,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusScheduled, post.Status)
	require.NotNil(t, post.ScheduledAt)

	// No job until the dispatcher promotes it
	_, err = env.jobs.GetJobForPost(ctx, post.UUID)
	assert.True(t, errors.Is(err, jobs.ErrJobNotFound))
}

func TestCreatePost_ScheduleInPast(t *testing.T) {
	env := newTestEnv(t)

	past := time.Now().Add(-time.Minute)
	_, err := env.service.CreatePost(context.Background(), "user-1", CreatePostParams{
		ClipUUID:    env.clip.UUID,
		AccountUUID: env.account.UUID,
		ScheduledAt: &past,
	})
	assert.True(t, errors.Is(err, ErrScheduleInPast))
}

func TestCreatePost_ClipNotReady(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.db.Model(env.clip).Update("status", models.ClipStatusPending).Error)

	_, err := env.service.CreatePost(context.Background(), "user-1", CreatePostParams{
		ClipUUID:    env.clip.UUID,
		AccountUUID: env.account.UUID,
	})
	assert.True(t, errors.Is(err, ErrClipNotReady))
}

func TestCreatePost_DisconnectedAccount(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.db.Model(env.account).Update("connected", false).Error)

	_, err := env.service.CreatePost(context.Background(), "user-1", CreatePostParams{
		ClipUUID:    env.clip.UUID,
		AccountUUID: env.account.UUID,
	})
	assert.True(t, errors.Is(err, ErrAccountNotUsable))
}

func TestDispatchDue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	due := time.Now().Add(time.Minute)
	post, err := env.service.CreatePost(ctx, "user-1", CreatePostParams{
		ClipUUID:    env.clip.UUID,
		AccountUUID: env.account.UUID,
		ScheduledAt: &due,
	})
	require.NoError(t, err)

	// Before the scheduled time nothing moves
	count, err := env.service.DispatchDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, count)

	// At the scheduled time the post is promoted and queued
	count, err = env.service.DispatchDue(ctx, due.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var promoted models.Post
	require.NoError(t, env.db.First(&promoted, post.ID).Error)
	assert.Equal(t, models.PostStatusPending, promoted.Status)

	_, err = env.jobs.GetJobForPost(ctx, post.UUID)
	require.NoError(t, err)

	// A second tick does not dispatch it again
	count, err = env.service.DispatchDue(ctx, due.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeletePost_RejectedWhilePosting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post, err := env.service.CreatePost(ctx, "user-1", CreatePostParams{
		ClipUUID:    env.clip.UUID,
		AccountUUID: env.account.UUID,
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(post).Update("status", models.PostStatusPosting).Error)

	err = env.service.DeletePost(ctx, "user-1", post.UUID)
	assert.True(t, errors.Is(err, ErrPostInFlight))
}
