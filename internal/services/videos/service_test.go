package videos

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/resolver"
	"github.com/killallgit/clipdeck-api/internal/services/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubResolver returns canned metadata without touching the network
type stubResolver struct {
	info *resolver.VideoInfo
	err  error
}

func (s *stubResolver) ResolveInfo(ctx context.Context, sourceURL string) (*resolver.VideoInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.info, nil
}

func (s *stubResolver) Download(ctx context.Context, sourceURL, destPath string) error {
	return s.err
}

func newTestService(t *testing.T) (Service, *gorm.DB, storage.MediaStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	store, err := storage.NewLocalMediaStore(t.TempDir())
	require.NoError(t, err)

	res := &stubResolver{info: &resolver.VideoInfo{
		VideoID:      "dQw4w9WgXcQ",
		Title:        "Test Video",
		Description:  "A test",
		Duration:     300,
		ThumbnailURL: "https://img.example/t.jpg",
	}}

	return NewService(db, res, store), db, store
}

func TestCreateVideo(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	video, err := service.CreateVideo(ctx, "user-1", "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.NotEmpty(t, video.UUID)
	assert.Equal(t, "user-1", video.UserID)
	assert.Equal(t, "Test Video", video.Title)
	assert.Equal(t, 300, video.Duration)
}

func TestCreateVideo_DuplicateURL(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.CreateVideo(ctx, "user-1", "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	_, err = service.CreateVideo(ctx, "user-1", "https://youtu.be/dQw4w9WgXcQ")
	assert.True(t, errors.Is(err, ErrDuplicateURL))
}

func TestCreateVideo_ResolutionFailure(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	store, err := storage.NewLocalMediaStore(t.TempDir())
	require.NoError(t, err)

	service := NewService(db, &stubResolver{err: resolver.ErrVideoUnavailable}, store)

	_, err = service.CreateVideo(context.Background(), "user-1", "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)

	// No record left behind for a failed resolution
	var count int64
	db.Model(&models.SourceVideo{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetVideo_OwnershipScoped(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	video, err := service.CreateVideo(ctx, "user-1", "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	_, err = service.GetVideo(ctx, "user-2", video.UUID)
	assert.True(t, errors.Is(err, ErrVideoNotFound))

	found, err := service.GetVideo(ctx, "user-1", video.UUID)
	require.NoError(t, err)
	assert.Equal(t, video.UUID, found.UUID)
}

func TestDeleteVideo_RemovesClipsAndFiles(t *testing.T) {
	service, db, store := newTestService(t)
	ctx := context.Background()

	video, err := service.CreateVideo(ctx, "user-1", "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	clip := &models.Clip{
		SourceVideoID: video.ID,
		UserID:        "user-1",
		Title:         "Intro",
		StartTime:     0,
		EndTime:       30,
		Status:        models.ClipStatusCompleted,
	}
	require.NoError(t, db.Create(clip).Error)

	// Files that should be swept with the video
	require.NoError(t, os.WriteFile(store.SourcePath(video.UUID), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(store.ClipPath(clip.UUID), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(store.ThumbnailPath(clip.UUID), []byte("x"), 0644))

	require.NoError(t, service.DeleteVideo(ctx, "user-1", video.UUID))

	var clipCount int64
	db.Model(&models.Clip{}).Where("source_video_id = ?", video.ID).Count(&clipCount)
	assert.Zero(t, clipCount, "clips must be removed with the video")

	assert.False(t, store.Exists(store.SourcePath(video.UUID)))
	assert.False(t, store.Exists(store.ClipPath(clip.UUID)))
	assert.False(t, store.Exists(store.ThumbnailPath(clip.UUID)))
}
