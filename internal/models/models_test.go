package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(AllModels()...))
	return db
}

func TestPlatform_IsValid(t *testing.T) {
	tests := []struct {
		platform Platform
		want     bool
	}{
		{PlatformTikTok, true},
		{PlatformInstagram, true},
		{PlatformYouTubeShorts, true},
		{Platform("twitter"), false},
		{Platform(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.platform.IsValid())
		})
	}
}

func TestSpecForPlatform(t *testing.T) {
	tests := []struct {
		platform Platform
		width    int
		height   int
		aspect   string
	}{
		{PlatformTikTok, 1080, 1920, "9:16"},
		{PlatformInstagram, 1080, 1080, "1:1"},
		{PlatformYouTubeShorts, 1080, 1920, "9:16"},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			spec, ok := SpecForPlatform(tt.platform)
			require.True(t, ok)
			assert.Equal(t, tt.width, spec.Width)
			assert.Equal(t, tt.height, spec.Height)
			assert.Equal(t, tt.aspect, spec.Aspect)
		})
	}

	_, ok := SpecForPlatform(Platform("myspace"))
	assert.False(t, ok)
}

func TestSocialAccount_UserPlatformUniqueness(t *testing.T) {
	db := newTestDB(t)

	first := SocialAccount{
		UserID:   "user-1",
		Platform: PlatformTikTok,
		Username: "creator",
		Password: "secret",
	}
	require.NoError(t, db.Create(&first).Error)
	assert.NotEmpty(t, first.UUID)

	// Same user, same platform: rejected by the composite unique index
	dup := SocialAccount{
		UserID:   "user-1",
		Platform: PlatformTikTok,
		Username: "creator2",
		Password: "secret",
	}
	assert.Error(t, db.Create(&dup).Error)

	var count int64
	db.Model(&SocialAccount{}).Where("user_id = ?", "user-1").Count(&count)
	assert.Equal(t, int64(1), count)

	// Same platform under a different user is fine
	other := SocialAccount{
		UserID:   "user-2",
		Platform: PlatformTikTok,
		Username: "creator",
		Password: "secret",
	}
	assert.NoError(t, db.Create(&other).Error)
}

func TestSourceVideo_URLUniqueness(t *testing.T) {
	db := newTestDB(t)

	url := "https://youtube.com/watch?v=dQw4w9WgXcQ"
	require.NoError(t, db.Create(&SourceVideo{UserID: "u", URL: url, Title: "a"}).Error)
	assert.Error(t, db.Create(&SourceVideo{UserID: "u", URL: url, Title: "b"}).Error)
}

func TestPost_Defaults(t *testing.T) {
	db := newTestDB(t)

	post := Post{
		UserID:          "user-1",
		ClipID:          1,
		SocialAccountID: 1,
		Title:           "hello",
	}
	require.NoError(t, db.Create(&post).Error)
	assert.NotEmpty(t, post.UUID)
	assert.Equal(t, PostStatusPending, post.Status)
}

func TestPost_IsDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		post Post
		want bool
	}{
		{"scheduled and due", Post{Status: PostStatusScheduled, ScheduledAt: &past}, true},
		{"scheduled in the future", Post{Status: PostStatusScheduled, ScheduledAt: &future}, false},
		{"scheduled without timestamp", Post{Status: PostStatusScheduled}, false},
		{"pending post never due", Post{Status: PostStatusPending, ScheduledAt: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.post.IsDue(now))
		})
	}
}
