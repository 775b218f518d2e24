package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestClip_BeforeCreate(t *testing.T) {
	tests := []struct {
		name       string
		clip       Clip
		wantUUID   bool
		wantStatus ClipStatus
	}{
		{
			name:       "generates UUID if empty",
			clip:       Clip{},
			wantUUID:   true,
			wantStatus: ClipStatusPending,
		},
		{
			name: "keeps existing UUID",
			clip: Clip{
				UUID: "custom-uuid-123",
			},
			wantUUID:   true,
			wantStatus: ClipStatusPending,
		},
		{
			name: "keeps existing status",
			clip: Clip{
				Status: ClipStatusCompleted,
			},
			wantUUID:   true,
			wantStatus: ClipStatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
				Logger: logger.Default.LogMode(logger.Silent),
			})

			err := tt.clip.BeforeCreate(db)
			require.NoError(t, err)

			if tt.wantUUID {
				assert.NotEmpty(t, tt.clip.UUID, "UUID should be generated")
			}

			assert.Equal(t, tt.wantStatus, tt.clip.Status)
		})
	}
}

func TestClip_DurationInvariant(t *testing.T) {
	db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	clip := Clip{StartTime: 10, EndTime: 40}
	err := clip.BeforeCreate(db)
	require.NoError(t, err)
	assert.Equal(t, 30.0, clip.Duration)

	// Range edit recomputes the duration
	clip.EndTime = 55.5
	err = clip.BeforeSave(db)
	require.NoError(t, err)
	assert.InDelta(t, 45.5, clip.Duration, 0.001)
}

func TestClip_DownloadFilename(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "myclip", "myclip.mp4"},
		{"spaces and punctuation", "My Best Clip!", "My_Best_Clip_.mp4"},
		{"unicode stripped", "clip #1 — final", "clip__1_____final.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := Clip{Title: tt.title}
			assert.Equal(t, tt.want, clip.DownloadFilename())
		})
	}
}

func TestClip_DatabaseOperations(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&SourceVideo{}, &Clip{})
	require.NoError(t, err)

	video := SourceVideo{
		UserID:   "user-1",
		URL:      "https://youtube.com/watch?v=dQw4w9WgXcQ",
		Title:    "Source",
		Duration: 120,
	}
	require.NoError(t, db.Create(&video).Error)
	assert.NotEmpty(t, video.UUID)

	t.Run("create clip derives duration and defaults", func(t *testing.T) {
		clip := Clip{
			SourceVideoID: video.ID,
			UserID:        "user-1",
			Title:         "Intro",
			StartTime:     10,
			EndTime:       40,
		}

		err := db.Create(&clip).Error
		require.NoError(t, err)
		assert.NotEmpty(t, clip.UUID, "UUID should be auto-generated")
		assert.Equal(t, ClipStatusPending, clip.Status, "Status should default to pending")
		assert.Equal(t, 30.0, clip.Duration)
	})

	t.Run("saving an edited range recomputes duration", func(t *testing.T) {
		clip := Clip{
			SourceVideoID: video.ID,
			UserID:        "user-1",
			Title:         "Outro",
			StartTime:     60,
			EndTime:       90,
		}
		require.NoError(t, db.Create(&clip).Error)

		clip.StartTime = 50
		clip.EndTime = 110
		require.NoError(t, db.Save(&clip).Error)

		var reloaded Clip
		require.NoError(t, db.First(&reloaded, clip.ID).Error)
		assert.Equal(t, 60.0, reloaded.Duration)
	})

	t.Run("query clips by source video ordered by start time", func(t *testing.T) {
		other := SourceVideo{
			UserID:   "user-1",
			URL:      "https://youtube.com/watch?v=abcdefghijk",
			Title:    "Other",
			Duration: 300,
		}
		require.NoError(t, db.Create(&other).Error)

		for i := 0; i < 3; i++ {
			clip := Clip{
				SourceVideoID: other.ID,
				UserID:        "user-1",
				Title:         "part",
				StartTime:     float64(i * 30),
				EndTime:       float64(i*30 + 15),
			}
			require.NoError(t, db.Create(&clip).Error)
		}

		var clips []Clip
		err := db.Where("source_video_id = ?", other.ID).
			Order("start_time ASC").
			Find(&clips).Error
		require.NoError(t, err)
		assert.Len(t, clips, 3)
		assert.Equal(t, 0.0, clips[0].StartTime)
		assert.Equal(t, 30.0, clips[1].StartTime)
		assert.Equal(t, 60.0, clips[2].StartTime)
	})
}
