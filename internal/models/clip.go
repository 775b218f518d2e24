package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClipStatus represents the processing state of a clip
type ClipStatus string

const (
	ClipStatusPending    ClipStatus = "pending"    // Created, awaiting processing
	ClipStatusProcessing ClipStatus = "processing" // Picked up by a worker
	ClipStatusCompleted  ClipStatus = "completed"  // Clip file and thumbnail exist on storage
	ClipStatusFailed     ClipStatus = "failed"     // Processing failed, no guaranteed output
)

// Clip represents a time-bounded excerpt of a SourceVideo with its
// own processing state.
type Clip struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SourceVideoID uint         `json:"source_video_id" gorm:"not null;index"`
	SourceVideo   *SourceVideo `json:"source_video,omitempty" gorm:"foreignKey:SourceVideoID"`
	UserID        string       `json:"user_id" gorm:"not null;index"`

	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`

	// Time range within the source, in seconds. Duration is derived
	// and recomputed whenever the range changes.
	StartTime float64 `json:"start_time" gorm:"not null"`
	EndTime   float64 `json:"end_time" gorm:"not null"`
	Duration  float64 `json:"duration" gorm:"not null"`

	Status       ClipStatus `json:"status" gorm:"default:pending;size:20;index"`
	ErrorMessage string     `json:"error_message,omitempty" gorm:"size:500"`
}

// BeforeCreate generates a UUID and derives duration before creating a new clip
func (c *Clip) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = ClipStatusPending
	}
	c.Duration = c.EndTime - c.StartTime
	return nil
}

// BeforeSave keeps the duration invariant on range edits
func (c *Clip) BeforeSave(tx *gorm.DB) error {
	c.Duration = c.EndTime - c.StartTime
	return nil
}

// TableName specifies the table name for GORM
func (Clip) TableName() string {
	return "clips"
}

// IsCompleted returns true if the clip file and thumbnail exist on storage
func (c *Clip) IsCompleted() bool {
	return c.Status == ClipStatusCompleted
}

// IsProcessing returns true if a worker currently owns the clip
func (c *Clip) IsProcessing() bool {
	return c.Status == ClipStatusProcessing
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// DownloadFilename returns the attachment filename for the download
// endpoint: the clip title with non-alphanumerics replaced by underscores.
func (c *Clip) DownloadFilename() string {
	return nonAlphanumeric.ReplaceAllString(c.Title, "_") + ".mp4"
}
