package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostStatus represents the lifecycle state of a publish request
type PostStatus string

const (
	PostStatusPending   PostStatus = "pending"   // Awaiting immediate publish
	PostStatusScheduled PostStatus = "scheduled" // Deferred until ScheduledAt
	PostStatusPosting   PostStatus = "posting"   // Publish attempt in flight
	PostStatusPosted    PostStatus = "posted"    // Published, PlatformURL recorded
	PostStatusFailed    PostStatus = "failed"    // Publish attempt failed, ErrorMessage recorded
)

// Post represents one attempt to publish a Clip to a SocialAccount.
type Post struct {
	gorm.Model
	UUID            string         `json:"uuid" gorm:"uniqueIndex;not null"`
	UserID          string         `json:"user_id" gorm:"not null;index"`
	ClipID          uint           `json:"clip_id" gorm:"not null;index"`
	Clip            *Clip          `json:"clip,omitempty" gorm:"foreignKey:ClipID"`
	SocialAccountID uint           `json:"social_account_id" gorm:"not null;index"`
	SocialAccount   *SocialAccount `json:"social_account,omitempty" gorm:"foreignKey:SocialAccountID"`

	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`

	Status       PostStatus `json:"status" gorm:"default:pending;size:20;index"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
	PlatformURL  string     `json:"platform_url,omitempty" gorm:"size:500"`
	ErrorMessage string     `json:"error_message,omitempty" gorm:"size:500"`
	PostedAt     *time.Time `json:"posted_at"`
}

// BeforeCreate generates a UUID before creating a new post
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PostStatusPending
	}
	return nil
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// IsDue returns true for a scheduled post whose time has arrived
func (p *Post) IsDue(now time.Time) bool {
	return p.Status == PostStatusScheduled && p.ScheduledAt != nil && !p.ScheduledAt.After(now)
}
