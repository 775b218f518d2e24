package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Platform identifies a supported publishing destination
type Platform string

const (
	PlatformTikTok        Platform = "tiktok"
	PlatformInstagram     Platform = "instagram"
	PlatformYouTubeShorts Platform = "youtube_shorts"
)

// IsValid returns true if the platform is one of the supported destinations
func (p Platform) IsValid() bool {
	switch p {
	case PlatformTikTok, PlatformInstagram, PlatformYouTubeShorts:
		return true
	}
	return false
}

// PlatformSpec describes the fixed output geometry a platform expects
type PlatformSpec struct {
	Width  int
	Height int
	Aspect string
}

// platformSpecs is the static platform -> geometry table used when
// re-encoding a clip for a destination. Not inferred from input.
var platformSpecs = map[Platform]PlatformSpec{
	PlatformTikTok:        {Width: 1080, Height: 1920, Aspect: "9:16"},
	PlatformInstagram:     {Width: 1080, Height: 1080, Aspect: "1:1"},
	PlatformYouTubeShorts: {Width: 1080, Height: 1920, Aspect: "9:16"},
}

// SpecForPlatform returns the output geometry for a platform
func SpecForPlatform(p Platform) (PlatformSpec, bool) {
	spec, ok := platformSpecs[p]
	return spec, ok
}

// SocialAccount binds one user's credentials to one platform.
// At most one account exists per (user, platform) pair.
type SocialAccount struct {
	gorm.Model
	UUID     string   `json:"uuid" gorm:"uniqueIndex;not null"`
	UserID   string   `json:"user_id" gorm:"not null;uniqueIndex:idx_accounts_user_platform"`
	Platform Platform `json:"platform" gorm:"not null;size:20;uniqueIndex:idx_accounts_user_platform"`
	Username string   `json:"username" gorm:"not null"`
	// Stored in the clear. Credential encryption is tracked separately.
	Password   string     `json:"-" gorm:"not null"`
	Connected  bool       `json:"connected" gorm:"default:true"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// BeforeCreate generates a UUID before creating a new social account
func (a *SocialAccount) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for GORM
func (SocialAccount) TableName() string {
	return "social_accounts"
}
