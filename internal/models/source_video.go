package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SourceVideo represents one origin media asset resolved from a URL.
// Created on first successful resolution; immutable afterwards except
// by deletion, which cascades to its clips.
type SourceVideo struct {
	gorm.Model
	UUID         string `json:"uuid" gorm:"uniqueIndex;not null"`
	UserID       string `json:"user_id" gorm:"not null;index"`
	URL          string `json:"url" gorm:"uniqueIndex;not null;size:500"`
	Title        string `json:"title" gorm:"not null"`
	Description  string `json:"description" gorm:"type:text"`
	Duration     int    `json:"duration"` // Duration in seconds
	ThumbnailURL string `json:"thumbnail_url" gorm:"size:500"`

	Clips []Clip `json:"clips,omitempty" gorm:"foreignKey:SourceVideoID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate generates a UUID before creating a new source video
func (v *SourceVideo) BeforeCreate(tx *gorm.DB) error {
	if v.UUID == "" {
		v.UUID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for GORM
func (SourceVideo) TableName() string {
	return "source_videos"
}
