package models

import (
	"time"

	"gorm.io/datatypes"
)

// PlaySession is the resumable cursor of one session key inside one story.
type PlaySession struct {
	ID            int64                     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionKey    string                    `gorm:"not null;uniqueIndex:idx_play_sessions_key_story" json:"-"`
	StoryID       int64                     `gorm:"not null;uniqueIndex:idx_play_sessions_key_story;index" json:"story_id"`
	CurrentPageID int64                     `gorm:"not null;index" json:"current_page_id"`
	UserID        *string                   `gorm:"type:uuid" json:"user_id"`
	Path          datatypes.JSONSlice[int64] `gorm:"not null" json:"path"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

func (PlaySession) TableName() string {
	return "play_sessions"
}
