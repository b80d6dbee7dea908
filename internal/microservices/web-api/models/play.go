package models

import (
	"time"

	"gorm.io/datatypes"
)

// Play is the append-only record of one completed walk through a story.
type Play struct {
	ID           int64                     `gorm:"primaryKey;autoIncrement" json:"id"`
	StoryID      int64                     `gorm:"not null;index" json:"story_id"`
	EndingPageID int64                     `gorm:"not null" json:"ending_page_id"`
	UserID       *string                   `gorm:"type:uuid;index" json:"user_id"`
	Path         datatypes.JSONSlice[int64] `gorm:"not null" json:"path"`
	CreatedAt    time.Time                 `json:"created_at"`
}

func (Play) TableName() string {
	return "plays"
}
