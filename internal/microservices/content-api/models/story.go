package models

import (
	"time"

	"gorm.io/datatypes"
)

// Story statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusSuspended = "suspended"
)

// ValidStatus reports whether s is a known story status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusSuspended:
		return true
	}
	return false
}

type Story struct {
	ID          int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Description string                      `gorm:"type:text;not null;default:''" json:"description"`
	Status      string                      `gorm:"size:20;not null;default:draft;index" json:"status"`
	StartPageID *int64                      `json:"start_page_id"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	AuthorID    string                      `gorm:"size:64;not null;default:'';index" json:"author_id"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`

	Pages []Page `gorm:"foreignKey:StoryID" json:"pages,omitempty"`
}

func (Story) TableName() string {
	return "stories"
}
