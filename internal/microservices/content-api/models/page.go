package models

import "time"

// Page is a node of a story graph. Ending pages are terminal.
type Page struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StoryID     int64     `gorm:"not null;index" json:"story_id"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	IsEnding    bool      `gorm:"not null" json:"is_ending"`
	EndingLabel *string   `gorm:"size:255" json:"ending_label"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Choices []Choice `gorm:"foreignKey:PageID" json:"choices,omitempty"`
}

func (Page) TableName() string {
	return "pages"
}
