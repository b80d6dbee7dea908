package models

import "time"

// Choice is a directed edge between two pages of the same story.
type Choice struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PageID     int64     `gorm:"not null;index" json:"page_id"`
	Text       string    `gorm:"size:500;not null" json:"text"`
	NextPageID int64     `gorm:"not null;index" json:"next_page_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Choice) TableName() string {
	return "choices"
}
