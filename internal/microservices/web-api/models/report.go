package models

import "time"

const (
	ReportPending   = "pending"
	ReportReviewing = "reviewing"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

var ReportReasons = []string{"inappropriate", "spam", "copyright", "offensive", "other"}

type Report struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	StoryID        int64      `gorm:"not null;index" json:"story_id"`
	UserID         string     `gorm:"type:uuid;not null" json:"user_id"`
	Reason         string     `gorm:"not null" json:"reason"`
	Description    string     `gorm:"type:text;not null;default:''" json:"description"`
	Status         string     `gorm:"not null;default:'pending';index" json:"status"`
	ModeratorNotes string     `gorm:"type:text;not null;default:''" json:"moderator_notes"`
	ReviewedBy     *string    `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Report) TableName() string {
	return "reports"
}
