package dto

import (
	"time"

	"storyhub/internal/microservices/web-api/models"
)

type CreateReportRequest struct {
	Reason      string `json:"reason" binding:"required,oneof=inappropriate spam copyright offensive other"`
	Description string `json:"description" binding:"max=2000"`
}

type ReviewReportRequest struct {
	Status         string `json:"status" binding:"required,oneof=pending reviewing resolved dismissed"`
	ModeratorNotes string `json:"moderator_notes" binding:"max=2000"`
}

type ReportResponse struct {
	ID             int64      `json:"id"`
	StoryID        int64      `json:"story_id"`
	Reporter       string     `json:"reporter,omitempty"`
	Reason         string     `json:"reason"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	ModeratorNotes string     `json:"moderator_notes"`
	ReviewedBy     *string    `json:"reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func FromModelToReportResponse(r *models.Report) ReportResponse {
	return ReportResponse{
		ID:             r.ID,
		StoryID:        r.StoryID,
		Reporter:       r.User.Username,
		Reason:         r.Reason,
		Description:    r.Description,
		Status:         r.Status,
		ModeratorNotes: r.ModeratorNotes,
		ReviewedBy:     r.ReviewedBy,
		ReviewedAt:     r.ReviewedAt,
		CreatedAt:      r.CreatedAt,
	}
}
