package dto

import (
	"strings"

	"storyhub/internal/microservices/content-api/models"
)

type CreateChoiceRequest struct {
	Text       string `json:"text" binding:"required,min=1,max=500"`
	NextPageID int64  `json:"next_page_id" binding:"required,gt=0"`
}

type UpdateChoiceRequest struct {
	Text       *string `json:"text" binding:"omitempty,min=1,max=500"`
	NextPageID *int64  `json:"next_page_id" binding:"omitempty,gt=0"`
}

type ChoiceResponse struct {
	ID         int64  `json:"id"`
	PageID     int64  `json:"page_id"`
	Text       string `json:"text"`
	NextPageID int64  `json:"next_page_id"`
}

func (r *CreateChoiceRequest) ToModel(pageID int64) *models.Choice {
	return &models.Choice{
		PageID:     pageID,
		Text:       strings.TrimSpace(r.Text),
		NextPageID: r.NextPageID,
	}
}

func (r *UpdateChoiceRequest) ApplyTo(choice *models.Choice) {
	if r.Text != nil {
		choice.Text = strings.TrimSpace(*r.Text)
	}
	if r.NextPageID != nil {
		choice.NextPageID = *r.NextPageID
	}
}

func FromModelToChoiceResponse(choice *models.Choice) ChoiceResponse {
	return ChoiceResponse{
		ID:         choice.ID,
		PageID:     choice.PageID,
		Text:       choice.Text,
		NextPageID: choice.NextPageID,
	}
}
