package dto

import (
	"strings"
	"time"

	"storyhub/internal/microservices/content-api/models"
)

type CreatePageRequest struct {
	Text        string `json:"text" binding:"required,min=1,max=20000"`
	IsEnding    bool   `json:"is_ending"`
	EndingLabel string `json:"ending_label" binding:"max=255"`
}

type UpdatePageRequest struct {
	Text        *string `json:"text" binding:"omitempty,min=1,max=20000"`
	IsEnding    *bool   `json:"is_ending"`
	EndingLabel *string `json:"ending_label" binding:"omitempty,max=255"`
}

type PageResponse struct {
	ID          int64            `json:"id"`
	StoryID     int64            `json:"story_id"`
	Text        string           `json:"text"`
	IsEnding    bool             `json:"is_ending"`
	EndingLabel *string          `json:"ending_label"`
	CreatedAt   time.Time        `json:"created_at"`
	Choices     []ChoiceResponse `json:"choices"`
}

// ToModel converts CreatePageRequest to a Page of storyID
func (r *CreatePageRequest) ToModel(storyID int64) *models.Page {
	page := &models.Page{
		StoryID:  storyID,
		Text:     r.Text,
		IsEnding: r.IsEnding,
	}
	page.EndingLabel = endingLabel(page.IsEnding, r.EndingLabel)
	return page
}

// ApplyTo applies the non-nil fields onto page. Non-ending pages never keep a label.
func (r *UpdatePageRequest) ApplyTo(page *models.Page) {
	if r.Text != nil {
		page.Text = *r.Text
	}
	if r.IsEnding != nil {
		page.IsEnding = *r.IsEnding
	}
	label := ""
	if page.EndingLabel != nil {
		label = *page.EndingLabel
	}
	if r.EndingLabel != nil {
		label = *r.EndingLabel
	}
	page.EndingLabel = endingLabel(page.IsEnding, label)
}

func endingLabel(isEnding bool, label string) *string {
	label = strings.TrimSpace(label)
	if !isEnding || label == "" {
		return nil
	}
	return &label
}

func FromModelToPageResponse(page *models.Page) PageResponse {
	choices := make([]ChoiceResponse, 0, len(page.Choices))
	for i := range page.Choices {
		choices = append(choices, FromModelToChoiceResponse(&page.Choices[i]))
	}
	return PageResponse{
		ID:          page.ID,
		StoryID:     page.StoryID,
		Text:        page.Text,
		IsEnding:    page.IsEnding,
		EndingLabel: page.EndingLabel,
		CreatedAt:   page.CreatedAt,
		Choices:     choices,
	}
}

func FromModelsToPageResponses(pages []models.Page) []PageResponse {
	out := make([]PageResponse, 0, len(pages))
	for i := range pages {
		out = append(out, FromModelToPageResponse(&pages[i]))
	}
	return out
}
