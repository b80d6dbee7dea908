package dto

import "storyhub/internal/microservices/web-api/contentclient"

// Authoring payloads, forwarded to the content API after ownership checks.

type CreateStoryRequest struct {
	Title       string   `json:"title" binding:"required,min=1,max=255"`
	Description string   `json:"description"`
	Status      string   `json:"status" binding:"omitempty,oneof=draft published suspended"`
	Tags        []string `json:"tags" binding:"max=20,dive,min=1,max=50"`
}

func (r *CreateStoryRequest) ToInput() contentclient.CreateStoryInput {
	return contentclient.CreateStoryInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Tags:        r.Tags,
	}
}

type UpdateStoryRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string   `json:"description"`
	Status      *string   `json:"status" binding:"omitempty,oneof=draft published suspended"`
	Tags        *[]string `json:"tags" binding:"omitempty,max=20"`
}

func (r *UpdateStoryRequest) ToInput() contentclient.UpdateStoryInput {
	return contentclient.UpdateStoryInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Tags:        r.Tags,
	}
}

type SetStartPageRequest struct {
	PageID int64 `json:"page_id" binding:"required,min=1"`
}

type CreatePageRequest struct {
	Text        string `json:"text" binding:"required"`
	IsEnding    bool   `json:"is_ending"`
	EndingLabel string `json:"ending_label" binding:"max=255"`
}

func (r *CreatePageRequest) ToInput() contentclient.CreatePageInput {
	return contentclient.CreatePageInput{Text: r.Text, IsEnding: r.IsEnding, EndingLabel: r.EndingLabel}
}

type UpdatePageRequest struct {
	Text        *string `json:"text" binding:"omitempty,min=1"`
	IsEnding    *bool   `json:"is_ending"`
	EndingLabel *string `json:"ending_label" binding:"omitempty,max=255"`
}

func (r *UpdatePageRequest) ToInput() contentclient.UpdatePageInput {
	return contentclient.UpdatePageInput{Text: r.Text, IsEnding: r.IsEnding, EndingLabel: r.EndingLabel}
}

type CreateChoiceRequest struct {
	Text       string `json:"text" binding:"required,max=255"`
	NextPageID int64  `json:"next_page_id" binding:"required,min=1"`
}

func (r *CreateChoiceRequest) ToInput() contentclient.CreateChoiceInput {
	return contentclient.CreateChoiceInput{Text: r.Text, NextPageID: r.NextPageID}
}

type UpdateChoiceRequest struct {
	Text       *string `json:"text" binding:"omitempty,min=1,max=255"`
	NextPageID *int64  `json:"next_page_id" binding:"omitempty,min=1"`
}

func (r *UpdateChoiceRequest) ToInput() contentclient.UpdateChoiceInput {
	return contentclient.UpdateChoiceInput{Text: r.Text, NextPageID: r.NextPageID}
}

// ChooseRequest moves the play cursor along one choice.
type ChooseRequest struct {
	ChoiceID int64 `json:"choice_id" binding:"required,min=1"`
}
