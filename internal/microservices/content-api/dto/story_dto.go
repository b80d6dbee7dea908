package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"storyhub/internal/microservices/content-api/models"
)

// OptionalID distinguishes an absent JSON field from an explicit null.
type OptionalID struct {
	Set   bool
	Value *int64
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

type CreateStoryRequest struct {
	Title       string   `json:"title" binding:"required,min=1,max=255"`
	Description string   `json:"description" binding:"max=5000"`
	Status      string   `json:"status" binding:"omitempty,oneof=draft published suspended"`
	Tags        []string `json:"tags" binding:"max=20,dive,min=1,max=50"`
	AuthorID    string   `json:"author_id" binding:"max=64"`
}

// UpdateStoryRequest is a partial update; nil fields are left untouched.
// start_page_id: null clears the start page.
type UpdateStoryRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Status      *string    `json:"status" binding:"omitempty,oneof=draft published suspended"`
	Tags        *[]string  `json:"tags" binding:"omitempty,max=20,dive,min=1,max=50"`
	StartPageID OptionalID `json:"start_page_id"`
}

// StoryFilter mirrors the list query string.
type StoryFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft published suspended"`
	Search   string `form:"search" binding:"max=200"`
	Tags     string `form:"tags" binding:"max=500"`
	AuthorID string `form:"author_id" binding:"max=64"`
}

type StoryResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	StartPageID *int64         `json:"start_page_id"`
	Tags        []string       `json:"tags"`
	AuthorID    string         `json:"author_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Pages       []PageResponse `json:"pages,omitempty"`
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// SplitTags parses the comma separated tags query parameter.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return NormalizeTags(strings.Split(raw, ","))
}

// ToModel converts CreateStoryRequest to a Story model
func (r *CreateStoryRequest) ToModel() *models.Story {
	status := r.Status
	if status == "" {
		status = models.StatusDraft
	}
	return &models.Story{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Status:      status,
		Tags:        NormalizeTags(r.Tags),
		AuthorID:    r.AuthorID,
	}
}

// ApplyTo applies the non-nil fields onto story
func (r *UpdateStoryRequest) ApplyTo(story *models.Story) {
	if r.Title != nil {
		story.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		story.Description = *r.Description
	}
	if r.Status != nil {
		story.Status = *r.Status
	}
	if r.Tags != nil {
		story.Tags = NormalizeTags(*r.Tags)
	}
	if r.StartPageID.Set {
		story.StartPageID = r.StartPageID.Value
	}
}

// FromModelToStoryResponse converts a Story model to its response, pages included when loaded
func FromModelToStoryResponse(story *models.Story) StoryResponse {
	tags := []string(story.Tags)
	if tags == nil {
		tags = []string{}
	}
	resp := StoryResponse{
		ID:          story.ID,
		Title:       story.Title,
		Description: story.Description,
		Status:      story.Status,
		StartPageID: story.StartPageID,
		Tags:        tags,
		AuthorID:    story.AuthorID,
		CreatedAt:   story.CreatedAt,
		UpdatedAt:   story.UpdatedAt,
	}
	if len(story.Pages) > 0 {
		resp.Pages = make([]PageResponse, 0, len(story.Pages))
		for i := range story.Pages {
			resp.Pages = append(resp.Pages, FromModelToPageResponse(&story.Pages[i]))
		}
	}
	return resp
}

func FromModelsToStoryResponses(stories []models.Story) []StoryResponse {
	out := make([]StoryResponse, 0, len(stories))
	for i := range stories {
		out = append(out, FromModelToStoryResponse(&stories[i]))
	}
	return out
}
