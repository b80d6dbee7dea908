package contentclient

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusSuspended = "suspended"
)

type Story struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	StartPageID *int64    `json:"start_page_id"`
	Tags        []string  `json:"tags"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Pages       []Page    `json:"pages,omitempty"`
}

type Page struct {
	ID          int64     `json:"id"`
	StoryID     int64     `json:"story_id"`
	Text        string    `json:"text"`
	IsEnding    bool      `json:"is_ending"`
	EndingLabel *string   `json:"ending_label"`
	CreatedAt   time.Time `json:"created_at"`
	Choices     []Choice  `json:"choices"`
}

// Label returns the ending label or an empty string.
func (p *Page) Label() string {
	if p.EndingLabel == nil {
		return ""
	}
	return *p.EndingLabel
}

type Choice struct {
	ID         int64  `json:"id"`
	PageID     int64  `json:"page_id"`
	Text       string `json:"text"`
	NextPageID int64  `json:"next_page_id"`
}

type Tree struct {
	Story              Story   `json:"story"`
	Pages              []Page  `json:"pages"`
	EndingPageIDs      []int64 `json:"ending_page_ids"`
	UnreachablePageIDs []int64 `json:"unreachable_page_ids"`
	DeadEndPageIDs     []int64 `json:"dead_end_page_ids"`
}

// StoryQuery filters ListStories. Zero fields are not sent.
type StoryQuery struct {
	Status   string
	Search   string
	Tags     []string
	AuthorID string
}

type CreateStoryInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	AuthorID    string   `json:"author_id"`
}

type UpdateStoryInput struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	StartPageID *int64    `json:"start_page_id,omitempty"`
}

type CreatePageInput struct {
	Text        string `json:"text"`
	IsEnding    bool   `json:"is_ending"`
	EndingLabel string `json:"ending_label,omitempty"`
}

type UpdatePageInput struct {
	Text        *string `json:"text,omitempty"`
	IsEnding    *bool   `json:"is_ending,omitempty"`
	EndingLabel *string `json:"ending_label,omitempty"`
}

type CreateChoiceInput struct {
	Text       string `json:"text"`
	NextPageID int64  `json:"next_page_id"`
}

type UpdateChoiceInput struct {
	Text       *string `json:"text,omitempty"`
	NextPageID *int64  `json:"next_page_id,omitempty"`
}

type storiesEnvelope struct {
	Stories []Story `json:"stories"`
}

type storyEnvelope struct {
	Story Story `json:"story"`
}

type pagesEnvelope struct {
	Pages []Page `json:"pages"`
}

type pageEnvelope struct {
	Page Page `json:"page"`
}

type choiceEnvelope struct {
	Choice Choice `json:"choice"`
}

type startPageResponse struct {
	PageID int64 `json:"page_id"`
}

type errorBody struct {
	Error string `json:"error"`
}
