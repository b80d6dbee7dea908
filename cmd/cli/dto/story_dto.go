package dto

import "time"

type Story struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	StartPageID   *int64    `json:"start_page_id"`
	Tags          []string  `json:"tags"`
	AuthorID      string    `json:"author_id"`
	CreatedAt     time.Time `json:"created_at"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int64     `json:"rating_count"`
	CanEdit       bool      `json:"can_edit"`
}

type StoryList struct {
	Stories []Story `json:"stories"`
	Total   int     `json:"total"`
}

type Page struct {
	ID          int64    `json:"id"`
	StoryID     int64    `json:"story_id"`
	Text        string   `json:"text"`
	IsEnding    bool     `json:"is_ending"`
	EndingLabel *string  `json:"ending_label"`
	Choices     []Choice `json:"choices"`
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

type EndingStat struct {
	EndingPageID int64   `json:"ending_page_id"`
	EndingLabel  string  `json:"ending_label"`
	Count        int64   `json:"count"`
	Percentage   float64 `json:"percentage"`
}

type StoryStats struct {
	StoryID     int64        `json:"story_id"`
	Title       string       `json:"title"`
	TotalPlays  int64        `json:"total_plays"`
	EndingStats []EndingStat `json:"ending_stats"`
}

type PlayState struct {
	StoryID     int64   `json:"story_id"`
	StoryTitle  string  `json:"story_title"`
	Page        *Page   `json:"page"`
	Path        []int64 `json:"path"`
	Resumed     bool    `json:"resumed"`
	Preview     bool    `json:"preview"`
	IsEnding    bool    `json:"is_ending"`
	EndingLabel *string `json:"ending_label"`
	PlayID      *int64  `json:"play_id"`
}

type CreateStoryRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type UpdateStoryRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

type CreatePageRequest struct {
	Text        string `json:"text"`
	IsEnding    bool   `json:"is_ending"`
	EndingLabel string `json:"ending_label,omitempty"`
}

type CreateChoiceRequest struct {
	Text       string `json:"text"`
	NextPageID int64  `json:"next_page_id"`
}

type Report struct {
	ID             int64     `json:"id"`
	StoryID        int64     `json:"story_id"`
	Reporter       string    `json:"reporter"`
	Reason         string    `json:"reason"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	ModeratorNotes string    `json:"moderator_notes"`
	CreatedAt      time.Time `json:"created_at"`
}

type ReviewReportRequest struct {
	Status         string `json:"status"`
	ModeratorNotes string `json:"moderator_notes,omitempty"`
}
