package dto

import (
	"time"

	"storyhub/internal/microservices/web-api/models"
	"storyhub/internal/microservices/web-api/service"
)

// RateRequest creates or replaces the caller's rating
type RateRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// RatingResponse for returning rating information
type RatingResponse struct {
	ID        int64     `json:"id"`
	StoryID   int64     `json:"story_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModelToRatingResponse converts a Rating model to RatingResponse DTO
func FromModelToRatingResponse(rating *models.Rating) RatingResponse {
	return RatingResponse{
		ID:        rating.ID,
		StoryID:   rating.StoryID,
		Username:  rating.User.Username,
		Rating:    rating.Rating,
		Comment:   rating.Comment,
		CreatedAt: rating.CreatedAt,
		UpdatedAt: rating.UpdatedAt,
	}
}

// PaginatedRatingResponse for returning paginated ratings
type PaginatedRatingResponse struct {
	Data          []RatingResponse `json:"data"`
	Page          int              `json:"page"`
	PageSize      int              `json:"page_size"`
	Total         int64            `json:"total"`
	TotalPages    int64            `json:"total_pages"`
	AverageRating float64          `json:"average_rating"`
}

// NewPaginatedRatingResponse creates a paginated rating response
func NewPaginatedRatingResponse(p *service.RatingPage) PaginatedRatingResponse {
	data := make([]RatingResponse, 0, len(p.Ratings))
	for i := range p.Ratings {
		data = append(data, FromModelToRatingResponse(&p.Ratings[i]))
	}

	pageSize := int64(p.PageSize)
	totalPages := p.Total / pageSize
	if p.Total%pageSize != 0 {
		totalPages++
	}

	return PaginatedRatingResponse{
		Data:          data,
		Page:          p.Page,
		PageSize:      p.PageSize,
		Total:         p.Total,
		TotalPages:    totalPages,
		AverageRating: p.AverageRating,
	}
}
