package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"storyhub/internal/microservices/web-api/contentclient"
	"storyhub/internal/microservices/web-api/models"
	"storyhub/internal/microservices/web-api/repository"

	"gorm.io/gorm"
)

type StorySummary struct {
	contentclient.Story
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
}

type StoryView struct {
	StorySummary
	Suspended bool           `json:"suspended"`
	MyRating  *models.Rating `json:"my_rating"`
	CanEdit   bool           `json:"can_edit"`
}

type StoryService interface {
	// List returns published stories only.
	List(ctx context.Context, search string, tags []string) ([]StorySummary, error)
	Get(ctx context.Context, viewer Viewer, id int64) (*StoryView, error)
}

type storyService struct {
	content contentclient.API
	ratings repository.RatingRepository
}

func NewStoryService(content contentclient.API, ratings repository.RatingRepository) StoryService {
	return &storyService{content: content, ratings: ratings}
}

func (s *storyService) List(ctx context.Context, search string, tags []string) ([]StorySummary, error) {
	stories, err := s.content.ListStories(ctx, contentclient.StoryQuery{
		Status: contentclient.StatusPublished,
		Search: search,
		Tags:   tags,
	})
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}

	ids := make([]int64, len(stories))
	for i, st := range stories {
		ids[i] = st.ID
	}
	summaries, err := s.ratings.Summaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("rating summaries: %w", err)
	}

	out := make([]StorySummary, len(stories))
	for i, st := range stories {
		sum := summaries[st.ID]
		out[i] = StorySummary{Story: st, AverageRating: round1(sum.Average), RatingCount: sum.Count}
	}
	return out, nil
}

func (s *storyService) Get(ctx context.Context, viewer Viewer, id int64) (*StoryView, error) {
	story, err := visibleStory(ctx, s.content, viewer, id)
	if err != nil {
		return nil, err
	}

	sum, err := s.ratings.Summary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}

	view := &StoryView{
		StorySummary: StorySummary{Story: *story, AverageRating: round1(sum.Average), RatingCount: sum.Count},
		Suspended:    story.Status == contentclient.StatusSuspended,
		CanEdit:      viewer.CanManage(story),
	}

	if viewer.Authenticated() {
		mine, err := s.ratings.GetByUserAndStory(ctx, viewer.UserID, id)
		switch {
		case err == nil:
			view.MyRating = mine
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("own rating: %w", err)
		}
	}
	return view, nil
}

// visibleStory loads a story and hides drafts from everyone but their author and admins.
func visibleStory(ctx context.Context, content contentclient.API, viewer Viewer, id int64) (*contentclient.Story, error) {
	story, err := content.GetStory(ctx, id, false)
	if err != nil {
		return nil, mapContent(err, ErrStoryNotFound, "get story")
	}
	if !viewer.CanSee(story) {
		return nil, ErrStoryNotFound
	}
	return story, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
