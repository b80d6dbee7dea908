package service

import (
	"context"
	"fmt"

	"storyhub/internal/microservices/web-api/contentclient"

	"go.uber.org/zap"
)

// AuthorService proxies graph edits to the content API after ownership checks.
type AuthorService interface {
	MyStories(ctx context.Context, viewer Viewer) ([]contentclient.Story, error)
	CreateStory(ctx context.Context, viewer Viewer, in contentclient.CreateStoryInput) (*contentclient.Story, error)
	UpdateStory(ctx context.Context, viewer Viewer, storyID int64, in contentclient.UpdateStoryInput) (*contentclient.Story, error)
	DeleteStory(ctx context.Context, viewer Viewer, storyID int64) error
	SetStartPage(ctx context.Context, viewer Viewer, storyID, pageID int64) (*contentclient.Story, error)
	Tree(ctx context.Context, viewer Viewer, storyID int64) (*contentclient.Tree, error)

	AddPage(ctx context.Context, viewer Viewer, storyID int64, in contentclient.CreatePageInput) (*contentclient.Page, error)
	UpdatePage(ctx context.Context, viewer Viewer, pageID int64, in contentclient.UpdatePageInput) (*contentclient.Page, error)
	DeletePage(ctx context.Context, viewer Viewer, pageID int64) error

	AddChoice(ctx context.Context, viewer Viewer, pageID int64, in contentclient.CreateChoiceInput) (*contentclient.Choice, error)
	UpdateChoice(ctx context.Context, viewer Viewer, choiceID int64, in contentclient.UpdateChoiceInput) (*contentclient.Choice, error)
	DeleteChoice(ctx context.Context, viewer Viewer, choiceID int64) error
}

type authorService struct {
	content contentclient.API
	logger  *zap.Logger
}

func NewAuthorService(content contentclient.API, logger *zap.Logger) AuthorService {
	return &authorService{content: content, logger: logger}
}

// owned loads a story the viewer may edit. Drafts of other authors look missing, and a
// suspended story is frozen for everyone but admins.
func (s *authorService) owned(ctx context.Context, viewer Viewer, storyID int64) (*contentclient.Story, error) {
	story, err := visibleStory(ctx, s.content, viewer, storyID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(story) {
		return nil, ErrForbidden
	}
	if story.Status == contentclient.StatusSuspended && !viewer.IsAdmin() {
		return nil, ErrStorySuspended
	}
	return story, nil
}

func (s *authorService) ownedPage(ctx context.Context, viewer Viewer, pageID int64) (*contentclient.Page, error) {
	page, err := s.content.GetPage(ctx, pageID)
	if err != nil {
		return nil, mapContent(err, ErrPageNotFound, "get page")
	}
	if _, err := s.owned(ctx, viewer, page.StoryID); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *authorService) ownedChoice(ctx context.Context, viewer Viewer, choiceID int64) (*contentclient.Choice, error) {
	choice, err := s.content.GetChoice(ctx, choiceID)
	if err != nil {
		return nil, mapContent(err, ErrChoiceNotFound, "get choice")
	}
	if _, err := s.ownedPage(ctx, viewer, choice.PageID); err != nil {
		return nil, err
	}
	return choice, nil
}

// checkStatus allows authors to move between draft and published only.
func checkStatus(viewer Viewer, status string) error {
	switch status {
	case contentclient.StatusDraft, contentclient.StatusPublished:
		return nil
	case contentclient.StatusSuspended:
		if viewer.IsAdmin() {
			return nil
		}
	}
	return ErrInvalidStatusChange
}

func (s *authorService) MyStories(ctx context.Context, viewer Viewer) ([]contentclient.Story, error) {
	stories, err := s.content.ListStories(ctx, contentclient.StoryQuery{AuthorID: viewer.UserID})
	if err != nil {
		return nil, fmt.Errorf("list own stories: %w", err)
	}
	return stories, nil
}

func (s *authorService) CreateStory(ctx context.Context, viewer Viewer, in contentclient.CreateStoryInput) (*contentclient.Story, error) {
	if in.Status == "" {
		in.Status = contentclient.StatusDraft
	}
	if err := checkStatus(viewer, in.Status); err != nil {
		return nil, err
	}
	in.AuthorID = viewer.UserID

	story, err := s.content.CreateStory(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}
	s.logger.Info("Story created", zap.Int64("story_id", story.ID), zap.String("author_id", viewer.UserID))
	return story, nil
}

func (s *authorService) UpdateStory(ctx context.Context, viewer Viewer, storyID int64, in contentclient.UpdateStoryInput) (*contentclient.Story, error) {
	if _, err := s.owned(ctx, viewer, storyID); err != nil {
		return nil, err
	}
	if in.Status != nil {
		if err := checkStatus(viewer, *in.Status); err != nil {
			return nil, err
		}
	}
	story, err := s.content.UpdateStory(ctx, storyID, in)
	if err != nil {
		return nil, mapContent(err, ErrStoryNotFound, "update story")
	}
	return story, nil
}

func (s *authorService) DeleteStory(ctx context.Context, viewer Viewer, storyID int64) error {
	if _, err := s.owned(ctx, viewer, storyID); err != nil {
		return err
	}
	if err := s.content.DeleteStory(ctx, storyID); err != nil {
		return mapContent(err, ErrStoryNotFound, "delete story")
	}
	s.logger.Info("Story deleted", zap.Int64("story_id", storyID), zap.String("by", viewer.UserID))
	return nil
}

func (s *authorService) SetStartPage(ctx context.Context, viewer Viewer, storyID, pageID int64) (*contentclient.Story, error) {
	return s.UpdateStory(ctx, viewer, storyID, contentclient.UpdateStoryInput{StartPageID: &pageID})
}

func (s *authorService) Tree(ctx context.Context, viewer Viewer, storyID int64) (*contentclient.Tree, error) {
	story, err := visibleStory(ctx, s.content, viewer, storyID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(story) {
		return nil, ErrForbidden
	}
	tree, err := s.content.GetTree(ctx, storyID)
	if err != nil {
		return nil, mapContent(err, ErrStoryNotFound, "get tree")
	}
	return tree, nil
}

func (s *authorService) AddPage(ctx context.Context, viewer Viewer, storyID int64, in contentclient.CreatePageInput) (*contentclient.Page, error) {
	if _, err := s.owned(ctx, viewer, storyID); err != nil {
		return nil, err
	}
	page, err := s.content.CreatePage(ctx, storyID, in)
	if err != nil {
		return nil, mapContent(err, ErrStoryNotFound, "create page")
	}
	return page, nil
}

func (s *authorService) UpdatePage(ctx context.Context, viewer Viewer, pageID int64, in contentclient.UpdatePageInput) (*contentclient.Page, error) {
	if _, err := s.ownedPage(ctx, viewer, pageID); err != nil {
		return nil, err
	}
	page, err := s.content.UpdatePage(ctx, pageID, in)
	if err != nil {
		return nil, mapContent(err, ErrPageNotFound, "update page")
	}
	return page, nil
}

func (s *authorService) DeletePage(ctx context.Context, viewer Viewer, pageID int64) error {
	if _, err := s.ownedPage(ctx, viewer, pageID); err != nil {
		return err
	}
	return mapContent(s.content.DeletePage(ctx, pageID), ErrPageNotFound, "delete page")
}

func (s *authorService) AddChoice(ctx context.Context, viewer Viewer, pageID int64, in contentclient.CreateChoiceInput) (*contentclient.Choice, error) {
	if _, err := s.ownedPage(ctx, viewer, pageID); err != nil {
		return nil, err
	}
	choice, err := s.content.CreateChoice(ctx, pageID, in)
	if err != nil {
		return nil, mapContent(err, ErrPageNotFound, "create choice")
	}
	return choice, nil
}

func (s *authorService) UpdateChoice(ctx context.Context, viewer Viewer, choiceID int64, in contentclient.UpdateChoiceInput) (*contentclient.Choice, error) {
	if _, err := s.ownedChoice(ctx, viewer, choiceID); err != nil {
		return nil, err
	}
	choice, err := s.content.UpdateChoice(ctx, choiceID, in)
	if err != nil {
		return nil, mapContent(err, ErrChoiceNotFound, "update choice")
	}
	return choice, nil
}

func (s *authorService) DeleteChoice(ctx context.Context, viewer Viewer, choiceID int64) error {
	if _, err := s.ownedChoice(ctx, viewer, choiceID); err != nil {
		return err
	}
	return mapContent(s.content.DeleteChoice(ctx, choiceID), ErrChoiceNotFound, "delete choice")
}
