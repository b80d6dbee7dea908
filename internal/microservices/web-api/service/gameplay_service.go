package service

import (
	"context"
	"fmt"

	"storyhub/internal/metrics"
	"storyhub/internal/microservices/web-api/contentclient"
	"storyhub/internal/microservices/web-api/models"
	"storyhub/internal/microservices/web-api/repository"
	"storyhub/internal/microservices/web-api/session"

	"go.uber.org/zap"
)

// Player is a viewer walking a story under a session key.
type Player struct {
	Viewer
	SessionKey string
	// Preview asks for a walk that records no Play. It only takes effect for the story's
	// author or an admin.
	Preview bool
}

// PlayState is the cursor as returned to the client after every move.
type PlayState struct {
	StoryID     int64               `json:"story_id"`
	StoryTitle  string              `json:"story_title"`
	Page        *contentclient.Page `json:"page"`
	Path        []int64             `json:"path"`
	Resumed     bool                `json:"resumed"`
	Preview     bool                `json:"preview"`
	IsEnding    bool                `json:"is_ending"`
	EndingLabel *string             `json:"ending_label"`
	PlayID      *int64              `json:"play_id"`
}

type GameplayService interface {
	Start(ctx context.Context, p Player, storyID int64, resume bool) (*PlayState, error)
	Visit(ctx context.Context, p Player, storyID, pageID int64) (*PlayState, error)
	Choose(ctx context.Context, p Player, storyID, choiceID int64) (*PlayState, error)
	Current(ctx context.Context, p Player, storyID int64) (*PlayState, error)
	Abandon(ctx context.Context, p Player, storyID int64) error
}

type gameplayService struct {
	content contentclient.API
	store   session.Store
	plays   repository.PlayRepository
	logger  *zap.Logger
}

func NewGameplayService(content contentclient.API, store session.Store, plays repository.PlayRepository, logger *zap.Logger) GameplayService {
	return &gameplayService{content: content, store: store, plays: plays, logger: logger}
}

// playable loads the story and decides whether this walk is a preview. Suspended stories
// refuse everyone. Drafts can only be walked by their author or an admin, always as previews.
func (s *gameplayService) playable(ctx context.Context, p Player, storyID int64) (*contentclient.Story, bool, error) {
	story, err := s.content.GetStory(ctx, storyID, false)
	if err != nil {
		return nil, false, mapContent(err, ErrStoryNotFound, "get story")
	}

	manager := p.CanManage(story)
	switch story.Status {
	case contentclient.StatusPublished:
		return story, p.Preview && manager, nil
	case contentclient.StatusSuspended:
		return nil, false, ErrStorySuspended
	default:
		if !manager {
			return nil, false, ErrStoryNotFound
		}
		return story, true, nil
	}
}

func (s *gameplayService) Start(ctx context.Context, p Player, storyID int64, resume bool) (*PlayState, error) {
	story, preview, err := s.playable(ctx, p, storyID)
	if err != nil {
		return nil, err
	}

	if resume {
		state, err := s.resume(ctx, p, story, preview)
		if err != nil {
			return nil, err
		}
		if state != nil {
			metrics.PlaySessionsStarted.WithLabelValues("true").Inc()
			return state, nil
		}
	}

	startID, err := s.content.GetStartPage(ctx, storyID)
	if err != nil {
		return nil, mapContent(err, ErrNoStartPage, "get start page")
	}
	page, err := s.content.GetPage(ctx, startID)
	if err != nil {
		return nil, mapContent(err, ErrNoStartPage, "get start page")
	}

	cursor := &models.PlaySession{SessionKey: p.SessionKey, StoryID: storyID}
	metrics.PlaySessionsStarted.WithLabelValues("false").Inc()
	return s.enter(ctx, p, story, cursor, page, preview)
}

// resume returns nil when there is no usable cursor. A cursor whose page vanished is dropped.
func (s *gameplayService) resume(ctx context.Context, p Player, story *contentclient.Story, preview bool) (*PlayState, error) {
	cursor, err := s.store.Get(ctx, p.SessionKey, story.ID)
	if err != nil || cursor == nil {
		return nil, err
	}

	page, err := s.content.GetPage(ctx, cursor.CurrentPageID)
	if err != nil {
		if !contentclient.IsNotFound(err) {
			return nil, fmt.Errorf("get page: %w", err)
		}
		page = nil
	}
	if page == nil || page.StoryID != story.ID {
		s.logger.Info("Dropping stale play session",
			zap.Int64("story_id", story.ID),
			zap.Int64("page_id", cursor.CurrentPageID))
		if err := s.store.Delete(ctx, p.SessionKey, story.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	state := newState(story, cursor, page, preview)
	state.Resumed = true
	return state, nil
}

func (s *gameplayService) Visit(ctx context.Context, p Player, storyID, pageID int64) (*PlayState, error) {
	story, preview, err := s.playable(ctx, p, storyID)
	if err != nil {
		return nil, err
	}

	page, err := s.content.GetPage(ctx, pageID)
	if err != nil {
		return nil, mapContent(err, ErrPageNotFound, "get page")
	}
	if page.StoryID != storyID {
		return nil, ErrPageNotFound
	}

	cursor, err := s.store.Get(ctx, p.SessionKey, storyID)
	if err != nil {
		return nil, err
	}
	if cursor == nil {
		cursor = &models.PlaySession{SessionKey: p.SessionKey, StoryID: storyID}
	}
	return s.enter(ctx, p, story, cursor, page, preview)
}

func (s *gameplayService) Choose(ctx context.Context, p Player, storyID, choiceID int64) (*PlayState, error) {
	story, preview, err := s.playable(ctx, p, storyID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.store.Get(ctx, p.SessionKey, storyID)
	if err != nil {
		return nil, err
	}
	if cursor == nil {
		return nil, ErrNoSession
	}

	choice, err := s.content.GetChoice(ctx, choiceID)
	if err != nil {
		return nil, mapContent(err, ErrChoiceNotFound, "get choice")
	}
	if choice.PageID != cursor.CurrentPageID {
		return nil, ErrChoiceNotOnPage
	}

	next, err := s.content.GetPage(ctx, choice.NextPageID)
	if err != nil {
		return nil, mapContent(err, ErrPageNotFound, "get next page")
	}
	if next.StoryID != storyID {
		return nil, ErrPageNotFound
	}
	return s.enter(ctx, p, story, cursor, next, preview)
}

func (s *gameplayService) Current(ctx context.Context, p Player, storyID int64) (*PlayState, error) {
	story, preview, err := s.playable(ctx, p, storyID)
	if err != nil {
		return nil, err
	}
	state, err := s.resume(ctx, p, story, preview)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrNoSession
	}
	state.Resumed = false
	return state, nil
}

func (s *gameplayService) Abandon(ctx context.Context, p Player, storyID int64) error {
	cursor, err := s.store.Get(ctx, p.SessionKey, storyID)
	if err != nil {
		return err
	}
	if cursor == nil {
		return ErrNoSession
	}
	return s.store.Delete(ctx, p.SessionKey, storyID)
}

// enter moves the cursor onto page. Reaching an ending records a Play (unless previewing)
// and ends the session.
func (s *gameplayService) enter(
	ctx context.Context,
	p Player,
	story *contentclient.Story,
	cursor *models.PlaySession,
	page *contentclient.Page,
	preview bool,
) (*PlayState, error) {
	cursor.CurrentPageID = page.ID
	cursor.Path = append(cursor.Path, page.ID)
	if p.Authenticated() {
		cursor.UserID = p.userPtr()
	}

	state := newState(story, cursor, page, preview)
	if !page.IsEnding {
		if err := s.store.Save(ctx, cursor); err != nil {
			return nil, err
		}
		return state, nil
	}

	if !preview {
		play := &models.Play{
			StoryID:      story.ID,
			EndingPageID: page.ID,
			UserID:       cursor.UserID,
			Path:         append([]int64(nil), cursor.Path...),
		}
		if err := s.plays.Create(ctx, play); err != nil {
			return nil, fmt.Errorf("record play: %w", err)
		}
		metrics.PlaysCompleted.Inc()
		state.PlayID = &play.ID
		s.logger.Info("Play completed",
			zap.Int64("story_id", story.ID),
			zap.Int64("ending_page_id", page.ID),
			zap.Int64("play_id", play.ID))
	}

	if err := s.store.Delete(ctx, p.SessionKey, story.ID); err != nil {
		return nil, err
	}
	return state, nil
}

func newState(story *contentclient.Story, cursor *models.PlaySession, page *contentclient.Page, preview bool) *PlayState {
	state := &PlayState{
		StoryID:    story.ID,
		StoryTitle: story.Title,
		Page:       page,
		Path:       append([]int64{}, cursor.Path...),
		Preview:    preview,
		IsEnding:   page.IsEnding,
	}
	if page.IsEnding {
		state.EndingLabel = page.EndingLabel
	}
	return state
}
