package service

import (
	"context"
	"fmt"
	"time"

	"storyhub/internal/microservices/web-api/contentclient"
	"storyhub/internal/microservices/web-api/repository"
	"storyhub/internal/workerpool"

	"go.uber.org/zap"
)

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

type StoryActivity struct {
	StoryID       int64        `json:"story_id"`
	Title         string       `json:"title"`
	TotalPlays    int64        `json:"total_plays"`
	UniquePlayers int64        `json:"unique_players"`
	Endings       []EndingStat `json:"endings"`
}

type GlobalStats struct {
	TotalPlays   int64           `json:"total_plays"`
	TotalUsers   int64           `json:"total_users"`
	TotalStories int             `json:"total_stories"`
	Stories      []StoryActivity `json:"stories"`
}

type HistoryEntry struct {
	PlayID       int64     `json:"play_id"`
	StoryID      int64     `json:"story_id"`
	StoryTitle   string    `json:"story_title"`
	EndingPageID int64     `json:"ending_page_id"`
	EndingLabel  string    `json:"ending_label"`
	Path         []int64   `json:"path"`
	CreatedAt    time.Time `json:"created_at"`
}

type History struct {
	Plays         []HistoryEntry `json:"plays"`
	TotalPlays    int            `json:"total_plays"`
	UniqueStories int            `json:"unique_stories"`
	UniqueEndings int            `json:"unique_endings"`
}

type StatsService interface {
	StoryStats(ctx context.Context, viewer Viewer, storyID int64) (*StoryStats, error)
	Global(ctx context.Context) (*GlobalStats, error)
	History(ctx context.Context, viewer Viewer) (*History, error)
}

type statsService struct {
	content contentclient.API
	plays   repository.PlayRepository
	users   repository.UserRepository
	workers int
	logger  *zap.Logger
}

func NewStatsService(
	content contentclient.API,
	plays repository.PlayRepository,
	users repository.UserRepository,
	workers int,
	logger *zap.Logger,
) StatsService {
	return &statsService{content: content, plays: plays, users: users, workers: workers, logger: logger}
}

func (s *statsService) StoryStats(ctx context.Context, viewer Viewer, storyID int64) (*StoryStats, error) {
	story, err := s.content.GetStory(ctx, storyID, true)
	if err != nil {
		return nil, mapContent(err, ErrStoryNotFound, "get story")
	}
	if !viewer.CanSee(story) {
		return nil, ErrStoryNotFound
	}

	endings, total, err := s.endingStats(ctx, story)
	if err != nil {
		return nil, err
	}
	return &StoryStats{StoryID: story.ID, Title: story.Title, TotalPlays: total, EndingStats: endings}, nil
}

// endingStats counts plays per ending page, most reached first, labelled from story.Pages.
func (s *statsService) endingStats(ctx context.Context, story *contentclient.Story) ([]EndingStat, int64, error) {
	counts, err := s.plays.CountByEnding(ctx, story.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("count endings: %w", err)
	}

	labels := make(map[int64]string, len(story.Pages))
	for i := range story.Pages {
		labels[story.Pages[i].ID] = story.Pages[i].Label()
	}

	var total int64
	for _, c := range counts {
		total += c.Count
	}

	stats := make([]EndingStat, 0, len(counts))
	for _, c := range counts {
		stats = append(stats, EndingStat{
			EndingPageID: c.EndingPageID,
			EndingLabel:  labels[c.EndingPageID],
			Count:        c.Count,
			Percentage:   round1(float64(c.Count) * 100 / float64(total)),
		})
	}
	return stats, total, nil
}

// Global aggregates every published story. Per-story ending breakdowns need one content
// round trip each and are fetched on a worker pool.
func (s *statsService) Global(ctx context.Context) (*GlobalStats, error) {
	stories, err := s.content.ListStories(ctx, contentclient.StoryQuery{Status: contentclient.StatusPublished})
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}

	ids := make([]int64, len(stories))
	for i, st := range stories {
		ids[i] = st.ID
	}
	totals, err := s.plays.TotalsByStory(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("play totals: %w", err)
	}

	activity := make([]StoryActivity, len(stories))
	pool := workerpool.New(ctx, s.workers, s.logger.Named("stats-pool"))
	pool.Start()
	for i, st := range stories {
		activity[i] = StoryActivity{
			StoryID:       st.ID,
			Title:         st.Title,
			TotalPlays:    totals[st.ID].TotalPlays,
			UniquePlayers: totals[st.ID].UniquePlayers,
			Endings:       []EndingStat{},
		}
		if totals[st.ID].TotalPlays == 0 {
			continue
		}

		row := &activity[i]
		storyID := st.ID
		task := func(ctx context.Context) error {
			full, err := s.content.GetStory(ctx, storyID, true)
			if err != nil {
				return fmt.Errorf("story %d: %w", storyID, err)
			}
			endings, _, err := s.endingStats(ctx, full)
			if err != nil {
				return err
			}
			row.Endings = endings
			return nil
		}
		if err := pool.Submit(task); err != nil {
			_ = pool.Shutdown()
			return nil, err
		}
	}
	if err := pool.Wait(); err != nil {
		return nil, fmt.Errorf("ending breakdown: %w", err)
	}

	totalPlays, err := s.plays.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count plays: %w", err)
	}
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	return &GlobalStats{
		TotalPlays:   totalPlays,
		TotalUsers:   totalUsers,
		TotalStories: len(stories),
		Stories:      activity,
	}, nil
}

// History lists the viewer's plays newest first. The unique counters only cover stories and
// ending pages that still exist.
func (s *statsService) History(ctx context.Context, viewer Viewer) (*History, error) {
	plays, err := s.plays.ListByUser(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("list plays: %w", err)
	}

	stories := make(map[int64]*contentclient.Story)
	type ending struct{ story, page int64 }
	endings := make(map[ending]struct{})
	played := make(map[int64]struct{})

	entries := make([]HistoryEntry, 0, len(plays))
	for _, p := range plays {
		story, seen := stories[p.StoryID]
		if !seen {
			story, err = s.content.GetStory(ctx, p.StoryID, true)
			if err != nil {
				if !contentclient.IsNotFound(err) {
					return nil, fmt.Errorf("get story %d: %w", p.StoryID, err)
				}
				story = nil
			}
			stories[p.StoryID] = story
		}

		entry := HistoryEntry{
			PlayID:       p.ID,
			StoryID:      p.StoryID,
			EndingPageID: p.EndingPageID,
			Path:         []int64(p.Path),
			CreatedAt:    p.CreatedAt,
		}
		if story != nil {
			entry.StoryTitle = story.Title
			played[p.StoryID] = struct{}{}
			for i := range story.Pages {
				if story.Pages[i].ID == p.EndingPageID {
					entry.EndingLabel = story.Pages[i].Label()
					endings[ending{p.StoryID, p.EndingPageID}] = struct{}{}
					break
				}
			}
		}
		entries = append(entries, entry)
	}

	return &History{
		Plays:         entries,
		TotalPlays:    len(entries),
		UniqueStories: len(played),
		UniqueEndings: len(endings),
	}, nil
}
