package service

import (
	"testing"

	"storyhub/internal/microservices/web-api/contentclient"
	"storyhub/internal/microservices/web-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// finish walks the cave to the treasure or the trap.
func finish(t *testing.T, f *fixture, c *cave, p Player, treasure bool) {
	t.Helper()
	svc := f.gameplay()
	_, err := svc.Start(f.ctx, p, c.story.ID, false)
	require.NoError(t, err)
	first, second := c.goRight.ID, c.rightOn.ID
	if treasure {
		first, second = c.goLeft.ID, c.leftOn.ID
	}
	_, err = svc.Choose(f.ctx, p, c.story.ID, first)
	require.NoError(t, err)
	state, err := svc.Choose(f.ctx, p, c.story.ID, second)
	require.NoError(t, err)
	require.True(t, state.IsEnding)
}

func TestStatsService_StoryStats(t *testing.T) {
	f := newFixture(t)
	c := f.seedCave("author-id")
	reader := f.user(t, "reader", models.RoleReader)

	finish(t, f, c, Player{Viewer: reader, SessionKey: "a"}, true)
	finish(t, f, c, Player{Viewer: reader, SessionKey: "a"}, true)
	finish(t, f, c, Player{SessionKey: "b"}, false)

	svc := NewStatsService(f.content, f.plays, f.users, 2, zap.NewNop())
	stats, err := svc.StoryStats(f.ctx, Viewer{}, c.story.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalPlays)
	require.Len(t, stats.EndingStats, 2)
	assert.Equal(t, EndingStat{EndingPageID: c.treasure.ID, EndingLabel: "Rich", Count: 2, Percentage: 66.7}, stats.EndingStats[0])
	assert.Equal(t, EndingStat{EndingPageID: c.trap.ID, EndingLabel: "Fallen", Count: 1, Percentage: 33.3}, stats.EndingStats[1])

	empty := f.content.addStory("Quiet", contentclient.StatusPublished, "author-id")
	stats, err = svc.StoryStats(f.ctx, Viewer{}, empty.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPlays)
	assert.Empty(t, stats.EndingStats)

	draft := f.content.addStory("Hidden", contentclient.StatusDraft, "author-id")
	_, err = svc.StoryStats(f.ctx, Viewer{}, draft.ID)
	assert.ErrorIs(t, err, ErrStoryNotFound)
}

func TestStatsService_Global(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a", models.RoleReader)
	b := f.user(t, "b", models.RoleReader)
	first := f.seedCave("author-id")
	second := f.seedCave("author-id")
	f.content.addStory("Unplayed", contentclient.StatusPublished, "author-id")

	finish(t, f, first, Player{Viewer: a, SessionKey: "a"}, true)
	finish(t, f, first, Player{Viewer: b, SessionKey: "b"}, false)
	finish(t, f, first, Player{SessionKey: "anon"}, false)
	finish(t, f, second, Player{Viewer: a, SessionKey: "a"}, true)

	global, err := NewStatsService(f.content, f.plays, f.users, 3, zap.NewNop()).Global(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, global.TotalPlays)
	assert.EqualValues(t, 2, global.TotalUsers)
	assert.Equal(t, 3, global.TotalStories)

	byID := map[int64]StoryActivity{}
	for _, s := range global.Stories {
		byID[s.StoryID] = s
	}
	assert.EqualValues(t, 3, byID[first.story.ID].TotalPlays)
	assert.EqualValues(t, 2, byID[first.story.ID].UniquePlayers)
	require.Len(t, byID[first.story.ID].Endings, 2)
	assert.Equal(t, "Fallen", byID[first.story.ID].Endings[0].EndingLabel)
	assert.EqualValues(t, 1, byID[second.story.ID].TotalPlays)
	assert.Len(t, byID[second.story.ID].Endings, 1)
}

func TestStatsService_History(t *testing.T) {
	f := newFixture(t)
	reader := f.user(t, "reader", models.RoleReader)
	c := f.seedCave("author-id")
	p := Player{Viewer: reader, SessionKey: "s"}

	finish(t, f, c, p, true)
	finish(t, f, c, p, true)
	finish(t, f, c, p, false)

	history, err := NewStatsService(f.content, f.plays, f.users, 1, zap.NewNop()).History(f.ctx, reader)
	require.NoError(t, err)
	assert.Equal(t, 3, history.TotalPlays)
	assert.Equal(t, 1, history.UniqueStories)
	assert.Equal(t, 2, history.UniqueEndings)
	require.Len(t, history.Plays, 3)
	assert.Equal(t, "Fallen", history.Plays[0].EndingLabel)
	assert.Equal(t, "The Cave", history.Plays[0].StoryTitle)

	require.NoError(t, f.content.DeleteStory(f.ctx, c.story.ID))
	history, err = NewStatsService(f.content, f.plays, f.users, 1, zap.NewNop()).History(f.ctx, reader)
	require.NoError(t, err)
	assert.Equal(t, "", history.Plays[0].StoryTitle)
	assert.Equal(t, 3, history.TotalPlays, "plays of deleted stories stay listed")
	assert.Zero(t, history.UniqueStories)
	assert.Zero(t, history.UniqueEndings)
}

func TestStatsService_HistorySkipsDeletedStoriesInCounts(t *testing.T) {
	f := newFixture(t)
	reader := f.user(t, "reader", models.RoleReader)
	kept := f.seedCave("author-id")
	gone := f.seedCave("author-id")
	p := Player{Viewer: reader, SessionKey: "s"}

	finish(t, f, kept, p, true)
	finish(t, f, gone, p, true)
	finish(t, f, gone, p, false)
	require.NoError(t, f.content.DeleteStory(f.ctx, gone.story.ID))

	history, err := NewStatsService(f.content, f.plays, f.users, 1, zap.NewNop()).History(f.ctx, reader)
	require.NoError(t, err)
	assert.Equal(t, 3, history.TotalPlays)
	assert.Equal(t, 1, history.UniqueStories)
	assert.Equal(t, 1, history.UniqueEndings)
}
