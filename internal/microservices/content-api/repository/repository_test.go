package repository

import (
	"context"
	"testing"

	"storyhub/internal/microservices/content-api/models"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GraphRepositorySuite struct {
	suite.Suite
	db      *gorm.DB
	ctx     context.Context
	stories StoryRepository
	pages   PageRepository
	choices ChoiceRepository
}

func TestGraphRepositorySuite(t *testing.T) {
	suite.Run(t, new(GraphRepositorySuite))
}

func (s *GraphRepositorySuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)

	sqlDB, err := db.DB()
	s.Require().NoError(err)
	// one connection keeps the in-memory database alive across queries
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(db.AutoMigrate(&models.Story{}, &models.Page{}, &models.Choice{}))

	s.db = db
	s.ctx = context.Background()
	s.stories = NewStoryRepository(db)
	s.pages = NewPageRepository(db)
	s.choices = NewChoiceRepository(db)
}

func (s *GraphRepositorySuite) TearDownTest() {
	sqlDB, _ := s.db.DB()
	sqlDB.Close()
}

func (s *GraphRepositorySuite) newStory(title, status string, tags ...string) *models.Story {
	story := &models.Story{Title: title, Status: status, Tags: tags, AuthorID: "author-1"}
	s.Require().NoError(s.stories.Create(s.ctx, story))
	return story
}

func (s *GraphRepositorySuite) newPage(storyID int64, text string) *models.Page {
	page := &models.Page{StoryID: storyID, Text: text}
	_, err := s.pages.Create(s.ctx, page)
	s.Require().NoError(err)
	return page
}

func (s *GraphRepositorySuite) TestFirstPageBecomesStartPage() {
	story := s.newStory("Cave", models.StatusDraft)

	first := &models.Page{StoryID: story.ID, Text: "You wake up."}
	becameStart, err := s.pages.Create(s.ctx, first)
	s.Require().NoError(err)
	s.True(becameStart)

	second := &models.Page{StoryID: story.ID, Text: "A tunnel."}
	becameStart, err = s.pages.Create(s.ctx, second)
	s.Require().NoError(err)
	s.False(becameStart)

	reloaded, err := s.stories.GetByID(s.ctx, story.ID)
	s.Require().NoError(err)
	s.Require().NotNil(reloaded.StartPageID)
	s.Equal(first.ID, *reloaded.StartPageID)
}

func (s *GraphRepositorySuite) TestCreatePageUnknownStory() {
	_, err := s.pages.Create(s.ctx, &models.Page{StoryID: 999, Text: "orphan"})
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *GraphRepositorySuite) TestChoiceMustStayInsideStory() {
	a := s.newStory("A", models.StatusDraft)
	b := s.newStory("B", models.StatusDraft)
	pa := s.newPage(a.ID, "a1")
	pa2 := s.newPage(a.ID, "a2")
	pb := s.newPage(b.ID, "b1")

	err := s.choices.Create(s.ctx, &models.Choice{PageID: pa.ID, Text: "cross", NextPageID: pb.ID})
	s.ErrorIs(err, ErrPageNotInStory)

	err = s.choices.Create(s.ctx, &models.Choice{PageID: pa.ID, Text: "nowhere", NextPageID: 12345})
	s.ErrorIs(err, ErrNextPageNotFound)

	err = s.choices.Create(s.ctx, &models.Choice{PageID: 12345, Text: "no source", NextPageID: pa2.ID})
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	ok := &models.Choice{PageID: pa.ID, Text: "go on", NextPageID: pa2.ID}
	s.Require().NoError(s.choices.Create(s.ctx, ok))
	s.NotZero(ok.ID)

	ok.NextPageID = pb.ID
	s.ErrorIs(s.choices.Update(s.ctx, ok), ErrPageNotInStory)
}

func (s *GraphRepositorySuite) TestStartPageMustBelongToStory() {
	a := s.newStory("A", models.StatusDraft)
	b := s.newStory("B", models.StatusDraft)
	s.newPage(a.ID, "a1")
	pb := s.newPage(b.ID, "b1")

	story, err := s.stories.GetByID(s.ctx, a.ID)
	s.Require().NoError(err)
	story.StartPageID = &pb.ID
	s.ErrorIs(s.stories.Update(s.ctx, story), ErrPageNotInStory)

	missing := int64(4242)
	story.StartPageID = &missing
	s.ErrorIs(s.stories.Update(s.ctx, story), ErrPageNotInStory)

	story.StartPageID = nil
	story.Title = "A, revised"
	s.Require().NoError(s.stories.Update(s.ctx, story))

	reloaded, err := s.stories.GetByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("A, revised", reloaded.Title)
	s.Nil(reloaded.StartPageID)
}

func (s *GraphRepositorySuite) TestDeletePageRemovesEdgesAndStart() {
	story := s.newStory("Forest", models.StatusPublished)
	start := s.newPage(story.ID, "start")
	end := s.newPage(story.ID, "end")
	s.Require().NoError(s.choices.Create(s.ctx, &models.Choice{PageID: start.ID, Text: "walk", NextPageID: end.ID}))
	s.Require().NoError(s.choices.Create(s.ctx, &models.Choice{PageID: end.ID, Text: "back", NextPageID: start.ID}))

	s.Require().NoError(s.pages.Delete(s.ctx, start.ID))

	var remaining int64
	s.db.Model(&models.Choice{}).Count(&remaining)
	s.Zero(remaining)

	reloaded, err := s.stories.GetByID(s.ctx, story.ID)
	s.Require().NoError(err)
	s.Nil(reloaded.StartPageID)

	s.ErrorIs(s.pages.Delete(s.ctx, start.ID), gorm.ErrRecordNotFound)
}

func (s *GraphRepositorySuite) TestDeleteStoryCascades() {
	story := s.newStory("Sea", models.StatusDraft)
	p1 := s.newPage(story.ID, "1")
	p2 := s.newPage(story.ID, "2")
	s.Require().NoError(s.choices.Create(s.ctx, &models.Choice{PageID: p1.ID, Text: "dive", NextPageID: p2.ID}))

	s.Require().NoError(s.stories.Delete(s.ctx, story.ID))

	var pages, choices int64
	s.db.Model(&models.Page{}).Count(&pages)
	s.db.Model(&models.Choice{}).Count(&choices)
	s.Zero(pages)
	s.Zero(choices)

	s.ErrorIs(s.stories.Delete(s.ctx, story.ID), gorm.ErrRecordNotFound)
}

func (s *GraphRepositorySuite) TestGetWithPagesOrdersGraph() {
	story := s.newStory("Tower", models.StatusPublished)
	p1 := s.newPage(story.ID, "bottom")
	p2 := s.newPage(story.ID, "top")
	s.Require().NoError(s.choices.Create(s.ctx, &models.Choice{PageID: p1.ID, Text: "climb", NextPageID: p2.ID}))

	loaded, err := s.stories.GetWithPages(s.ctx, story.ID)
	s.Require().NoError(err)
	s.Require().Len(loaded.Pages, 2)
	s.Equal(p1.ID, loaded.Pages[0].ID)
	s.Require().Len(loaded.Pages[0].Choices, 1)
	s.Equal(p2.ID, loaded.Pages[0].Choices[0].NextPageID)
	s.Empty(loaded.Pages[1].Choices)
}

func (s *GraphRepositorySuite) TestListFilters() {
	s.newStory("Dragon Keep", models.StatusPublished, "fantasy", "dragons")
	s.newStory("Space Station", models.StatusPublished, "scifi")
	s.newStory("Haunted Keep", models.StatusDraft, "horror", "fantasy")

	published, err := s.stories.List(s.ctx, StoryFilter{Status: models.StatusPublished})
	s.Require().NoError(err)
	s.Len(published, 2)

	keeps, err := s.stories.List(s.ctx, StoryFilter{Search: "KEEP"})
	s.Require().NoError(err)
	s.Len(keeps, 2)

	fantasy, err := s.stories.List(s.ctx, StoryFilter{Tags: []string{"fantasy"}})
	s.Require().NoError(err)
	s.Len(fantasy, 2)

	both, err := s.stories.List(s.ctx, StoryFilter{Tags: []string{"fantasy", "dragons"}})
	s.Require().NoError(err)
	s.Require().Len(both, 1)
	s.Equal("Dragon Keep", both[0].Title)

	mine, err := s.stories.List(s.ctx, StoryFilter{AuthorID: "someone-else"})
	s.Require().NoError(err)
	s.Empty(mine)
}

func (s *GraphRepositorySuite) TestListFiltersMatchLiterally() {
	s.newStory("Haunted Keep", models.StatusPublished, "horror")
	s.newStory("Alphabet", models.StatusPublished, "ab")
	s.newStory("Full Marks", models.StatusPublished, "100%")

	for _, tag := range []string{"%", "a_", "_", "h%r"} {
		found, err := s.stories.List(s.ctx, StoryFilter{Tags: []string{tag}})
		s.Require().NoError(err)
		s.Empty(found, "tag %q", tag)
	}

	exact, err := s.stories.List(s.ctx, StoryFilter{Tags: []string{"100%"}})
	s.Require().NoError(err)
	s.Require().Len(exact, 1)
	s.Equal("Full Marks", exact[0].Title)

	percent, err := s.stories.List(s.ctx, StoryFilter{Search: "%"})
	s.Require().NoError(err)
	s.Empty(percent)

	underscore, err := s.stories.List(s.ctx, StoryFilter{Search: "h_unted"})
	s.Require().NoError(err)
	s.Empty(underscore)
}

func (s *GraphRepositorySuite) TestUpdatePage() {
	story := s.newStory("Lab", models.StatusDraft)
	page := s.newPage(story.ID, "door")

	label := "Escaped"
	page.Text = "open door"
	page.IsEnding = true
	page.EndingLabel = &label
	s.Require().NoError(s.pages.Update(s.ctx, page))

	reloaded, err := s.pages.GetByID(s.ctx, page.ID)
	s.Require().NoError(err)
	s.True(reloaded.IsEnding)
	s.Require().NotNil(reloaded.EndingLabel)
	s.Equal("Escaped", *reloaded.EndingLabel)

	s.ErrorIs(s.pages.Update(s.ctx, &models.Page{ID: 999, Text: "x"}), gorm.ErrRecordNotFound)
}
