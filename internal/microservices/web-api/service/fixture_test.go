package service

import (
	"context"
	"testing"
	"time"

	"storyhub/internal/microservices/web-api/contentclient"
	"storyhub/internal/microservices/web-api/models"
	"storyhub/internal/microservices/web-api/repository"
	"storyhub/internal/microservices/web-api/session"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	ctx      context.Context
	content  *fakeContent
	users    repository.UserRepository
	tokens   repository.RefreshTokenRepository
	ratings  repository.RatingRepository
	plays    repository.PlayRepository
	sessions repository.PlaySessionRepository
	reports  repository.ReportRepository
	store    session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.RefreshToken{}, &models.Rating{},
		&models.Play{}, &models.PlaySession{}, &models.Report{},
	))

	sessions := repository.NewPlaySessionRepository(db)
	return &fixture{
		ctx:      context.Background(),
		content:  newFakeContent(),
		users:    repository.NewUserRepository(db),
		tokens:   repository.NewRefreshTokenRepository(db),
		ratings:  repository.NewRatingRepository(db),
		plays:    repository.NewPlayRepository(db),
		sessions: sessions,
		reports:  repository.NewReportRepository(db),
		store:    session.NewHybridStore(nil, sessions, zap.NewNop()),
	}
}

func (f *fixture) user(t *testing.T, name, role string) Viewer {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Password: "hash", Role: role}
	require.NoError(t, f.users.Create(f.ctx, u))
	return Viewer{UserID: u.ID, Role: role}
}

func (f *fixture) auth() AuthService {
	return NewAuthService(f.users, f.tokens, "test-secret-0123456789", 15*time.Minute, time.Hour, zap.NewNop())
}

func (f *fixture) gameplay() GameplayService {
	return NewGameplayService(f.content, f.store, f.plays, zap.NewNop())
}

// cave seeds a published story:
//
//	entrance -> left -> treasure (ending)
//	entrance -> right -> trap (ending)
type cave struct {
	story                                 *contentclient.Story
	entrance, left, right, treasure, trap *contentclient.Page
	goLeft, goRight, leftOn, rightOn      *contentclient.Choice
}

func (f *fixture) seedCave(authorID string) *cave {
	c := &cave{story: f.content.addStory("The Cave", contentclient.StatusPublished, authorID)}
	c.entrance = f.content.addPage(c.story.ID, "You stand at the mouth of a cave.", false, "")
	c.left = f.content.addPage(c.story.ID, "A narrow tunnel.", false, "")
	c.right = f.content.addPage(c.story.ID, "A wide hall.", false, "")
	c.treasure = f.content.addPage(c.story.ID, "Gold!", true, "Rich")
	c.trap = f.content.addPage(c.story.ID, "The floor gives way.", true, "Fallen")
	c.goLeft = f.content.addChoice(c.entrance.ID, c.left.ID, "Go left")
	c.goRight = f.content.addChoice(c.entrance.ID, c.right.ID, "Go right")
	c.leftOn = f.content.addChoice(c.left.ID, c.treasure.ID, "Keep going")
	c.rightOn = f.content.addChoice(c.right.ID, c.trap.ID, "Keep going")
	return c
}
