package handler

import (
	"storyhub/internal/microservices/web-api/authz"
	"storyhub/internal/microservices/web-api/middleware"
	"storyhub/internal/microservices/web-api/service"

	"github.com/gin-gonic/gin"
)

// Dependencies are the services and policies the web API routes are built from.
type Dependencies struct {
	Auth       service.AuthService
	Users      service.UserService
	Stories    service.StoryService
	Ratings    service.RatingService
	Gameplay   service.GameplayService
	Author     service.AuthorService
	Moderation service.ModerationService
	Stats      service.StatsService

	Enforcer *authz.Enforcer
	Health   *HealthHandler

	// AuthLimit throttles the token endpoints. Nil disables it.
	AuthLimit gin.HandlerFunc

	SecureCookie bool
}

// Register mounts every web API route on r.
func Register(r *gin.Engine, deps Dependencies) {
	if deps.Health != nil {
		r.GET("/health", deps.Health.Health)
	}

	perm := func(obj, act string) gin.HandlerFunc {
		return authz.RequirePermission(deps.Enforcer, obj, act)
	}

	api := r.Group("/api", middleware.OptionalAuth(deps.Auth))

	authHandler := NewAuthHandler(deps.Auth, deps.Users)
	if deps.AuthLimit != nil {
		authHandler.RegisterRoutes(api, deps.AuthLimit)
	} else {
		authHandler.RegisterRoutes(api)
	}

	adminHandler := NewAdminHandler(deps.Users, deps.Moderation, deps.Stats)

	me := api.Group("/me", middleware.RequireUser())
	{
		me.GET("", authHandler.Me)
		me.GET("/history", perm(authz.ObjHistory, authz.ActRead), adminHandler.History)
	}

	stories := api.Group("/stories", perm(authz.ObjStories, authz.ActRead))
	NewStoryHandler(deps.Stories, deps.Ratings, deps.Stats, deps.Moderation).
		RegisterRoutes(stories, perm(authz.ObjRatings, authz.ActWrite), perm(authz.ObjReports, authz.ActWrite))

	play := api.Group("/play/:story_id",
		middleware.SessionKey(deps.SecureCookie),
		perm(authz.ObjPlay, authz.ActWrite),
	)
	NewPlayHandler(deps.Gameplay).RegisterRoutes(play)

	author := api.Group("/author", perm(authz.ObjAuthoring, authz.ActWrite))
	NewAuthorHandler(deps.Author).RegisterRoutes(author)

	admin := api.Group("/admin", middleware.RequireUser())
	adminHandler.RegisterRoutes(admin,
		perm(authz.ObjUsers, authz.ActWrite),
		perm(authz.ObjModeration, authz.ActWrite),
		perm(authz.ObjStatistics, authz.ActRead),
	)
}
