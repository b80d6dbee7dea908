package handler

import (
	"context"
	"net/http"
	"strings"

	"storyhub/internal/microservices/web-api/dto"
	"storyhub/internal/microservices/web-api/service"

	"github.com/gin-gonic/gin"
)

// StoryHandler serves the public catalogue: browsing, stats, ratings and reports.
type StoryHandler struct {
	stories    service.StoryService
	ratings    service.RatingService
	stats      service.StatsService
	moderation service.ModerationService
}

func NewStoryHandler(
	stories service.StoryService,
	ratings service.RatingService,
	stats service.StatsService,
	moderation service.ModerationService,
) *StoryHandler {
	return &StoryHandler{stories: stories, ratings: ratings, stats: stats, moderation: moderation}
}

// RegisterRoutes mounts the catalogue. rate and report guard the write routes.
func (h *StoryHandler) RegisterRoutes(router *gin.RouterGroup, rate, report gin.HandlerFunc) {
	router.GET("", h.List)
	router.GET("/:story_id", h.Get)
	router.GET("/:story_id/stats", h.Stats)
	router.GET("/:story_id/ratings", h.ListRatings)

	router.PUT("/:story_id/rating", rate, h.Rate)
	router.DELETE("/:story_id/rating", rate, h.DeleteRating)
	router.GET("/:story_id/rating/me", rate, h.MyRating)

	router.POST("/:story_id/reports", report, h.Report)
}

// List returns published stories.
// GET /api/stories?search=&tags=a,b
func (h *StoryHandler) List(c *gin.Context) {
	var tags []string
	if raw := c.Query("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				tags = append(tags, t)
			}
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	stories, err := h.stories.List(ctx, strings.TrimSpace(c.Query("search")), tags)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories, "total": len(stories)})
}

func (h *StoryHandler) Get(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	view, err := h.stories.Get(ctx, viewerFrom(c), storyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *StoryHandler) Stats(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	stats, err := h.stats.StoryStats(ctx, viewerFrom(c), storyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Rate creates or replaces the caller's rating
// PUT /api/stories/:story_id/rating
func (h *StoryHandler) Rate(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	var req dto.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	rating, err := h.ratings.Rate(ctx, viewerFrom(c), storyID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToRatingResponse(rating))
}

func (h *StoryHandler) DeleteRating(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.ratings.Delete(ctx, viewerFrom(c), storyID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating deleted successfully"})
}

func (h *StoryHandler) MyRating(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	rating, err := h.ratings.Mine(ctx, viewerFrom(c), storyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToRatingResponse(rating))
}

// ListRatings retrieves ratings with pagination
// GET /api/stories/:story_id/ratings?page=1&page_size=20
func (h *StoryHandler) ListRatings(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	result, err := h.ratings.List(ctx, viewerFrom(c), storyID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedRatingResponse(result))
}

func (h *StoryHandler) Report(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	report, err := h.moderation.Report(ctx, viewerFrom(c), storyID, req.Reason, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": dto.FromModelToReportResponse(report)})
}
