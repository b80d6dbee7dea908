package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storyhub/internal/microservices/content-api/dto"
	"storyhub/internal/microservices/content-api/repository"
	"storyhub/internal/microservices/content-api/service"

	"github.com/gin-gonic/gin"
)

type StoryHandler struct {
	svc service.StoryService
}

func NewStoryHandler(svc service.StoryService) *StoryHandler {
	return &StoryHandler{svc: svc}
}

// RegisterRoutes mounts reads on public and mutations on writes, which carries the API key check.
func (h *StoryHandler) RegisterRoutes(public, writes *gin.RouterGroup) {
	public.GET("/stories", h.List)
	public.GET("/stories/:story_id", h.Get)
	public.GET("/stories/:story_id/start", h.StartPage)
	public.GET("/stories/:story_id/tree", h.Tree)

	writes.POST("/stories", h.Create)
	writes.PUT("/stories/:story_id", h.Update)
	writes.DELETE("/stories/:story_id", h.Delete)
}

// List GET /stories?status=&search=&tags=&author_id=
func (h *StoryHandler) List(c *gin.Context) {
	var q dto.StoryFilter
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stories, err := h.svc.List(ctx, repository.StoryFilter{
		Status:   q.Status,
		Search:   q.Search,
		Tags:     dto.SplitTags(q.Tags),
		AuthorID: q.AuthorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stories": dto.FromModelsToStoryResponses(stories),
		"total":   len(stories),
	})
}

// Get GET /stories/:story_id?include_pages=true
func (h *StoryHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}
	includePages, _ := strconv.ParseBool(c.DefaultQuery("include_pages", "false"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	story, err := h.svc.Get(ctx, id, includePages)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.FromModelToStoryResponse(story)
	if includePages && resp.Pages == nil {
		resp.Pages = []dto.PageResponse{}
	}
	c.JSON(http.StatusOK, resp)
}

// StartPage GET /stories/:story_id/start
func (h *StoryHandler) StartPage(c *gin.Context) {
	id, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	pageID, err := h.svc.StartPage(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StartPageResponse{PageID: pageID})
}

// Tree GET /stories/:story_id/tree
func (h *StoryHandler) Tree(c *gin.Context) {
	id, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	tree, err := h.svc.Tree(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// Create POST /stories
func (h *StoryHandler) Create(c *gin.Context) {
	var req dto.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	story, err := h.svc.Create(ctx, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"story": dto.FromModelToStoryResponse(story)})
}

// Update PUT /stories/:story_id
func (h *StoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	var req dto.UpdateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	story, err := h.svc.Update(ctx, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": dto.FromModelToStoryResponse(story)})
}

// Delete DELETE /stories/:story_id
func (h *StoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Story deleted successfully"})
}
