package handler

import (
	"context"
	"net/http"

	"storyhub/internal/microservices/web-api/dto"
	"storyhub/internal/microservices/web-api/service"

	"github.com/gin-gonic/gin"
)

type AuthorHandler struct {
	author service.AuthorService
}

func NewAuthorHandler(author service.AuthorService) *AuthorHandler {
	return &AuthorHandler{author: author}
}

func (h *AuthorHandler) RegisterRoutes(router *gin.RouterGroup) {
	stories := router.Group("/stories")
	{
		stories.GET("", h.MyStories)
		stories.POST("", h.CreateStory)
		stories.PUT("/:story_id", h.UpdateStory)
		stories.DELETE("/:story_id", h.DeleteStory)
		stories.PUT("/:story_id/start-page", h.SetStartPage)
		stories.GET("/:story_id/tree", h.Tree)
		stories.POST("/:story_id/pages", h.AddPage)
	}

	pages := router.Group("/pages")
	{
		pages.PUT("/:page_id", h.UpdatePage)
		pages.DELETE("/:page_id", h.DeletePage)
		pages.POST("/:page_id/choices", h.AddChoice)
	}

	choices := router.Group("/choices")
	{
		choices.PUT("/:choice_id", h.UpdateChoice)
		choices.DELETE("/:choice_id", h.DeleteChoice)
	}
}

func (h *AuthorHandler) MyStories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	stories, err := h.author.MyStories(ctx, viewerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories, "total": len(stories)})
}

func (h *AuthorHandler) CreateStory(c *gin.Context) {
	var req dto.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	story, err := h.author.CreateStory(ctx, viewerFrom(c), req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"story": story})
}

func (h *AuthorHandler) UpdateStory(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	var req dto.UpdateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	story, err := h.author.UpdateStory(ctx, viewerFrom(c), storyID, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

func (h *AuthorHandler) DeleteStory(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.author.DeleteStory(ctx, viewerFrom(c), storyID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Story deleted successfully"})
}

func (h *AuthorHandler) SetStartPage(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	var req dto.SetStartPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	story, err := h.author.SetStartPage(ctx, viewerFrom(c), storyID, req.PageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

func (h *AuthorHandler) Tree(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	tree, err := h.author.Tree(ctx, viewerFrom(c), storyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *AuthorHandler) AddPage(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	var req dto.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page, err := h.author.AddPage(ctx, viewerFrom(c), storyID, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"page": page})
}

func (h *AuthorHandler) UpdatePage(c *gin.Context) {
	pageID, ok := parseID(c, "page_id", "page")
	if !ok {
		return
	}

	var req dto.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page, err := h.author.UpdatePage(ctx, viewerFrom(c), pageID, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page})
}

func (h *AuthorHandler) DeletePage(c *gin.Context) {
	pageID, ok := parseID(c, "page_id", "page")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.author.DeletePage(ctx, viewerFrom(c), pageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Page deleted successfully"})
}

func (h *AuthorHandler) AddChoice(c *gin.Context) {
	pageID, ok := parseID(c, "page_id", "page")
	if !ok {
		return
	}

	var req dto.CreateChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	choice, err := h.author.AddChoice(ctx, viewerFrom(c), pageID, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"choice": choice})
}

func (h *AuthorHandler) UpdateChoice(c *gin.Context) {
	choiceID, ok := parseID(c, "choice_id", "choice")
	if !ok {
		return
	}

	var req dto.UpdateChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	choice, err := h.author.UpdateChoice(ctx, viewerFrom(c), choiceID, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"choice": choice})
}

func (h *AuthorHandler) DeleteChoice(c *gin.Context) {
	choiceID, ok := parseID(c, "choice_id", "choice")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.author.DeleteChoice(ctx, viewerFrom(c), choiceID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Choice deleted successfully"})
}
