package handler

import (
	"context"
	"net/http"
	"time"

	"storyhub/internal/microservices/content-api/dto"
	"storyhub/internal/microservices/content-api/service"

	"github.com/gin-gonic/gin"
)

type PageHandler struct {
	svc service.PageService
}

func NewPageHandler(svc service.PageService) *PageHandler {
	return &PageHandler{svc: svc}
}

func (h *PageHandler) RegisterRoutes(public, writes *gin.RouterGroup) {
	public.GET("/stories/:story_id/pages", h.ListByStory)
	public.GET("/pages/:page_id", h.Get)

	writes.POST("/stories/:story_id/pages", h.Create)
	writes.PUT("/pages/:page_id", h.Update)
	writes.DELETE("/pages/:page_id", h.Delete)
}

// ListByStory GET /stories/:story_id/pages
func (h *PageHandler) ListByStory(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	pages, err := h.svc.ListByStory(ctx, storyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": dto.FromModelsToPageResponses(pages)})
}

// Get GET /pages/:page_id
func (h *PageHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "page_id", "page")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToPageResponse(page))
}

// Create POST /stories/:story_id/pages
func (h *PageHandler) Create(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	var req dto.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, err := h.svc.Create(ctx, storyID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"page": dto.FromModelToPageResponse(page)})
}

// Update PUT /pages/:page_id
func (h *PageHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "page_id", "page")
	if !ok {
		return
	}

	var req dto.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, err := h.svc.Update(ctx, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": dto.FromModelToPageResponse(page)})
}

// Delete DELETE /pages/:page_id
func (h *PageHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "page_id", "page")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Page deleted successfully"})
}
