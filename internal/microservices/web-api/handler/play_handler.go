package handler

import (
	"context"
	"errors"
	"net/http"

	"storyhub/internal/microservices/web-api/dto"
	"storyhub/internal/microservices/web-api/service"

	"github.com/gin-gonic/gin"
)

type PlayHandler struct {
	gameplay service.GameplayService
}

func NewPlayHandler(gameplay service.GameplayService) *PlayHandler {
	return &PlayHandler{gameplay: gameplay}
}

// RegisterRoutes expects router to be the /play/:story_id group with a session key set.
func (h *PlayHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/start", h.Start)
	router.GET("/pages/:page_id", h.Visit)
	router.POST("/choose", h.Choose)
	router.GET("/session", h.Current)
	router.DELETE("/session", h.Abandon)
}

func playerFrom(c *gin.Context) service.Player {
	return service.Player{
		Viewer:     viewerFrom(c),
		SessionKey: c.GetString("sessionKey"),
		Preview:    c.Query("preview") == "true",
	}
}

// Start begins or resumes a walk.
// POST /api/play/:story_id/start?resume=false&preview=true
func (h *PlayHandler) Start(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}
	resume := c.DefaultQuery("resume", "true") != "false"

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	state, err := h.gameplay.Start(ctx, playerFrom(c), storyID, resume)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *PlayHandler) Visit(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}
	pageID, ok := parseID(c, "page_id", "page")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	state, err := h.gameplay.Visit(ctx, playerFrom(c), storyID, pageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *PlayHandler) Choose(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	var req dto.ChooseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	state, err := h.gameplay.Choose(ctx, playerFrom(c), storyID, req.ChoiceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Current returns the saved cursor, 404 when there is none.
func (h *PlayHandler) Current(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	state, err := h.gameplay.Current(ctx, playerFrom(c), storyID)
	if errors.Is(err, service.ErrNoSession) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *PlayHandler) Abandon(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	err := h.gameplay.Abandon(ctx, playerFrom(c), storyID)
	if errors.Is(err, service.ErrNoSession) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Play session abandoned"})
}
