package handler

import (
	"context"
	"net/http"
	"time"

	"storyhub/internal/microservices/content-api/dto"
	"storyhub/internal/microservices/content-api/service"

	"github.com/gin-gonic/gin"
)

type ChoiceHandler struct {
	svc service.ChoiceService
}

func NewChoiceHandler(svc service.ChoiceService) *ChoiceHandler {
	return &ChoiceHandler{svc: svc}
}

func (h *ChoiceHandler) RegisterRoutes(public, writes *gin.RouterGroup) {
	public.GET("/choices/:choice_id", h.Get)

	writes.POST("/pages/:page_id/choices", h.Create)
	writes.PUT("/choices/:choice_id", h.Update)
	writes.DELETE("/choices/:choice_id", h.Delete)
}

// Get GET /choices/:choice_id
func (h *ChoiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "choice_id", "choice")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	choice, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToChoiceResponse(choice))
}

// Create POST /pages/:page_id/choices
func (h *ChoiceHandler) Create(c *gin.Context) {
	pageID, ok := parseID(c, "page_id", "page")
	if !ok {
		return
	}

	var req dto.CreateChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	choice, err := h.svc.Create(ctx, pageID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"choice": dto.FromModelToChoiceResponse(choice)})
}

// Update PUT /choices/:choice_id
func (h *ChoiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "choice_id", "choice")
	if !ok {
		return
	}

	var req dto.UpdateChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	choice, err := h.svc.Update(ctx, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"choice": dto.FromModelToChoiceResponse(choice)})
}

// Delete DELETE /choices/:choice_id
func (h *ChoiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "choice_id", "choice")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Choice deleted successfully"})
}
