package handler

import (
	"context"
	"net/http"
	"time"

	"storyhub/internal/microservices/web-api/dto"
	"storyhub/internal/microservices/web-api/service"

	"github.com/gin-gonic/gin"
)

// globalStatsTimeout is longer than requestTimeout: the report fans out over every story.
const globalStatsTimeout = 30 * time.Second

type AdminHandler struct {
	users      service.UserService
	moderation service.ModerationService
	stats      service.StatsService
}

func NewAdminHandler(users service.UserService, moderation service.ModerationService, stats service.StatsService) *AdminHandler {
	return &AdminHandler{users: users, moderation: moderation, stats: stats}
}

// RegisterRoutes mounts the admin API. Each guard is the permission check for its area.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup, usersGuard, moderationGuard, statsGuard gin.HandlerFunc) {
	users := router.Group("/users", usersGuard)
	{
		users.GET("", h.ListUsers)
		users.PUT("/:user_id/role", h.ChangeRole)
	}

	moderation := router.Group("", moderationGuard)
	{
		moderation.GET("/reports", h.ListReports)
		moderation.PUT("/reports/:report_id", h.ReviewReport)
		moderation.POST("/stories/:story_id/suspend", h.Suspend)
		moderation.POST("/stories/:story_id/unsuspend", h.Unsuspend)
	}

	router.GET("/statistics", statsGuard, h.Statistics)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	users, total, err := h.users.List(ctx, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.FromModelToUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out, "total": total})
}

func (h *AdminHandler) ChangeRole(c *gin.Context) {
	var req dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.users.ChangeRole(ctx, viewerFrom(c), c.Param("user_id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// ListReports retrieves reports newest first
// GET /api/admin/reports?status=pending&page=1&page_size=20
func (h *AdminHandler) ListReports(c *gin.Context) {
	page, pageSize := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	reports, total, err := h.moderation.ListReports(ctx, c.Query("status"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, dto.FromModelToReportResponse(&reports[i]))
	}
	c.JSON(http.StatusOK, gin.H{"reports": out, "total": total})
}

func (h *AdminHandler) ReviewReport(c *gin.Context) {
	reportID, ok := parseID(c, "report_id", "report")
	if !ok {
		return
	}

	var req dto.ReviewReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	report, err := h.moderation.Review(ctx, viewerFrom(c), reportID, req.Status, req.ModeratorNotes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": dto.FromModelToReportResponse(report)})
}

func (h *AdminHandler) Suspend(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	story, err := h.moderation.Suspend(ctx, viewerFrom(c), storyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

func (h *AdminHandler) Unsuspend(c *gin.Context) {
	storyID, ok := parseID(c, "story_id", "story")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	story, err := h.moderation.Unsuspend(ctx, viewerFrom(c), storyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

func (h *AdminHandler) Statistics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), globalStatsTimeout)
	defer cancel()

	stats, err := h.stats.Global(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// History lists the caller's completed plays.
// GET /api/me/history
func (h *AdminHandler) History(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	history, err := h.stats.History(ctx, viewerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
