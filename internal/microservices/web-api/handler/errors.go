package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storyhub/internal/microservices/web-api/contentclient"
	"storyhub/internal/microservices/web-api/service"

	"github.com/gin-gonic/gin"
)

// requestTimeout bounds every handler, content API round trips included.
const requestTimeout = 10 * time.Second

func parseID(c *gin.Context, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label + " ID"})
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

func viewerFrom(c *gin.Context) service.Viewer {
	return service.Viewer{UserID: c.GetString("userID"), Role: c.GetString("role")}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrStoryNotFound),
		errors.Is(err, service.ErrPageNotFound),
		errors.Is(err, service.ErrChoiceNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRatingNotFound),
		errors.Is(err, service.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNameInUse),
		errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrNoStartPage),
		errors.Is(err, service.ErrNoSession):
		return http.StatusConflict
	case errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrCannotChangeOwnRole),
		errors.Is(err, service.ErrChoiceNotOnPage),
		errors.Is(err, service.ErrInvalidStatusChange),
		errors.Is(err, service.ErrStoryNotPublished),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidReason),
		errors.Is(err, service.ErrInvalidReportStatus):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrStorySuspended):
		return http.StatusForbidden
	case errors.Is(err, contentclient.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return 0
}

// respondError maps service and content API errors onto HTTP answers. Client errors from the
// content API (a cross-story edge, a bad start page) are passed through unchanged.
func respondError(c *gin.Context, err error) {
	if status := statusFor(err); status != 0 {
		msg := err.Error()
		if status == http.StatusServiceUnavailable {
			msg = "content service unavailable"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	var apiErr *contentclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
