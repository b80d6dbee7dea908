package handler

import (
	"errors"
	"net/http"
	"strconv"

	"storyhub/internal/microservices/content-api/service"

	"github.com/gin-gonic/gin"
)

// parseID reads a positive int64 path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label + " ID"})
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStoryNotFound),
		errors.Is(err, service.ErrPageNotFound),
		errors.Is(err, service.ErrChoiceNotFound),
		errors.Is(err, service.ErrNoStartPage):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStartPageNotInStory),
		errors.Is(err, service.ErrNextPageNotFound),
		errors.Is(err, service.ErrNextPageNotInStory),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrTextRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
