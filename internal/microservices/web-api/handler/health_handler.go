package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger func(ctx context.Context) error

// HealthHandler reports the state of the web API's dependencies. Database and Redis are
// required; the content API only degrades the answer since cached sessions still resolve.
type HealthHandler struct {
	database Pinger
	redis    Pinger
	content  Pinger
}

func NewHealthHandler(database, redis, content Pinger) *HealthHandler {
	return &HealthHandler{database: database, redis: redis, content: content}
}

func check(ctx context.Context, ping Pinger) string {
	if ping == nil {
		return "disabled"
	}
	if err := ping(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}

// Health GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{
		"database":    check(ctx, h.database),
		"redis":       check(ctx, h.redis),
		"content_api": check(ctx, h.content),
	}

	status, code := "ok", http.StatusOK
	if checks["content_api"] != "ok" && checks["content_api"] != "disabled" {
		status = "degraded"
	}
	for _, name := range []string{"database", "redis"} {
		if v := checks[name]; v != "ok" && v != "disabled" {
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{"status": status, "checks": checks})
}
