package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouter_RecordsGroupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter("router_test", gin.Recovery())

	api := router.Group("/api/v1")
	api.GET("/stories", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"stories": []string{}}) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stories", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)

	var found bool
	for _, line := range strings.Split(string(body), "\n") {
		if strings.HasPrefix(line, "router_test_requests_total{") && strings.Contains(line, `url="/api/v1/stories"`) {
			found = true
			assert.True(t, strings.HasSuffix(line, " 3"), line)
		}
	}
	assert.True(t, found, "no request counter for /api/v1/stories")
}
