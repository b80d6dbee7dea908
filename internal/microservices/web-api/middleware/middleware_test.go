package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storyhub/internal/microservices/web-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func setupRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetString("userID"),
			"role":        c.GetString("role"),
			"session_key": c.GetString("sessionKey"),
		})
	})
	return r
}

func get(r http.Handler, header map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	v := new(MockValidator)
	v.On("ValidateToken", "good").Return(&service.Claims{UserID: "u-1", Role: "author"}, nil)
	v.On("ValidateToken", "old").Return(nil, service.ErrExpiredToken)
	v.On("ValidateToken", "bad").Return(nil, service.ErrInvalidToken)
	r := setupRouter(AuthMiddleware(v))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid authorization header format"},
		{"expired", "Bearer old", http.StatusUnauthorized, "token has expired"},
		{"invalid", "Bearer bad", http.StatusUnauthorized, "invalid token"},
		{"valid", "Bearer good", http.StatusOK, `"role":"author"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := map[string]string{}
			if tt.header != "" {
				h["Authorization"] = tt.header
			}
			w := get(r, h)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	v := new(MockValidator)
	v.On("ValidateToken", "good").Return(&service.Claims{UserID: "u-1", Role: "reader"}, nil)
	v.On("ValidateToken", "bad").Return(nil, service.ErrInvalidToken)
	r := setupRouter(OptionalAuth(v))

	w := get(r, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)

	w = get(r, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u-1"`)

	w = get(r, map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionKey(t *testing.T) {
	r := setupRouter(SessionKey(false))

	w := get(r, nil)
	require.Equal(t, http.StatusOK, w.Code)
	issued := w.Header().Get(SessionKeyHeader)
	assert.True(t, validKey(issued))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, issued, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	w = get(r, nil, &http.Cookie{Name: SessionCookie, Value: issued})
	assert.Equal(t, issued, w.Header().Get(SessionKeyHeader))
	assert.Empty(t, w.Result().Cookies(), "existing cookie is reused")

	header := "0b7e6f4a-8f5e-4a43-9a53-1c0a7d0e5b11"
	w = get(r, map[string]string{SessionKeyHeader: header})
	assert.Equal(t, header, w.Header().Get(SessionKeyHeader))

	w = get(r, map[string]string{SessionKeyHeader: "not-a-uuid"})
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(SessionKeyHeader))
}

func TestRequireUser(t *testing.T) {
	v := new(MockValidator)
	v.On("ValidateToken", "good").Return(&service.Claims{UserID: "u-1", Role: "reader"}, nil)
	r := setupRouter(OptionalAuth(v), RequireUser())

	assert.Equal(t, http.StatusUnauthorized, get(r, nil).Code)
	assert.Equal(t, http.StatusOK, get(r, map[string]string{"Authorization": "Bearer good"}).Code)
}
