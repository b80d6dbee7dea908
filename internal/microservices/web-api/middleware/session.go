package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie    = "storyhub_session"
	SessionKeyHeader = "X-Session-Key"
	sessionMaxAge    = 30 * 24 * time.Hour
)

// SessionKey makes sure every request carries a play session key. Browsers get an HttpOnly
// cookie, other clients may send X-Session-Key. The key is echoed back in the same header.
func SessionKey(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(SessionKeyHeader)
		if !validKey(key) {
			key, _ = c.Cookie(SessionCookie)
		}
		if !validKey(key) {
			key = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, key, int(sessionMaxAge.Seconds()), "/", "", secureCookie, true)
		}

		c.Set("sessionKey", key)
		c.Header(SessionKeyHeader, key)
		c.Next()
	}
}

func validKey(key string) bool {
	if key == "" {
		return false
	}
	_, err := uuid.Parse(key)
	return err == nil
}
