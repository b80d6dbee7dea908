package authz

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequirePermission aborts unless the caller's role, set by the auth middleware as "role",
// is granted act on obj. Anonymous callers get 401 so clients know to log in.
func RequirePermission(e *Enforcer, obj, act string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")

		allowed, err := e.Allowed(role, obj, act)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "authorization failed"})
			c.Abort()
			return
		}
		if allowed {
			c.Next()
			return
		}

		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		} else {
			c.JSON(http.StatusForbidden, gin.H{
				"error":    "Insufficient permissions",
				"required": obj + ":" + act,
				"current":  role,
			})
		}
		c.Abort()
	}
}
