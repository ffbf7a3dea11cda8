package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guji3/ping/pkg/auth"
	"github.com/guji3/ping/pkg/response"
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
)

// JWTAuth rejects requests without a valid bearer token and stores the
// caller's identity in the gin context.
func JWTAuth(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.AbortError(c, http.StatusUnauthorized, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := manager.Parse(strings.TrimSpace(token))
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated user id, or 0 when unauthenticated.
func UserID(c *gin.Context) uint {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}
