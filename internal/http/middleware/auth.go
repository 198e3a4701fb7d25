package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/services"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// TokenParser validates a raw bearer token.
type TokenParser interface {
	ParseToken(raw string) (services.Claims, error)
}

func abortAuth(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       code,
		"request_id": GetRequestID(c),
	})
}

// RequireAuth checks the Authorization bearer token and stores the caller's
// id and role on the context.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := parser.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRoles only lets through callers whose role is in allowedRoles.
// RequireAuth must run first.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := strings.ToLower(strings.TrimSpace(c.GetString(userRoleKey)))
		if role == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "no role on request")
			return
		}
		if _, ok := allowed[role]; !ok {
			abortAuth(c, http.StatusForbidden, "forbidden", "role not allowed")
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated caller's id, empty when anonymous.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
