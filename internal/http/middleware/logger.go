package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger prints one line per request including request_id and the caller's role.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		role := c.GetString(userRoleKey)
		if role == "" {
			role = "-"
		}

		log.Printf("[HTTP] request_id=%s method=%s path=%s status=%d latency_ms=%.3f bytes=%d role=%s ip=%s",
			GetRequestID(c),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			float64(latency.Microseconds())/1000.0,
			c.Writer.Size(),
			role,
			c.ClientIP(),
		)
		for _, e := range c.Errors {
			log.Printf("[HTTP] request_id=%s error=%v", GetRequestID(c), e.Err)
		}
	}
}
