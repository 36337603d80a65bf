package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mauzo/sheets-gateway/log"
)

// Logger writes an access log entry for each request once it has been handled.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Infow(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client", c.ClientIP())
	}
}
