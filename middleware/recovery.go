package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/mauzo/sheets-gateway/log"
)

// Recovery recovers from panics in later handlers, logs the panic with a stack trace and
// returns 500 without exposing any detail to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw(c.Request.Context(), "panic",
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"error", r,
					"stack", string(debug.Stack()))

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()

		c.Next()
	}
}
