package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const allowedMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"

// CORS returns gin middleware that permits cross-origin requests from the allowed origins.
// An origin of "*" (or an empty list) permits requests from any origin. Preflight OPTIONS
// requests are answered with 204 and do not reach the routes.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	anyOrigin := len(allowedOrigins) == 0
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			anyOrigin = true
		}

		origins[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if anyOrigin {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if _, ok := origins[origin]; ok && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", allowedMethods)

			if headers := c.GetHeader("Access-Control-Request-Headers"); headers != "" {
				c.Header("Access-Control-Allow-Headers", headers)
				c.Writer.Header().Add("Vary", "Access-Control-Request-Headers")
			} else {
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			}

			c.Header("Content-Length", "0")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
