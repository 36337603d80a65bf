package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mauzo/sheets-gateway/log"
	"github.com/mauzo/sheets-gateway/ratelimit"
	"github.com/mauzo/sheets-gateway/telemetry"
)

const tooManyRequests = "Too many requests, please try again later."

// RateLimit rejects requests from clients that have exceeded the limiter's request budget with
// 429 Too Many Requests. The X-RateLimit headers are set on every response.
func RateLimit(limiter *ratelimit.Limiter, identify func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := identify(c)
		d := limiter.Admit(client)

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			telemetry.RateLimited()
			log.Warnw(c.Request.Context(), "rate limit exceeded",
				"client", client,
				"path", c.Request.URL.Path,
				"retry_after", d.RetryAfter)

			h.Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
			c.String(http.StatusTooManyRequests, tooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}

// ClientIdentity returns the function used to identify a client for rate limiting. Without
// trustProxy the identity is the remote address of the connection. With trustProxy the
// client address reported by the nearest proxy (the last X-Forwarded-For entry) is used.
func ClientIdentity(trustProxy bool) func(*gin.Context) string {
	return func(c *gin.Context) string {
		if trustProxy {
			if xff := c.Request.Header.Values("X-Forwarded-For"); len(xff) > 0 {
				hops := strings.Split(xff[len(xff)-1], ",")
				if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
					return ip
				}
			}
		}

		return c.RemoteIP()
	}
}
