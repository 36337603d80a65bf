package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mauzo/sheets-gateway/log"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID or assigns a new one, echoes it in the response
// and stores it in the request context for logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !valid(id) {
			id = uuid.NewString()
		}

		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

func valid(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}

	for _, ch := range id {
		if ch < 0x21 || ch > 0x7e {
			return false
		}
	}

	return true
}
