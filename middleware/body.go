package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// BodyKey is the gin context key for the parsed JSON request body.
const BodyKey = "json-body"

// JSONBody parses JSON request bodies before the request is routed. Only requests with an
// application/json (or +json) content type and a non-empty body are parsed. The body must be a
// single JSON object or array with nothing but whitespace after it. Anything else is rejected
// with 400, as is a body larger than limit (413).
//
// The parsed payload is stored under BodyKey and the raw bytes under gin.BodyBytesKey so that
// handlers can still use c.ShouldBindBodyWith.
func JSONBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isJSON(c.ContentType()) || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			} else {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
			}
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if len(bytes.TrimSpace(body)) == 0 {
			c.Next()
			return
		}

		if !json.Valid(body) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON body"})
			return
		}

		var payload any
		if err := binding.JSON.BindBody(body, &payload); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON body"})
			return
		}

		switch payload.(type) {
		case map[string]any, []any:
		default:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON body"})
			return
		}

		c.Set(gin.BodyBytesKey, body)
		c.Set(BodyKey, payload)

		c.Next()
	}
}

func isJSON(contentType string) bool {
	ct := strings.ToLower(contentType)

	return ct == binding.MIMEJSON || strings.HasSuffix(ct, "+json")
}
