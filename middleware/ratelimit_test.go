package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mauzo/sheets-gateway/log"
	"github.com/mauzo/sheets-gateway/ratelimit"
)

func newRateLimitRouter(limiter *ratelimit.Limiter, trustProxy bool) *gin.Engine {
	router := gin.New()
	router.Use(RateLimit(limiter, ClientIdentity(trustProxy)))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return router
}

func get(router http.Handler, remote string, forwarded ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = remote
	for _, v := range forwarded {
		req.Header.Add("X-Forwarded-For", v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	limiter := ratelimit.NewLimiter(15*time.Minute, 3, ratelimit.WithClock(clock))
	router := newRateLimitRouter(limiter, false)

	for i := 1; i <= 3; i++ {
		w := get(router, "192.0.2.1:40000")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(3-i), w.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, strconv.FormatInt(now.Add(15*time.Minute).Unix(), 10), w.Header().Get("X-RateLimit-Reset"))
	}

	w := get(router, "192.0.2.1:40001")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, tooManyRequests, w.Body.String())
	assert.Equal(t, "900", w.Header().Get("Retry-After"))

	// different client
	assert.Equal(t, http.StatusOK, get(router, "192.0.2.2:40000").Code)

	now = now.Add(15 * time.Minute)
	assert.Equal(t, http.StatusOK, get(router, "192.0.2.1:40002").Code)
}

func TestRateLimitLogsRejectedRequests(t *testing.T) {
	var b bytes.Buffer

	log.SetOutput(&b)
	defer log.SetOutput(nil)

	router := newRateLimitRouter(ratelimit.NewLimiter(time.Minute, 1), false)

	get(router, "192.0.2.1:40000")
	assert.Empty(t, b.String())

	get(router, "192.0.2.1:40000")
	assert.Contains(t, b.String(), "WARN")
	assert.Contains(t, b.String(), "rate limit exceeded")
	assert.Contains(t, b.String(), "192.0.2.1")
}

func TestRateLimitIgnoresForwardedForWithoutTrustProxy(t *testing.T) {
	router := newRateLimitRouter(ratelimit.NewLimiter(time.Minute, 1), false)

	assert.Equal(t, http.StatusOK, get(router, "10.0.0.1:5000", "203.0.113.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "10.0.0.1:5000", "203.0.113.2").Code)
}

func TestRateLimitWithTrustProxy(t *testing.T) {
	router := newRateLimitRouter(ratelimit.NewLimiter(time.Minute, 1), true)

	assert.Equal(t, http.StatusOK, get(router, "10.0.0.1:5000", "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, get(router, "10.0.0.1:5000", "203.0.113.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "10.0.0.1:5000", "203.0.113.1").Code)
}

func TestClientIdentity(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		remote     string
		forwarded  []string
		expected   string
	}{
		{"remote address", false, "192.0.2.1:1234", nil, "192.0.2.1"},
		{"forwarded ignored", false, "192.0.2.1:1234", []string{"203.0.113.7"}, "192.0.2.1"},
		{"no forwarded header", true, "192.0.2.1:1234", nil, "192.0.2.1"},
		{"single hop", true, "10.0.0.1:1234", []string{"203.0.113.7"}, "203.0.113.7"},
		{"spoofed chain", true, "10.0.0.1:1234", []string{"198.51.100.1, 203.0.113.7"}, "203.0.113.7"},
		{"repeated header", true, "10.0.0.1:1234", []string{"198.51.100.1", "203.0.113.8"}, "203.0.113.8"},
		{"ipv6", false, "[2001:db8::1]:1234", nil, "2001:db8::1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var identity string

			router := gin.New()
			router.GET("/test", func(c *gin.Context) {
				identity = ClientIdentity(test.trustProxy)(c)
			})

			get(router, test.remote, test.forwarded...)

			assert.Equal(t, test.expected, identity)
		})
	}
}
