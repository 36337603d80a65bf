package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mauzo/sheets-gateway/log"
	"github.com/mauzo/sheets-gateway/telemetry"
)

const (
	RUNNING = "✅ Backend is running on Railway!"
	HELLO   = "Hello from Railway backend"

	// ErrFetchFailed is the only error detail ever returned to a client by /api/sheet.
	ErrFetchFailed = "Failed to fetch data from Google Sheets"
)

// sheetResponse omits data entirely when the range is empty.
type sheetResponse struct {
	Data [][]any `json:"data,omitempty"`
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleRoot())
	get(s.router, "/health", s.handleHealth())

	api := s.router.Group("/api")
	{
		get(api, "/hello", s.handleHello())
		get(api, "/sheet", s.handleSheet())
	}

	if s.config.Metrics {
		get(s.router, "/metrics", gin.WrapH(telemetry.MetricsHandler()))
	}
}

// get registers handler for path both with and without a trailing slash.
func get(routes gin.IRoutes, path string, handler gin.HandlerFunc) {
	routes.GET(path, handler)
	routes.GET(path+"/", handler)
}

func (s *Server) handleRoot() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, RUNNING)
	}
}

func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (s *Server) handleHello() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": HELLO})
	}
}

// handleSheet reads the configured range. Every failure is logged in full and reported to the
// client as the same generic error.
func (s *Server) handleSheet() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		spreadsheet := s.config.Spreadsheet
		area := s.config.Range

		values, err := s.sheets.Values(ctx, spreadsheet, area)

		telemetry.SheetFetched(err)

		if err != nil {
			log.Errorw(ctx, "Google Sheets error",
				"spreadsheet", spreadsheet,
				"range", area,
				"error", err)

			c.JSON(http.StatusInternalServerError, gin.H{"error": ErrFetchFailed})
			return
		}

		if len(values) > 0 {
			log.Debugf("retrieved %v rows (%v columns) from %v", len(values), len(values[0]), area)
			log.Debugf("header: %v", values[0])
		} else {
			log.Debugf("no data in %v", area)
		}

		c.JSON(http.StatusOK, sheetResponse{Data: values})
	}
}
