// Package gateway implements the sheets-gateway HTTP server.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/netutil"

	"github.com/mauzo/sheets-gateway/config"
	"github.com/mauzo/sheets-gateway/log"
	"github.com/mauzo/sheets-gateway/middleware"
	"github.com/mauzo/sheets-gateway/ratelimit"
	"github.com/mauzo/sheets-gateway/sheets"
	"github.com/mauzo/sheets-gateway/telemetry"
)

const SERVICE = "sheets-gateway"

// Server is the sheets-gateway HTTP server.
type Server struct {
	router  *gin.Engine
	config  config.Config
	sheets  sheets.Reader
	limiter *ratelimit.Limiter
}

type Option func(*Server)

// WithLimiter replaces the rate limiter created from the configuration.
func WithLimiter(limiter *ratelimit.Limiter) Option {
	return func(s *Server) {
		s.limiter = limiter
	}
}

// NewServer creates a Server for the configuration that reads spreadsheet data with reader.
func NewServer(conf config.Config, reader sheets.Reader, options ...Option) *Server {
	s := &Server{
		config: conf,
		sheets: reader,
	}

	for _, option := range options {
		option(s)
	}

	if s.limiter == nil {
		s.limiter = ratelimit.NewLimiter(conf.RateLimit.Window, conf.RateLimit.Max)
	}

	router := gin.New()
	router.RedirectTrailingSlash = false

	// client identity for rate limiting is resolved by middleware.ClientIdentity
	_ = router.SetTrustedProxies(nil)

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(telemetry.Metrics())
	router.Use(middleware.SecureHeaders())
	router.Use(middleware.CORS(conf.CORSOrigins))
	router.Use(middleware.JSONBody(conf.BodyLimit))
	router.Use(middleware.RateLimit(s.limiter, middleware.ClientIdentity(conf.TrustProxy)))

	s.router = router
	s.setupRoutes()

	return s
}

// Handler returns the server's HTTP handler, including request tracing.
func (s *Server) Handler() http.Handler {
	return telemetry.WrapHandler(SERVICE, s.router)
}

// Run listens on the configured port and serves requests until ctx is cancelled, then shuts
// the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("unable to listen on port %v (%w)", s.config.Port, err)
	}

	return s.Serve(ctx, listener)
}

// Serve serves requests on the listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if s.config.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.config.MaxConnections)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
	}

	log.Infof("rate limit %v requests per %v per client", s.limiter.Max(), s.limiter.Window())

	errs := make(chan error, 1)

	go func() {
		log.Infof("server running on %v", listener.Addr())
		errs <- srv.Serve(listener)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		log.Infof("shutting down")

		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdown); err != nil {
			return fmt.Errorf("error shutting down server (%w)", err)
		}

		return nil
	}
}
