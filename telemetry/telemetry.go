// Package telemetry provides the Prometheus metrics and OpenTelemetry tracing for sheets-gateway.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheets_gateway_http_requests_total",
			Help: "Total number of HTTP requests received.",
		},
		[]string{"route", "method", "code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheets_gateway_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	sheetFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheets_gateway_sheet_fetches_total",
			Help: "Total number of Google Sheets reads, by result.",
		},
		[]string{"result"},
	)

	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sheets_gateway_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, sheetFetchesTotal, rateLimitedTotal)
}

// Metrics returns gin middleware that records request counts and durations by route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		method := c.Request.Method
		code := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(route, method, code).Inc()
		httpRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// SheetFetched records the outcome of a Google Sheets read.
func SheetFetched(err error) {
	if err != nil {
		sheetFetchesTotal.WithLabelValues("error").Inc()
	} else {
		sheetFetchesTotal.WithLabelValues("ok").Inc()
	}
}

// RateLimited records a request rejected by the rate limiter.
func RateLimited() {
	rateLimitedTotal.Inc()
}

// MetricsHandler returns the Prometheus metrics endpoint handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// WrapHandler adds OpenTelemetry tracing and context propagation to the handler.
func WrapHandler(name string, next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, name)
}

// Init installs a global tracer provider for the exporter and returns a function that flushes and
// stops it. Supported exporters: "stdout". An empty exporter (or "none") disables tracing.
func Init(exporter string, service string) (func(context.Context) error, error) {
	switch exporter {
	case "", "none":
		return func(context.Context) error { return nil }, nil

	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("unable to create stdout trace exporter (%w)", err)
		}

		res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(service))
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)

		otel.SetTracerProvider(tp)

		return tp.Shutdown, nil

	default:
		return nil, fmt.Errorf("unsupported tracing exporter '%v'", exporter)
	}
}
