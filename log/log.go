// Package log wraps a zap sugared logger with the levelled helpers used throughout sheets-gateway.
package log

import (
	"context"
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type requestIDKey struct{}

var (
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger atomic.Pointer[zap.SugaredLogger]
)

func init() {
	logger.Store(build(os.Stderr))
}

func build(w io.Writer) *zap.SugaredLogger {
	encoder := zap.NewProductionEncoderConfig()
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoder), zapcore.AddSync(w), level)

	return zap.New(core).Sugar()
}

// SetDebug enables or disables DEBUG level output.
func SetDebug(enabled bool) {
	if enabled {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	logger.Store(build(w))
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = logger.Load().Sync()
}

func Debugf(format string, args ...any) {
	logger.Load().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	logger.Load().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	logger.Load().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	logger.Load().Errorf(format, args...)
}

// WithRequestID returns a copy of ctx carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	id, ok := ctx.Value(requestIDKey{}).(string)

	return id, ok && id != ""
}

// Infow logs a message with key/value pairs, adding the request ID from ctx.
func Infow(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Load().Infow(msg, withRequestID(ctx, keysAndValues)...)
}

// Warnw logs a warning with key/value pairs, adding the request ID from ctx.
func Warnw(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Load().Warnw(msg, withRequestID(ctx, keysAndValues)...)
}

// Errorw logs an error with key/value pairs, adding the request ID from ctx.
func Errorw(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Load().Errorw(msg, withRequestID(ctx, keysAndValues)...)
}

func withRequestID(ctx context.Context, keysAndValues []any) []any {
	if id, ok := RequestID(ctx); ok {
		return append(keysAndValues, "request_id", id)
	}

	return keysAndValues
}
