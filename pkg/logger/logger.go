// Package logger provides a structured, levelled logger built on log/slog.
//
// The key extension over plain slog is WithCtx: it creates a logger with the
// request ID already attached, so every log line from a handler is
// automatically correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_id", order.ID, "total", order.TotalAmount)
//	// → time=... level=INFO msg="order placed" request_id=a1b2c3d4 order_id=42 total=129.99
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/bazaar/config"
)

var L *slog.Logger

var mongoHandler *MongoHandler

func init() {
	L = slog.New(baseHandler())
	slog.SetDefault(L)
}

func baseHandler() slog.Handler {
	opts := &slog.HandlerOptions{}

	switch config.AppEnv() {
	case "production", "prod":
		opts.Level = slog.LevelInfo
		return slog.NewJSONHandler(os.Stdout, opts) // structured JSON for log aggregators
	default:
		opts.Level = slog.LevelDebug
		return slog.NewTextHandler(os.Stdout, opts) // human-readable for dev
	}
}

// Setup attaches the MongoDB handler when MONGO_LOG_URI is configured.
// Called once from server bootstrap, after config.Load.
func Setup() {
	uri := config.MongoLogURI()
	if uri == "" {
		return
	}

	mh, err := NewMongoHandler(uri, config.MongoLogDatabase(), "logs")
	if err != nil {
		L.Warn("mongo log handler disabled", "error", err)
		return
	}

	mongoHandler = mh
	L = slog.New(NewMultiHandler(baseHandler(), mh))
	slog.SetDefault(L)
}

// Close flushes the Mongo handler, if one was attached.
func Close() {
	if mongoHandler != nil {
		mongoHandler.Close()
	}
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the per-request *slog.Logger injected by the Logger
// middleware, pre-tagged with request_id. Falls back to the base logger
// outside a request.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware — not usually needed in application code.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
