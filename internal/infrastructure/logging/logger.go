package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	RoleKey      contextKey = "role"
)

// contextKeys lists the request-scoped values copied onto every record,
// in output order.
var contextKeys = []contextKey{RequestIDKey, UserIDKey, RoleKey}

// Config holds logger configuration
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json, text
	Output      io.Writer
	AddSource   bool
	ServiceName string
	Environment string
}

func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Format:      "json",
		Output:      os.Stdout,
		ServiceName: "asset-desk",
		Environment: "development",
	}
}

// ParseLevel maps a config string to a slog level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger creates a structured logger that also records the request id,
// user id and role found in the context of each call.
func NewLogger(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(a.Key, a.Value.Time().Format(time.RFC3339Nano))
			}
			return a
		},
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var base slog.Handler
	if cfg.Format == "text" {
		base = slog.NewTextHandler(output, opts)
	} else {
		base = slog.NewJSONHandler(output, opts)
	}

	return slog.New(&contextHandler{
		handler: base.WithAttrs([]slog.Attr{
			slog.String("service", cfg.ServiceName),
			slog.String("environment", cfg.Environment),
		}),
	})
}

type contextHandler struct {
	handler slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(contextAttrs(ctx)...)
	return h.handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{handler: h.handler.WithGroup(name)}
}

func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithIdentity records the authenticated caller for log correlation.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, RoleKey, role)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// LoggerFromContext returns logger with the context values attached, for
// code that hands the logger on to goroutines outliving ctx.
func LoggerFromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	attrs := contextAttrs(ctx)
	if len(attrs) == 0 {
		return logger
	}
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	return logger.With(args...)
}

// LogPanic logs panic information and stack trace
func LogPanic(logger *slog.Logger, panicValue any) {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)

	logger.Error("panic recovered",
		"panic", panicValue,
		"stack_trace", string(buf[:n]),
	)
}

// RequestLog describes one served HTTP request.
type RequestLog struct {
	Method       string
	Path         string
	StatusCode   int
	Duration     time.Duration
	BytesWritten int64
	ClientIP     string
	UserAgent    string
}

// LogRequest logs r at a level chosen from its status code.
func LogRequest(ctx context.Context, logger *slog.Logger, r RequestLog) {
	level := slog.LevelInfo
	switch {
	case r.StatusCode >= 500:
		level = slog.LevelError
	case r.StatusCode >= 400:
		level = slog.LevelWarn
	}

	logger.Log(ctx, level, "http request",
		"method", r.Method,
		"path", r.Path,
		"status_code", r.StatusCode,
		"duration_ms", r.Duration.Milliseconds(),
		"bytes_written", r.BytesWritten,
		"client_ip", r.ClientIP,
		"user_agent", r.UserAgent,
	)
}
