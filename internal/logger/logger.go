// Package logger configures the process-wide slog logger: time, level
// and msg at the root, every other attribute scoped under a top-level
// `data` group, so both binaries emit the same log schema.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Level     string
	Format    string
	AddSource bool
	Service   string
	Env       string
}

type ctxKey int

const (
	ctxKeyLogger ctxKey = iota
	ctxKeyRequestID
)

var (
	levelVar      slog.LevelVar
	defaultLogger *slog.Logger
)

func Default() *slog.Logger {
	if defaultLogger != nil {
		return defaultLogger
	}
	return slog.Default()
}

func Init(cfg Config) *slog.Logger {
	levelVar.Set(parseLevel(cfg.Level))

	opts := &slog.HandlerOptions{Level: &levelVar, AddSource: cfg.AddSource}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "text") {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	service := strings.TrimSpace(cfg.Service)
	if service == "" {
		service = serviceFromArgv()
	}

	base := slog.New(h).WithGroup("data").With("service", service)
	if env := strings.TrimSpace(cfg.Env); env != "" {
		base = base.With("env", env)
	}

	defaultLogger = base
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKeyLogger, l)
}

// FromContext returns the request-scoped logger, tagged with the request
// id when one was attached by the HTTP middleware.
func FromContext(ctx context.Context) *slog.Logger {
	l := Default()
	if ctx == nil {
		return l
	}
	if v, ok := ctx.Value(ctxKeyLogger).(*slog.Logger); ok && v != nil {
		l = v
	}
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok && id != "" {
		l = l.With("request_id", id)
	}
	return l
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

func serviceFromArgv() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return "app"
	}
	path := os.Args[0]
	if i := strings.LastIndexByte(path, '/'); i >= 0 && i+1 < len(path) {
		return path[i+1:]
	}
	return path
}
