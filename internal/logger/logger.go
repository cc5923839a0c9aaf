// Package logger provides structured logging setup for the training service.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ERPlora/module-training/internal/config"
)

// New creates a *slog.Logger from the given Logging config.
// Output is JSON to stdout with a "service" attribute on every record.
func New(cfg config.Logging) *slog.Logger {
	return slog.New(NewHandler(os.Stdout, cfg)).With("service", cfg.Service)
}

// NewHandler returns a JSON handler writing to w that also stamps the
// request and tenant IDs found in the record's context.
func NewHandler(w io.Writer, cfg config.Logging) slog.Handler {
	return &contextHandler{
		Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: parseLevel(cfg.Level),
		}),
	}
}

// contextHandler adds request-scoped attributes from the context.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if tid := Tenant(ctx); tid != "" {
		r.AddAttrs(slog.String("tenant_id", tid))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
