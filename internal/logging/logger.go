// README: Structured JSON logger shared by services and HTTP middleware.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON logger tagged with the service name and installs it as
// the slog default so stray library logs keep the same shape.
func New(service string) *slog.Logger {
	l := NewWithWriter(os.Stdout, service)
	slog.SetDefault(l)
	return l
}

// NewWithWriter builds the same logger on w without touching the slog
// default. Tools that print results on stdout log to stderr through it.
func NewWithWriter(w io.Writer, service string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	})
	return slog.New(handler).With(slog.String("service", service))
}

// Discard is used by tests and by callers that do not care about diagnostics.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
