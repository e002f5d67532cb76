// Package logging builds the structured JSON logger shared by the HTTP layer,
// the services and the bootstrap code.
package logging

import (
	"io"
	"log/slog"
	"time"
)

// TimeKey is the attribute name carrying the record timestamp.
const TimeKey = "ts"

// New returns a JSON logger writing one object per line to w. Timestamps are
// rendered as RFC3339Nano in loc under the "ts" key.
func New(w io.Writer, loc *time.Location) *slog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String(TimeKey, a.Value.Time().In(loc).Format(time.RFC3339Nano))
			case slog.LevelKey:
				return slog.String(slog.LevelKey, levelName(a.Value.Any()))
			}
			return a
		},
	})
	return slog.New(h)
}

// Discard returns a logger that drops every record. Used where a caller
// passes no logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func levelName(v any) string {
	lvl, ok := v.(slog.Level)
	if !ok {
		return "info"
	}
	switch {
	case lvl >= slog.LevelError:
		return "error"
	case lvl >= slog.LevelWarn:
		return "warn"
	case lvl >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
