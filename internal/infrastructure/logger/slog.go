// Package logger contains implementations of domain logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LevelTrace more verbose than debug.
const LevelTrace = slog.Level(-8)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
}

// ParseLevel parses level name case insensitive.
func ParseLevel(name string) (slog.Level, error) {
	levels := map[string]slog.Level{
		"TRACE": LevelTrace,
		"DEBUG": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"ERROR": slog.LevelError,
	}

	level, ok := levels[strings.ToUpper(name)]
	if !ok {
		return 0, fmt.Errorf("unknown log level '%s'", name)
	}

	return level, nil
}

// NewSlogHandler returns text ("plain") or json slog handler writing to w.
// Source is added on TRACE level.
func NewSlogHandler(format string, level slog.Level, w io.Writer) (slog.Handler, error) {
	handlerOptions := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == LevelTrace,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				level := a.Value.Any().(slog.Level)
				levelLabel, exists := levelNames[level]
				if !exists {
					levelLabel = level.String()
				}
				a.Value = slog.StringValue(levelLabel)
			}
			return a
		},
	}

	switch format {
	case "plain":
		return slog.NewTextHandler(w, handlerOptions), nil
	case "json":
		return slog.NewJSONHandler(w, handlerOptions), nil
	default:
		return nil, fmt.Errorf("invalid logger format '%s'", format)
	}
}

// SlogLogger implementation of domain logger.
type SlogLogger struct {
	slog *slog.Logger
}

// NewSlogLogger constructor.
func NewSlogLogger(slg *slog.Logger) SlogLogger {
	return SlogLogger{
		slog: slg,
	}
}

// Debug wrapper for slog Debug.
func (l SlogLogger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info wrapper for slog Info.
func (l SlogLogger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn wrapper for slog Warn.
func (l SlogLogger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error wrapper for slog Error.
func (l SlogLogger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}
