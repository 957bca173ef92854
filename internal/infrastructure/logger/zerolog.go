package logger

import (
	"io"
	"log/slog"

	"github.com/rs/zerolog"
)

// ZerologLogger implementation of domain logger on top of zerolog.
// Args are key value pairs like in slog.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger returns console logger writing to w.
func NewZerologLogger(w io.Writer, level slog.Level) ZerologLogger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: "2006-01-02 15:04:05 MST",
	}

	zl := zerolog.New(output).
		Level(zerologLevel(level)).
		With().
		Timestamp().
		Logger()

	return ZerologLogger{zl: zl}
}

// NewZerologJSONLogger returns json logger writing to w.
func NewZerologJSONLogger(w io.Writer, level slog.Level) ZerologLogger {
	return ZerologLogger{
		zl: zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger(),
	}
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level <= LevelTrace:
		return zerolog.TraceLevel
	case level <= slog.LevelDebug:
		return zerolog.DebugLevel
	case level <= slog.LevelInfo:
		return zerolog.InfoLevel
	case level <= slog.LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Debug logs on debug level.
func (l ZerologLogger) Debug(msg string, args ...any) {
	l.zl.Debug().Fields(args).Msg(msg)
}

// Info logs on info level.
func (l ZerologLogger) Info(msg string, args ...any) {
	l.zl.Info().Fields(args).Msg(msg)
}

// Warn logs on warn level.
func (l ZerologLogger) Warn(msg string, args ...any) {
	l.zl.Warn().Fields(args).Msg(msg)
}

// Error logs on error level.
func (l ZerologLogger) Error(msg string, args ...any) {
	l.zl.Error().Fields(args).Msg(msg)
}
