//go:build unit

package main

import (
	"io"
	"log/slog"

	infralogger "github.com/thek4n/clipstash/internal/infrastructure/logger"
)

type muteLogger struct{}

func (l muteLogger) Debug(string, ...any) {}
func (l muteLogger) Error(string, ...any) {}
func (l muteLogger) Info(string, ...any)  {}
func (l muteLogger) Warn(string, ...any)  {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newZerologProbe() infralogger.ZerologLogger {
	return infralogger.NewZerologLogger(io.Discard, slog.LevelInfo)
}
