//go:build go1.21

package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"modelkit.io/modelkit/utils"
)

type slogLogger struct {
	Logger   *slog.Logger
	LogLevel LogLevel
}

// NewSlogLogger creates a new logger using log/slog
func NewSlogLogger(logger *slog.Logger, config Config) Interface {
	return &slogLogger{
		Logger:   logger,
		LogLevel: config.LogLevel,
	}
}

func (l *slogLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *slogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.log(ctx, slog.LevelInfo, fmt.Sprintf(msg, data...))
	}
}

func (l *slogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.log(ctx, slog.LevelWarn, fmt.Sprintf(msg, data...))
	}
}

func (l *slogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.log(ctx, slog.LevelError, fmt.Sprintf(msg, data...))
	}
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !l.Logger.Enabled(ctx, level) {
		return
	}

	r := slog.NewRecord(time.Now(), level, msg, utils.CallerFrame().PC)
	_ = l.Logger.Handler().Handle(ctx, r)
}
