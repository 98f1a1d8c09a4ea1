package logger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"modelkit.io/modelkit/utils"
)

// ZerologLogger implements Interface using zerolog
type ZerologLogger struct {
	Logger   zerolog.Logger
	LogLevel LogLevel
}

// NewZerologLogger creates a new logger using zerolog
func NewZerologLogger(logger zerolog.Logger, config Config) Interface {
	return &ZerologLogger{
		Logger:   logger,
		LogLevel: config.LogLevel,
	}
}

// NewZerologConsoleLogger creates a zerolog logger writing human friendly lines to stderr
func NewZerologConsoleLogger(config Config) Interface {
	consoleWriter := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.RFC3339
		w.NoColor = !config.Colorful
	})
	logger := zerolog.New(consoleWriter).
		Level(ZerologLevel(config.LogLevel)).
		With().
		Timestamp().
		Logger()

	return NewZerologLogger(logger, config)
}

// LogMode sets the log level
func (l *ZerologLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info logs info messages
func (l *ZerologLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.emit(ctx, l.Logger.Info(), msg, data)
	}
}

// Warn logs warning messages
func (l *ZerologLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.emit(ctx, l.Logger.Warn(), msg, data)
	}
}

// Error logs error messages
func (l *ZerologLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.emit(ctx, l.Logger.Error(), msg, data)
	}
}

func (l *ZerologLogger) emit(ctx context.Context, event *zerolog.Event, msg string, data []interface{}) {
	event = event.Str("file", utils.FileWithLineNum())
	if ctx != nil {
		event = event.Ctx(ctx)
	}
	event.Msg(fmt.Sprintf(msg, data...))
}

// ZerologLevel converts LogLevel to zerolog.Level
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case Silent:
		return zerolog.Disabled
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	case Info:
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
