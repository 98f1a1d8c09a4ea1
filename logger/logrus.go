package logger

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"modelkit.io/modelkit/utils"
)

// LogrusLogger implements Interface using logrus
type LogrusLogger struct {
	Logger   *logrus.Logger
	LogLevel LogLevel
}

// NewLogrusLogger creates a new logger using logrus
func NewLogrusLogger(logger *logrus.Logger, config Config) Interface {
	return &LogrusLogger{
		Logger:   logger,
		LogLevel: config.LogLevel,
	}
}

// LogMode sets the log level
func (l *LogrusLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info logs info messages
func (l *LogrusLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.entry(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

// Warn logs warning messages
func (l *LogrusLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.entry(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

// Error logs error messages
func (l *LogrusLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.entry(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

func (l *LogrusLogger) entry(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("file", utils.FileWithLineNum())
	if ctx != nil {
		entry = entry.WithContext(ctx)
	}
	return entry
}
