package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"modelkit.io/modelkit/utils"
)

// ZapLogger implements Interface using zap
type ZapLogger struct {
	Logger   *zap.Logger
	LogLevel LogLevel
}

// NewZapLogger creates a new logger using zap
func NewZapLogger(logger *zap.Logger, config Config) Interface {
	return &ZapLogger{
		Logger:   logger,
		LogLevel: config.LogLevel,
	}
}

// NewZapLoggerWithConfig creates a new zap logger with custom configuration
func NewZapLoggerWithConfig(config Config, zapConfig ...zap.Config) Interface {
	var zapCfg zap.Config
	if len(zapConfig) > 0 {
		zapCfg = zapConfig[0]
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(ZapLevel(config.LogLevel))
	}

	logger, err := zapCfg.Build()
	if err != nil {
		// Fallback to development config
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(ZapLevel(config.LogLevel))
		logger, _ = zapCfg.Build()
	}

	return NewZapLogger(logger, config)
}

// LogMode sets the log level
func (l *ZapLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info logs info messages
func (l *ZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.Logger.Info(fmt.Sprintf(msg, data...), zap.String("file", utils.FileWithLineNum()))
	}
}

// Warn logs warning messages
func (l *ZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.Logger.Warn(fmt.Sprintf(msg, data...), zap.String("file", utils.FileWithLineNum()))
	}
}

// Error logs error messages
func (l *ZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.Logger.Error(fmt.Sprintf(msg, data...), zap.String("file", utils.FileWithLineNum()))
	}
}

// WithField adds a field to the logger
func (l *ZapLogger) WithField(key string, value interface{}) *ZapLogger {
	newLogger := *l
	newLogger.Logger = l.Logger.With(zap.Any(key, value))
	return &newLogger
}

// Sugar returns a sugared logger
func (l *ZapLogger) Sugar() *zap.SugaredLogger {
	return l.Logger.Sugar()
}

// ZapLevel converts LogLevel to zapcore.Level
func ZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case Silent:
		return zapcore.DPanicLevel // Use DPanic for silent to avoid actual logging
	case Error:
		return zapcore.ErrorLevel
	case Warn:
		return zapcore.WarnLevel
	case Info:
		return zapcore.InfoLevel
	default:
		return zapcore.InfoLevel
	}
}
