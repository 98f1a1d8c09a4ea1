package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestZerolog() (zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return zerolog.New(&buf).With().Timestamp().Logger(), &buf
}

func TestNewZerologLogger(t *testing.T) {
	zerologLogger, buf := setupTestZerolog()

	zerologAdapter := NewZerologLogger(zerologLogger, Config{LogLevel: Info, Colorful: true})

	require.NotNil(t, zerologAdapter)
	assert.Equal(t, Info, zerologAdapter.(*ZerologLogger).LogLevel)
	require.NotNil(t, buf)
}

func TestZerologLogger_LogMode(t *testing.T) {
	zerologLogger, _ := setupTestZerolog()

	logger := NewZerologLogger(zerologLogger, Config{LogLevel: Error})

	// Test changing log mode
	infoLogger := logger.LogMode(Info)
	assert.Equal(t, Info, infoLogger.(*ZerologLogger).LogLevel)

	// Test that original is not affected
	assert.Equal(t, Error, logger.(*ZerologLogger).LogLevel)
}

func TestZerologLogger_LogLevels(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		level  LogLevel
		logMsg string
		want   string
	}{
		{"Info level", Info, "Test info message", `"level":"info"`},
		{"Warn level", Warn, "Test warn message", `"level":"warn"`},
		{"Error level", Error, "Test error message", `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zerologLogger, testBuf := setupTestZerolog()
			testLogger := NewZerologLogger(zerologLogger, Config{LogLevel: tt.level})

			switch tt.level {
			case Info:
				testLogger.Info(ctx, tt.logMsg+" %d", 42)
			case Warn:
				testLogger.Warn(ctx, tt.logMsg+" %d", 42)
			case Error:
				testLogger.Error(ctx, tt.logMsg+" %d", 42)
			}

			output := testBuf.String()
			assert.Contains(t, output, tt.logMsg+" 42")
			assert.Contains(t, output, tt.want)
			assert.Contains(t, output, "zerolog_test.go")
		})
	}
}

func TestZerologLogger_BelowLevel(t *testing.T) {
	zerologLogger, buf := setupTestZerolog()
	logger := NewZerologLogger(zerologLogger, Config{LogLevel: Error})

	logger.Info(context.Background(), "hidden info")
	logger.Warn(context.Background(), "hidden warn")

	assert.Empty(t, buf.String())
}

func TestZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.Disabled, ZerologLevel(Silent))
	assert.Equal(t, zerolog.ErrorLevel, ZerologLevel(Error))
	assert.Equal(t, zerolog.WarnLevel, ZerologLevel(Warn))
	assert.Equal(t, zerolog.InfoLevel, ZerologLevel(Info))
}

func TestNewZerologConsoleLogger(t *testing.T) {
	logger := NewZerologConsoleLogger(Config{LogLevel: Warn})
	require.NotNil(t, logger)
	assert.Equal(t, Warn, logger.(*ZerologLogger).LogLevel)
}
