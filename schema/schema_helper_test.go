package schema

import (
	"fmt"
	"strings"
	"testing"

	"modelkit.io/modelkit/logger"
)

type recordingWriter struct {
	lines []string
}

func (w *recordingWriter) Printf(format string, args ...interface{}) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func (w *recordingWriter) contains(substr string) bool {
	for _, line := range w.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func newTestRegistry(t *testing.T) (*Registry, *recordingWriter) {
	t.Helper()
	w := &recordingWriter{}
	reg := NewRegistry(Config{Logger: logger.New(w, logger.Config{LogLevel: logger.Warn})})
	return reg, w
}

func recoverError(fc func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	fc()
	return nil
}

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}
