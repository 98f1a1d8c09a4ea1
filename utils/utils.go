package utils

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

var modelkitSourceDir string

func init() {
	_, file, _, _ := runtime.Caller(0)
	// compatible solution to get modelkit source directory with various operating systems
	modelkitSourceDir = sourceDir(file)
}

func sourceDir(file string) string {
	dir := filepath.Dir(file)
	dir = filepath.Dir(dir)

	s := filepath.Dir(dir)
	if filepath.Base(s) != "modelkit.io" {
		s = dir
	}
	return filepath.ToSlash(s) + "/"
}

// CallerFrame retrieves the first relevant stack frame outside of modelkit's internal implementation files.
// It skips:
//   - modelkit's core source files (identified by modelkitSourceDir prefix)
//   - Exclude test files (*_test.go)
func CallerFrame() runtime.Frame {
	pcs := [13]uintptr{}
	// the third caller usually from modelkit internal
	len := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:len])
	for i := 0; i < len; i++ {
		// second return value is "more", not "ok"
		frame, _ := frames.Next()
		if (!strings.HasPrefix(frame.File, modelkitSourceDir) ||
			strings.HasSuffix(frame.File, "_test.go")) && !strings.HasSuffix(frame.File, ".gen.go") {
			return frame
		}
	}

	return runtime.Frame{}
}

// FileWithLineNum return the file name and line number of the current file
func FileWithLineNum() string {
	frame := CallerFrame()
	if frame.PC != 0 {
		return frame.File + ":" + strconv.FormatInt(int64(frame.Line), 10)
	}

	return ""
}

// CheckTruth check string true or not
func CheckTruth(vals ...string) bool {
	for _, val := range vals {
		if val != "" && !strings.EqualFold(val, "false") {
			return true
		}
	}
	return false
}
