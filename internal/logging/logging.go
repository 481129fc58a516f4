package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Level controls which messages are emitted. Warnings and errors are
// always printed; info and debug are gated by verbosity.
type Level int32

const (
	LevelQuiet Level = iota
	LevelInfo
	LevelDebug
)

var (
	level atomic.Int32

	mu      sync.Mutex
	out     io.Writer = os.Stderr
	session           = uuid.New().String()

	errorTag = color.New(color.FgRed).SprintFunc()
	warnTag  = color.New(color.FgYellow).SprintFunc()
	infoTag  = color.New(color.FgCyan).SprintFunc()
	debugTag = color.New(color.Faint).SprintFunc()
)

func init() {
	level.Store(int32(LevelInfo))
}

// SetLevel adjusts the global verbosity.
func SetLevel(l Level) {
	level.Store(int32(l))
}

// Session returns the per-process scan session ID included in every line.
func Session() string {
	return session
}

// SetOutput redirects log output. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

func logf(tag, format string, args ...any) {
	ts := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s [session:%s] %s %s\n", ts, session[:8], tag, fmt.Sprintf(format, args...))
}

// Errorf logs an error. Always emitted.
func Errorf(format string, args ...any) {
	logf(errorTag("ERROR"), format, args...)
}

// Warnf logs a warning. Always emitted.
func Warnf(format string, args ...any) {
	logf(warnTag("WARN"), format, args...)
}

// Infof logs an informational message unless quiet.
func Infof(format string, args ...any) {
	if Level(level.Load()) >= LevelInfo {
		logf(infoTag("INFO"), format, args...)
	}
}

// Debugf logs a debug message when verbose.
func Debugf(format string, args ...any) {
	if Level(level.Load()) >= LevelDebug {
		logf(debugTag("DEBUG"), format, args...)
	}
}
