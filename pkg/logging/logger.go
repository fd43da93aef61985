// Package logging provides dit's structured, level-gated console logger. It
// is deliberately small: dit has no log files, no remote log shipping, and
// no daemon, so all it needs is a prefix-aware writer around stdout/stderr
// that each pipeline stage can derive a sublogger from.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/fatih/color"
)

// Logger is the main logger type. A nil *Logger is safe to call methods on
// (they become no-ops), so callers never need to nil-check a logger before
// using it. It is safe for concurrent use by multiple goroutines, which
// matters here because every pipeline stage (discoverer, each hasher, the
// arbiter, each copier) logs concurrently.
type Logger struct {
	// prefix is the sublogger path, e.g. "hash.1" or "copy.0".
	prefix string
	// level is shared (via pointer) with every sublogger derived from the
	// same root, so a single --log-level flag governs the whole tree.
	level *atomic.Uint32
	// out is where Info/Debug/Trace lines are written.
	out io.Writer
	// err is where Warn/Error lines are written.
	err io.Writer
	// color controls whether Warn/Error are colorized.
	color bool
}

// NewRoot creates a new root logger at the given level, writing informational
// output to out and warnings/errors to err.
func NewRoot(level Level, out, err io.Writer, useColor bool) *Logger {
	lv := &atomic.Uint32{}
	lv.Store(uint32(level))
	return &Logger{
		level: lv,
		out:   out,
		err:   err,
		color: useColor,
	}
}

func (l *Logger) currentLevel() Level {
	if l == nil || l.level == nil {
		return LevelDisabled
	}
	return Level(l.level.Load())
}

// Sublogger creates a new logger with the given name appended to the prefix
// chain, sharing this logger's level, writers, and color setting.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{
		prefix: prefix,
		level:  l.level,
		out:    l.out,
		err:    l.err,
		color:  l.color,
	}
}

func (l *Logger) line(format string, v ...interface{}) string {
	msg := fmt.Sprintf(format, v...)
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s", l.prefix, msg)
	}
	return msg
}

// Info logs a basic execution message (sub-path processed, run summary) if
// the logger's level is LevelInfo or more verbose.
func (l *Logger) Info(format string, v ...interface{}) {
	if l == nil || l.currentLevel() < LevelInfo {
		return
	}
	fmt.Fprintln(l.out, l.line(format, v...))
}

// Debug logs advanced execution information, gated on LevelDebug.
func (l *Logger) Debug(format string, v ...interface{}) {
	if l == nil || l.currentLevel() < LevelDebug {
		return
	}
	fmt.Fprintln(l.out, l.line(format, v...))
}

// Trace logs low-level execution information, gated on LevelTrace.
func (l *Logger) Trace(format string, v ...interface{}) {
	if l == nil || l.currentLevel() < LevelTrace {
		return
	}
	fmt.Fprintln(l.out, l.line(format, v...))
}

// Warn logs a non-fatal problem (merge conflict, recoverable condition),
// gated on LevelWarn, colorized yellow when color is enabled.
func (l *Logger) Warn(format string, v ...interface{}) {
	if l == nil || l.currentLevel() < LevelWarn {
		return
	}
	msg := l.line(format, v...)
	if l.color {
		msg = color.YellowString("%s", msg)
	}
	fmt.Fprintln(l.err, msg)
}

// Error logs a fatal problem, gated on LevelError, colorized red when color
// is enabled.
func (l *Logger) Error(format string, v ...interface{}) {
	if l == nil || l.currentLevel() < LevelError {
		return
	}
	msg := l.line(format, v...)
	if l.color {
		msg = color.RedString("%s", msg)
	}
	fmt.Fprintln(l.err, msg)
}

// Discard is a root logger that drops everything. Useful in tests that don't
// want to assert on log output.
var Discard = NewRoot(LevelDisabled, os.Stderr, os.Stderr, false)
