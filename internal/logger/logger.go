// Package logger is the process-wide log for docqa, written to stderr.
// Debug, Info and Warn only appear with --verbose; Error always does.
//
// Lines read "[LEVEL] message key=value ...". The printf helpers cover the
// CLI; Logger exposes the same sink as a *slog.Logger for code that wants
// attributes.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr

	threshold = func() *slog.LevelVar {
		v := new(slog.LevelVar)
		v.Set(slog.LevelError)
		return v
	}()

	std = slog.New(&lineHandler{})
)

// SetVerbose lowers the threshold to debug, or raises it back to errors
// only.
func SetVerbose(v bool) {
	if v {
		threshold.Set(slog.LevelDebug)
		return
	}
	threshold.Set(slog.LevelError)
}

// IsVerbose reports whether debug output is enabled.
func IsVerbose() bool {
	return threshold.Level() <= slog.LevelDebug
}

// SetOutput redirects the log. The chat TUI points it away from stderr
// while it owns the terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Logger returns the shared logger.
func Logger() *slog.Logger {
	return std
}

func logf(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !std.Enabled(ctx, level) {
		return
	}
	std.Log(ctx, level, fmt.Sprintf(format, args...))
}

// Debug logs a formatted message in verbose mode.
func Debug(format string, args ...any) {
	logf(slog.LevelDebug, format, args...)
}

// Info logs a formatted message in verbose mode.
func Info(format string, args ...any) {
	logf(slog.LevelInfo, format, args...)
}

// Warn logs a formatted warning in verbose mode.
func Warn(format string, args ...any) {
	logf(slog.LevelWarn, format, args...)
}

// Error logs a formatted error. Errors are printed even when not verbose.
func Error(format string, args ...any) {
	logf(slog.LevelError, format, args...)
}

// Section prints a "=== name ===" header in verbose mode.
func Section(name string) {
	if !IsVerbose() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

// Elapsed logs the time since start at debug level:
//
//	defer logger.Elapsed("embed", time.Now())
func Elapsed(stage string, start time.Time) {
	Debug("%s took %s", stage, time.Since(start).Round(time.Millisecond))
}

// lineHandler renders one line per record. Attributes added under a group
// get the group name as a dotted key prefix.
type lineHandler struct {
	attrs  []slog.Attr
	prefix string
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= threshold.Level()
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString("[" + r.Level.String() + "] " + r.Message)
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	mu.Lock()
	defer mu.Unlock()
	_, err := io.WriteString(output, b.String())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &lineHandler{attrs: slices.Clip(h.attrs), prefix: h.prefix}
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return next
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &lineHandler{attrs: h.attrs, prefix: h.prefix + name + "."}
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, prefix+a.Key+".", ga)
		}
		return
	}
	v := a.Value.String()
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		v = strconv.Quote(v)
	}
	b.WriteString(" " + prefix + a.Key + "=" + v)
}
