// Package logger writes diagnostic lines for the scholarsync CLI to stderr.
//
// Debug, Info and Section lines are printed only in verbose mode (--verbose).
// Warnings are always printed because they report degraded results, such as an
// image indexed without a caption or a spreadsheet indexed as raw text.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all log lines. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(always bool, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if always || verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a trace line in verbose mode.
func Debug(format string, args ...any) {
	write(false, "[DEBUG] ", format, args...)
}

// Info prints a progress line in verbose mode.
func Info(format string, args ...any) {
	write(false, "[INFO] ", format, args...)
}

// Warn prints a warning regardless of verbose mode.
func Warn(format string, args ...any) {
	write(true, "[WARN] ", format, args...)
}

// Section prints a stage header in verbose mode.
func Section(name string) {
	write(false, "", "\n=== %s ===", name)
}

// Since prints how long a stage took in verbose mode. Use with defer:
//
//	defer logger.Since("embed", time.Now())
func Since(stage string, start time.Time) {
	write(false, "[DEBUG] ", "%s took %s", stage, time.Since(start).Round(time.Millisecond))
}
