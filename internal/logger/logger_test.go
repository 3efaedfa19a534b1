package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestVerboseLines(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("loading %s", "a.pdf") }, "[DEBUG] loading a.pdf\n"},
		{"info", func() { Info("indexed %d chunks", 42) }, "[INFO] indexed 42 chunks\n"},
		{"section", func() { Section("Ingest") }, "\n=== Ingest ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
		t.Run(tt.name+" quiet", func(t *testing.T) {
			buf := capture(t, false)
			tt.log()
			assert.Empty(t, buf.String())
		})
	}
}

func TestWarn_AlwaysPrinted(t *testing.T) {
	buf := capture(t, false)
	Warn("caption failed for %s", "scan.png")
	assert.Equal(t, "[WARN] caption failed for scan.png\n", buf.String())
}

func TestSince(t *testing.T) {
	buf := capture(t, true)
	Since("embed", time.Now().Add(-1500*time.Millisecond))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[DEBUG] embed took 1.5"), out)

	buf = capture(t, false)
	Since("embed", time.Now())
	assert.Empty(t, buf.String())
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			_ = IsVerbose()
			Warn("concurrent %d", i)
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
