// Package pdf extracts per-page text from PDF files using pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/loaders"
)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: " + InstallInstructions())

// ErrNoText is returned when no page of the PDF yields text, as with
// scanned documents that were never OCRed.
var ErrNoText = fmt.Errorf("%w: no extractable text in PDF", domain.ErrLoadFailure)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader turns a PDF into one record per non-empty page.
type Loader struct {
	runner      driven.CommandRunner
	binary      string
	boilerplate []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithRunner replaces the command runner.
func WithRunner(r driven.CommandRunner) Option {
	return func(l *Loader) {
		l.runner = r
	}
}

// WithBinary sets the pdftotext executable.
func WithBinary(path string) Option {
	return func(l *Loader) {
		if path != "" {
			l.binary = path
		}
	}
}

// WithBoilerplate sets the line denylist. Lines containing any marker are dropped.
func WithBoilerplate(markers []string) Option {
	return func(l *Loader) {
		l.boilerplate = nil
		for _, m := range markers {
			if m != "" {
				l.boilerplate = append(l.boilerplate, m)
			}
		}
	}
}

// New creates a PDF loader with the default denylist.
func New(opts ...Option) *Loader {
	l := &Loader{
		runner:      loaders.ExecRunner{},
		binary:      "pdftotext",
		boilerplate: append([]string(nil), domain.DefaultPDFBoilerplate...),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Formats returns the formats this loader handles.
func (l *Loader) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF}
}

// Load extracts the pages of the PDF at path.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Record, error) {
	out, err := l.runner.Run(ctx, l.binary, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		if errors.Is(err, loaders.ErrToolNotFound) {
			return nil, ErrPDFToolNotFound
		}
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	pages := strings.Split(string(out), "\f")
	records := make([]domain.Record, 0, len(pages))
	for i, page := range pages {
		text := strings.TrimSpace(l.clean(page))
		if text == "" {
			continue
		}
		rec := domain.NewSourceRecord(path, domain.RecordTypeDocument, text).
			WithMetadata(domain.MetaPage, i+1)
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrNoText
	}
	return records, nil
}

// clean drops every line containing a boilerplate marker.
func (l *Loader) clean(page string) string {
	if len(l.boilerplate) == 0 {
		return page
	}
	lines := strings.Split(page, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !l.isBoilerplate(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func (l *Loader) isBoilerplate(line string) bool {
	for _, m := range l.boilerplate {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// InstallInstructions returns instructions for installing pdftotext.
func InstallInstructions() string {
	return "pdftotext is required for PDF support. Install poppler: " +
		"macOS: brew install poppler; Debian/Ubuntu: apt install poppler-utils"
}
