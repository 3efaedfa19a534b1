// Package pptx extracts slide text from PowerPoint presentations.
// Legacy .ppt files are converted to .pptx with LibreOffice first.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/loaders"
)

// ErrOfficeToolNotFound is returned when soffice is needed but not installed.
var ErrOfficeToolNotFound = errors.New("soffice not found: LibreOffice is required to read legacy .ppt files")

// ErrNoSlides is returned when the package contains no slide parts.
var ErrNoSlides = errors.New("pptx: no slides found")

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader extracts presentation text as one record per file.
type Loader struct {
	runner  driven.CommandRunner
	soffice string
}

// Option configures a Loader.
type Option func(*Loader)

// WithRunner replaces the command runner used for .ppt conversion.
func WithRunner(r driven.CommandRunner) Option {
	return func(l *Loader) {
		l.runner = r
	}
}

// WithSoffice sets the LibreOffice executable.
func WithSoffice(path string) Option {
	return func(l *Loader) {
		if path != "" {
			l.soffice = path
		}
	}
}

// New creates a presentation loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		runner:  loaders.ExecRunner{},
		soffice: "soffice",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Formats returns the formats this loader handles.
func (l *Loader) Formats() []domain.Format {
	return []domain.Format{domain.FormatPPTX, domain.FormatPPT}
}

// Load extracts the text of every slide.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Record, error) {
	src := path
	if f, _ := domain.FormatForPath(path); f == domain.FormatPPT {
		converted, cleanup, err := l.convert(ctx, path)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		src = converted
	}

	slides, err := readSlides(src)
	if err != nil {
		return nil, err
	}

	nonEmpty := make([]string, 0, len(slides))
	for _, s := range slides {
		if s = strings.TrimSpace(s); s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) == 0 {
		return nil, nil
	}

	rec := domain.NewSourceRecord(path, domain.RecordTypeDocument, strings.Join(nonEmpty, "\n\n")).
		WithMetadata(domain.MetaSlideCount, len(slides))
	return []domain.Record{rec}, nil
}

// convert turns a .ppt into a .pptx in a temporary directory.
func (l *Loader) convert(ctx context.Context, path string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "scholarsync-ppt-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) } //nolint:errcheck

	_, err = l.runner.Run(ctx, l.soffice, "--headless", "--convert-to", "pptx", "--outdir", dir, path)
	if err != nil {
		cleanup()
		if errors.Is(err, loaders.ErrToolNotFound) {
			return "", nil, ErrOfficeToolNotFound
		}
		return "", nil, fmt.Errorf("convert ppt: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(dir, base+".pptx")
	if _, err := os.Stat(out); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("convert ppt: no output: %w", err)
	}
	return out, cleanup, nil
}

// readSlides returns the text of each slide in slide order.
func readSlides(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	defer zr.Close()

	type slidePart struct {
		num  int
		file *zip.File
	}
	var parts []slidePart
	for _, f := range zr.File {
		if n, ok := slideNumber(f.Name); ok {
			parts = append(parts, slidePart{num: n, file: f})
		}
	}
	if len(parts) == 0 {
		return nil, ErrNoSlides
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].num < parts[j].num })

	slides := make([]string, 0, len(parts))
	for _, p := range parts {
		rc, err := p.file.Open()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p.file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p.file.Name, err)
		}

		text, err := slideText(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p.file.Name, err)
		}
		slides = append(slides, text)
	}
	return slides, nil
}

// slideNumber parses "ppt/slides/slideN.xml".
func slideNumber(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "ppt/slides/slide")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".xml")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// slideText concatenates a:t runs, one line per a:p paragraph.
func slideText(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		lines  []string
		cur    strings.Builder
		inPara bool
		inText bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				cur.Reset()
			case "t":
				inText = true
			case "br":
				cur.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if line := strings.TrimSpace(cur.String()); line != "" {
					lines = append(lines, line)
				}
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && inPara {
				cur.Write(t)
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
