// Package docx extracts body text from Word documents, leaving out
// page headers and footers.
package docx

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
)

const documentPart = "word/document.xml"

// ErrNoDocumentPart is returned when the package has no word/document.xml.
var ErrNoDocumentPart = errors.New("docx: missing " + documentPart)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader handles DOCX documents.
type Loader struct{}

// New creates a new DOCX loader.
func New() *Loader {
	return &Loader{}
}

// Formats returns the formats this loader handles.
func (l *Loader) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOCX}
}

// Load extracts the document text as a single record.
func (l *Loader) Load(_ context.Context, p string) ([]domain.Record, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	pkg, err := readPackage(&zr.Reader)
	if err != nil {
		return nil, err
	}

	text, err := extractWithoutHeaders(pkg)
	if err != nil {
		logger.Debug("docx %s: header/footer stripping failed (%v), extracting directly", p, err)
		text, err = extractDirect(pkg)
		if err != nil {
			return nil, err
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	return []domain.Record{domain.NewSourceRecord(p, domain.RecordTypeDocument, text)}, nil
}

// wordPackage holds the raw XML parts that carry text.
type wordPackage struct {
	document []byte
	headers  []namedPart
	footers  []namedPart
}

type namedPart struct {
	name string
	data []byte
}

// readPackage reads the document, header and footer parts.
func readPackage(zr *zip.Reader) (*wordPackage, error) {
	pkg := &wordPackage{}
	found := false

	for _, f := range zr.File {
		dir, base := path.Split(f.Name)
		if dir != "word/" || !strings.HasSuffix(base, ".xml") {
			continue
		}

		isHeader := strings.HasPrefix(base, "header")
		isFooter := strings.HasPrefix(base, "footer")
		if f.Name != documentPart && !isHeader && !isFooter {
			continue
		}

		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}

		switch {
		case f.Name == documentPart:
			pkg.document = data
			found = true
		case isHeader:
			pkg.headers = append(pkg.headers, namedPart{name: f.Name, data: data})
		default:
			pkg.footers = append(pkg.footers, namedPart{name: f.Name, data: data})
		}
	}

	if !found {
		return nil, ErrNoDocumentPart
	}

	sortParts(pkg.headers)
	sortParts(pkg.footers)
	return pkg, nil
}

func sortParts(parts []namedPart) {
	sort.Slice(parts, func(i, j int) bool { return parts[i].name < parts[j].name })
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// extractWithoutHeaders builds a working copy in which every header and
// footer paragraph is cleared, then extracts text from it. The original
// package is left untouched so a failure can fall back to extractDirect.
func extractWithoutHeaders(pkg *wordPackage) (string, error) {
	working := make([][]string, 0, len(pkg.headers)+len(pkg.footers)+1)

	for _, part := range pkg.headers {
		paras, err := parseParagraphs(part.data)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", part.name, err)
		}
		working = append(working, clearParagraphs(paras))
	}

	body, err := parseParagraphs(pkg.document)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", documentPart, err)
	}
	working = append(working, body)

	for _, part := range pkg.footers {
		paras, err := parseParagraphs(part.data)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", part.name, err)
		}
		working = append(working, clearParagraphs(paras))
	}

	return joinParts(working), nil
}

// extractDirect extracts headers, body and footers as they are.
// Header or footer parts that do not parse are skipped.
func extractDirect(pkg *wordPackage) (string, error) {
	var parts [][]string

	for _, part := range pkg.headers {
		if paras, err := parseParagraphs(part.data); err == nil {
			parts = append(parts, paras)
		}
	}

	body, err := parseParagraphs(pkg.document)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", documentPart, err)
	}
	parts = append(parts, body)

	for _, part := range pkg.footers {
		if paras, err := parseParagraphs(part.data); err == nil {
			parts = append(parts, paras)
		}
	}

	return joinParts(parts), nil
}

// clearParagraphs keeps the paragraph slots but removes their content.
func clearParagraphs(paras []string) []string {
	return make([]string, len(paras))
}

// joinParts joins paragraphs with newlines, skipping parts with no text.
func joinParts(parts [][]string) string {
	var sb strings.Builder
	for _, paras := range parts {
		text := strings.TrimSpace(strings.Join(paras, "\n"))
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}
	return sb.String()
}
