// Package tabular turns CSV files and spreadsheets into a summary record
// plus row-range chunk records that keep the column schema.
package tabular

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// DefaultChunkSize is the number of rows per chunk record.
const DefaultChunkSize = 100

const (
	maxStatColumns   = 5
	maxSampleColumns = 3
	maxSampleValues  = 5
)

// Processor builds table records.
type Processor struct{}

// NewProcessor creates a tabular processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Process reads the table at path and returns one summary record followed by
// one chunk record per chunkSize rows. Errors wrap domain.ErrTableLoad.
func (p *Processor) Process(ctx context.Context, path string, chunkSize int) ([]domain.Record, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: %w: chunk size %d", domain.ErrTableLoad, domain.ErrInvalidInput, chunkSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("%w: error loading %s: %w", domain.ErrTableLoad, path, err)
	}

	cols := inferColumns(t)
	filename := filepath.Base(path)

	records := make([]domain.Record, 0, 1+(t.NumRows()+chunkSize-1)/chunkSize)
	records = append(records, summaryRecord(path, filename, t, cols))
	records = append(records, chunkRecords(path, filename, t, cols, chunkSize)...)
	return records, nil
}

func namesOf(cols []column, kind columnKind) []string {
	var names []string
	for _, c := range cols {
		if c.kind == kind {
			names = append(names, c.name)
		}
	}
	return names
}

func summaryRecord(path, filename string, t *Table, cols []column) domain.Record {
	numeric := namesOf(cols, kindNumeric)
	text := namesOf(cols, kindText)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Table: %s\n", filename)
	fmt.Fprintf(&sb, "Dimensions: %d rows × %d columns\n", t.NumRows(), t.NumColumns())
	fmt.Fprintf(&sb, "\nColumns: %s", strings.Join(t.Columns, ", "))
	if len(numeric) > 0 {
		fmt.Fprintf(&sb, "\nNumeric columns: %s", strings.Join(numeric, ", "))
	}
	if len(text) > 0 {
		fmt.Fprintf(&sb, "\nText columns: %s", strings.Join(text, ", "))
	}

	if len(numeric) > 0 {
		sb.WriteString("\n\nNumeric Statistics:")
		n := 0
		for i := range cols {
			if cols[i].kind != kindNumeric {
				continue
			}
			if n == maxStatColumns {
				break
			}
			n++
			s := describe(cols[i].values)
			fmt.Fprintf(&sb, "\n  %s: min=%s, max=%s, mean=%s, median=%s",
				cols[i].name, fixed2(s.min), fixed2(s.max), fixed2(s.mean), fixed2(s.median))
		}
	}

	if len(text) > 0 {
		sb.WriteString("\n\nSample Values:")
		n := 0
		for i := range cols {
			if cols[i].kind != kindText {
				continue
			}
			if n == maxSampleColumns {
				break
			}
			n++
			fmt.Fprintf(&sb, "\n  %s: %s", cols[i].name, strings.Join(distinct(cols[i].cells, maxSampleValues), ", "))
		}
	}

	md := domain.SourceMetadata(path, domain.RecordTypeTableSummary)
	md[domain.MetaColumns] = strings.Join(t.Columns, ", ")
	md[domain.MetaRowCount] = t.NumRows()
	md[domain.MetaColumnCount] = t.NumColumns()
	md[domain.MetaNumericColumns] = strings.Join(numeric, ", ")
	md[domain.MetaTextColumns] = strings.Join(text, ", ")
	return domain.NewRecord(sb.String(), md)
}

func chunkRecords(path, filename string, t *Table, cols []column, chunkSize int) []domain.Record {
	total := (t.NumRows() + chunkSize - 1) / chunkSize
	columns := strings.Join(t.Columns, ", ")

	records := make([]domain.Record, 0, total)
	for i, start := 0, 0; start < t.NumRows(); i, start = i+1, start+chunkSize {
		end := min(start+chunkSize, t.NumRows())

		var sb strings.Builder
		fmt.Fprintf(&sb, "Table: %s\n", filename)
		fmt.Fprintf(&sb, "Columns: %s\n", columns)
		fmt.Fprintf(&sb, "Rows %d to %d:\n\n", start+1, end)
		sb.WriteString(renderRows(cols, start, end))

		if hasKind(cols, kindNumeric) {
			sb.WriteString("\n\nChunk Statistics:\n")
			for c := range cols {
				if cols[c].kind != kindNumeric {
					continue
				}
				s := describe(cols[c].values[start:end])
				fmt.Fprintf(&sb, "  %s: min=%s, max=%s, mean=%s\n",
					cols[c].name, cols[c].statValue(s.min), cols[c].statValue(s.max), fixed2(s.mean))
			}
		}

		md := domain.SourceMetadata(path, domain.RecordTypeTableChunk)
		md[domain.MetaChunkIndex] = i
		md[domain.MetaTotalChunks] = total
		md[domain.MetaColumns] = columns
		records = append(records, domain.NewRecord(sb.String(), md))
	}
	return records
}

func hasKind(cols []column, kind columnKind) bool {
	for i := range cols {
		if cols[i].kind == kind {
			return true
		}
	}
	return false
}

// renderRows lays out rows [start, end) as right-aligned columns under their headers.
func renderRows(cols []column, start, end int) string {
	widths := make([]int, len(cols))
	cells := make([][]string, end-start)
	for r := range cells {
		cells[r] = make([]string, len(cols))
	}

	for c := range cols {
		widths[c] = utf8.RuneCountInString(cols[c].name)
		for r := start; r < end; r++ {
			v := cols[c].display(r)
			cells[r-start][c] = v
			widths[c] = max(widths[c], utf8.RuneCountInString(v))
		}
	}

	lines := make([]string, 0, len(cells)+1)
	header := make([]string, len(cols))
	for c := range cols {
		header[c] = padLeft(cols[c].name, widths[c])
	}
	lines = append(lines, strings.Join(header, "  "))

	for _, row := range cells {
		out := make([]string, len(row))
		for c, v := range row {
			out[c] = padLeft(v, widths[c])
		}
		lines = append(lines, strings.Join(out, "  "))
	}
	return strings.Join(lines, "\n")
}

func padLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

// statValue renders a chunk min or max in the column's own number format.
func (c *column) statValue(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return c.formatValue(v)
}

func fixed2(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
