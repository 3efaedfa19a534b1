package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoColumns is returned for an empty file.
var ErrNoColumns = errors.New("no columns to parse from file")

// Table is a header row plus data rows, every row padded to the header width.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.Columns) }

// ReadTable loads a CSV file or the first sheet of an XLSX workbook.
func ReadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return newTable(records)
}

func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoColumns
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return newTable(rows)
}

// newTable takes the first record as the header.
func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, ErrNoColumns
	}

	header := headerNames(records[0])
	width := len(header)

	rows := make([][]string, 0, len(records)-1)
	for i, rec := range records[1:] {
		if isBlankRow(rec) {
			continue
		}
		if len(rec) > width {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+2, width, len(rec))
		}
		row := make([]string, width)
		copy(row, rec)
		rows = append(rows, row)
	}
	return &Table{Columns: header, Rows: rows}, nil
}

// headerNames names blank headers "Unnamed: i" and suffixes duplicates ".1", ".2".
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		names[i] = h
	}
	return names
}

func isBlankRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// nullTokens are cell values read as missing.
var nullTokens = map[string]bool{
	"": true, "NaN": true, "nan": true, "NA": true, "N/A": true, "n/a": true,
	"null": true, "NULL": true, "None": true, "#N/A": true, "<NA>": true,
}

func isNull(cell string) bool {
	return nullTokens[strings.TrimSpace(cell)]
}

// columnKind is the inferred type of a column.
type columnKind int

const (
	kindEmpty columnKind = iota
	kindNumeric
	kindText
)

// column is a typed view over one table column.
type column struct {
	name   string
	kind   columnKind
	isInt  bool
	values []float64 // NaN for missing; only set for numeric columns
	cells  []string
}

// inferColumns types each column the way pandas would: numeric when every
// present value parses as a number, text otherwise, neither when all missing.
func inferColumns(t *Table) []column {
	cols := make([]column, len(t.Columns))
	for c, name := range t.Columns {
		col := column{name: name, cells: make([]string, len(t.Rows))}
		present, numeric, ints, nulls := 0, true, true, 0

		for r, row := range t.Rows {
			cell := strings.TrimSpace(row[c])
			col.cells[r] = cell
			if isNull(cell) {
				nulls++
				continue
			}
			present++
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric = false
			} else if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				ints = false
			}
		}

		switch {
		case present == 0:
			col.kind = kindEmpty
		case numeric:
			col.kind = kindNumeric
			col.isInt = ints && nulls == 0
			col.values = make([]float64, len(t.Rows))
			for r, cell := range col.cells {
				if isNull(cell) {
					col.values[r] = math.NaN()
					continue
				}
				col.values[r], _ = strconv.ParseFloat(cell, 64)
			}
		default:
			col.kind = kindText
		}
		cols[c] = col
	}
	return cols
}

// display renders a cell for the aligned table.
func (c *column) display(row int) string {
	switch c.kind {
	case kindNumeric:
		return c.formatValue(c.values[row])
	default:
		if isNull(c.cells[row]) {
			return "NaN"
		}
		return c.cells[row]
	}
}

// formatValue renders a number as an int for int columns and with a
// decimal point otherwise.
func (c *column) formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if c.isInt {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(v, 0) {
		s += ".0"
	}
	return s
}
