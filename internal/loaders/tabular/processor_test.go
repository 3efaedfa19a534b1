package tabular

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const productsCSV = "Product,Price,Quantity\nWidget,9.99,10\nGadget,19.99,5\nDoohickey,4.5,20\n"

func TestProcess_SummaryAndChunk(t *testing.T) {
	path := writeFile(t, "products.csv", productsCSV)

	recs, err := NewProcessor().Process(context.Background(), path, 50)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	summary := recs[0]
	assert.Equal(t, domain.RecordTypeTableSummary, summary.Type())
	assert.Equal(t, "products.csv", summary.Filename())
	assert.Equal(t, "Product, Price, Quantity", summary.GetString(domain.MetaColumns))
	assert.Equal(t, "Price, Quantity", summary.GetString(domain.MetaNumericColumns))
	assert.Equal(t, "Product", summary.GetString(domain.MetaTextColumns))
	rows, _ := summary.GetInt(domain.MetaRowCount)
	assert.Equal(t, 3, rows)
	cols, _ := summary.GetInt(domain.MetaColumnCount)
	assert.Equal(t, 3, cols)

	want := "Table: products.csv\n" +
		"Dimensions: 3 rows × 3 columns\n" +
		"\nColumns: Product, Price, Quantity\n" +
		"Numeric columns: Price, Quantity\n" +
		"Text columns: Product\n" +
		"\nNumeric Statistics:\n" +
		"  Price: min=4.50, max=19.99, mean=11.49, median=9.99\n" +
		"  Quantity: min=5.00, max=20.00, mean=11.67, median=10.00\n" +
		"\nSample Values:\n" +
		"  Product: Widget, Gadget, Doohickey"
	assert.Equal(t, want, summary.Content())

	chunk := recs[1]
	assert.Equal(t, domain.RecordTypeTableChunk, chunk.Type())
	idx, _ := chunk.GetInt(domain.MetaChunkIndex)
	total, _ := chunk.GetInt(domain.MetaTotalChunks)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Product, Price, Quantity", chunk.GetString(domain.MetaColumns))

	wantChunk := "Table: products.csv\n" +
		"Columns: Product, Price, Quantity\n" +
		"Rows 1 to 3:\n\n" +
		"  Product  Price  Quantity\n" +
		"   Widget   9.99        10\n" +
		"   Gadget  19.99         5\n" +
		"Doohickey    4.5        20\n" +
		"\nChunk Statistics:\n" +
		"  Price: min=4.5, max=19.99, mean=11.49\n" +
		"  Quantity: min=5, max=20, mean=11.67\n"
	assert.Equal(t, wantChunk, chunk.Content())
}

func TestProcess_RowsTileWithoutOverlap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("id,label\n")
	for i := 1; i <= 120; i++ {
		fmt.Fprintf(&sb, "%d,row-%d\n", i, i)
	}
	path := writeFile(t, "rows.csv", sb.String())

	recs, err := NewProcessor().Process(context.Background(), path, 50)
	require.NoError(t, err)
	require.Len(t, recs, 4)

	ranges := []string{"Rows 1 to 50:", "Rows 51 to 100:", "Rows 101 to 120:"}
	for i, r := range recs[1:] {
		idx, _ := r.GetInt(domain.MetaChunkIndex)
		total, _ := r.GetInt(domain.MetaTotalChunks)
		assert.Equal(t, i, idx)
		assert.Equal(t, 3, total)
		assert.Contains(t, r.Content(), ranges[i])
	}
	assert.Contains(t, recs[3].Content(), "row-120")
	assert.NotContains(t, recs[3].Content(), "row-100\n")
}

func TestProcess_HeaderOnly(t *testing.T) {
	path := writeFile(t, "empty_rows.csv", "a,b\n")

	recs, err := NewProcessor().Process(context.Background(), path, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].Content(), "Dimensions: 0 rows × 2 columns")
	assert.NotContains(t, recs[0].Content(), "Numeric columns")
	assert.NotContains(t, recs[0].Content(), "Text columns")
}

func TestProcess_EmptyColumnInNeitherList(t *testing.T) {
	path := writeFile(t, "sparse.csv", "name,score,notes\nann,1,\nbob,2,\n")

	recs, err := NewProcessor().Process(context.Background(), path, 10)
	require.NoError(t, err)
	assert.Equal(t, "score", recs[0].GetString(domain.MetaNumericColumns))
	assert.Equal(t, "name", recs[0].GetString(domain.MetaTextColumns))
	assert.Contains(t, recs[1].Content(), "NaN")
}

func TestProcess_MissingNumericValues(t *testing.T) {
	path := writeFile(t, "gaps.csv", "x\n1\n\n3\nNA\n")

	recs, err := NewProcessor().Process(context.Background(), path, 10)
	require.NoError(t, err)
	assert.Contains(t, recs[0].Content(), "  x: min=1.00, max=3.00, mean=2.00, median=2.00")
	assert.Contains(t, recs[1].Content(), "  x: min=1.0, max=3.0, mean=2.00")
}

func TestProcess_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Name", "Score"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Ann", 90}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Bob", 70}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	recs, err := NewProcessor().Process(context.Background(), path, 100)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Contains(t, recs[0].Content(), "Table: scores.xlsx")
	assert.Contains(t, recs[0].Content(), "  Score: min=70.00, max=90.00, mean=80.00, median=80.00")
	assert.Contains(t, recs[1].Content(), "  Score: min=70, max=90, mean=80.00")
}

func TestProcess_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewProcessor().Process(ctx, writeFile(t, "a.csv", productsCSV), 0)
	assert.ErrorIs(t, err, domain.ErrTableLoad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewProcessor().Process(ctx, writeFile(t, "empty.csv", ""), 10)
	assert.ErrorIs(t, err, domain.ErrTableLoad)
	assert.ErrorIs(t, err, ErrNoColumns)

	_, err = NewProcessor().Process(ctx, filepath.Join(t.TempDir(), "missing.csv"), 10)
	assert.ErrorIs(t, err, domain.ErrTableLoad)
}

func TestHeaderNames(t *testing.T) {
	assert.Equal(t, []string{"a", "Unnamed: 1", "a.1", "a.2"}, headerNames([]string{"a", " ", "a", "a"}))
}

func TestDescribe(t *testing.T) {
	s := describe([]float64{4, math.NaN(), 1, 3, 2})
	assert.Equal(t, 4, s.count)
	assert.InDelta(t, 1.0, s.min, 1e-9)
	assert.InDelta(t, 4.0, s.max, 1e-9)
	assert.InDelta(t, 2.5, s.mean, 1e-9)
	assert.InDelta(t, 2.5, s.median, 1e-9)

	empty := describe([]float64{math.NaN()})
	assert.True(t, math.IsNaN(empty.mean))
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, distinct([]string{"a", "", "a", "b", "NA"}, 5))
	assert.Equal(t, []string{"a"}, distinct([]string{"a", "b"}, 1))
}
