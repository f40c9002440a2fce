package datanorm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ignite/discount-generator/internal/config"
	"github.com/ignite/discount-generator/internal/domain"
)

func testImporter() *Importer {
	now := time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC)
	return NewImporter(Options{Now: func() time.Time { return now }, Location: time.UTC})
}

const reportCSV = "\xEF\xBB\xBFDaily Customer Report\n" +
	"Outlet,Koramangala\n" +
	"\n" +
	"Customer Name,Mobile,Number of Orders,Total (₹),Last Order\n" +
	"asha rao,98450 12345,12,\"7,500\",01/06/2025\n" +
	"vikram s,,1,350,2025-06-28\n" +
	",,,,\n" +
	"meera k,9900011122,oops,1200,2025-05-01\n" +
	"Total,,13,9050,\n" +
	"Avg.,,4.3,3016,\n"

func TestImportReaderCSV(t *testing.T) {
	imp := testImporter()

	table, res, err := imp.ImportReader(context.Background(), strings.NewReader(reportCSV), "report.csv")
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, res.Format)
	// encoding/csv drops the empty line, so the header is the third record.
	assert.Equal(t, 3, res.HeaderRow)
	assert.Equal(t, 6, res.TotalRows)
	assert.Equal(t, 3, res.ImportedRows)
	assert.Equal(t, 2, res.SkippedSummaryRows)
	assert.Equal(t, 1, res.SkippedBlankRows)
	require.Len(t, res.ParseErrors, 1)
	assert.Equal(t, 7, res.ParseErrors[0].Row)
	assert.Equal(t, domain.FieldTotalOrders, res.ParseErrors[0].Field)

	require.Equal(t, 3, table.Len())
	assert.True(t, table.Has(domain.FieldCustomerName))
	assert.True(t, table.Has(domain.FieldPhone))
	assert.Empty(t, table.Missing(domain.RequiredFields...))

	asha := table.Records[0]
	assert.Equal(t, "Asha Rao", asha.CustomerName)
	assert.Equal(t, "9845012345", asha.Phone)
	assert.Equal(t, 12, asha.TotalOrders)
	assert.Equal(t, 7500.0, asha.TotalSpent)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), asha.LastOrderDate)

	assert.Equal(t, domain.DefaultPhone, table.Records[1].Phone)
	assert.Equal(t, domain.DefaultTotalOrders, table.Records[2].TotalOrders)
}

func TestImportReaderSchemaError(t *testing.T) {
	imp := testImporter()
	csvData := "name,phone,amount\nasha,123,500\n"

	_, _, err := imp.ImportReader(context.Background(), strings.NewReader(csvData), "bad.csv")
	require.Error(t, err)

	var schemaErr *domain.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []domain.Field{domain.FieldTotalOrders, domain.FieldLastOrderDate}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "total_orders")
	assert.Contains(t, err.Error(), "last_order_date")
}

func TestImportReaderEmpty(t *testing.T) {
	_, _, err := testImporter().ImportReader(context.Background(), strings.NewReader("  \n"), "empty.csv")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestImportReaderHeaderOnly(t *testing.T) {
	table, res, err := testImporter().ImportReader(context.Background(),
		strings.NewReader("orders,amount,last_order\n"), "h.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, res.ImportedRows)
}

func TestImportReaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := testImporter().ImportReader(ctx, strings.NewReader("orders,amount,last_order\n1,2,2025-01-01\n"), "c.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"Customer Summary"},
		{},
		{"Name", "Phone", "Orders", "Amount", "Last Order"},
		{"asha rao", 9845012345, 25, 7500.5, 45831},
		{"ravi", "", 3, 800, "2025-06-01"},
		{"Total", "", 28, 8300.5, ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportReaderXLSX(t *testing.T) {
	data := buildWorkbook(t)

	table, res, err := testImporter().ImportReader(context.Background(), strings.NewReader(string(data)), "summary.xlsx")
	require.NoError(t, err)

	assert.Equal(t, FormatXLSX, res.Format)
	assert.Equal(t, "Sheet1", res.Sheet)
	assert.Equal(t, 3, res.HeaderRow)
	assert.Equal(t, 1, res.SkippedSummaryRows)
	require.Equal(t, 2, table.Len(), fmt.Sprintf("%+v", res))

	asha := table.Records[0]
	assert.Equal(t, "9845012345", asha.Phone)
	assert.Equal(t, 25, asha.TotalOrders)
	assert.InDelta(t, 7500.5, asha.TotalSpent, 1e-9)
	assert.Equal(t, time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC), asha.LastOrderDate)

	ravi := table.Records[1]
	assert.Equal(t, "Ravi", ravi.CustomerName)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), ravi.LastOrderDate)
}

func TestImportRowsSummaryOnlyFirstColumn(t *testing.T) {
	rows := [][]string{
		{"orders", "amount", "last_order", "name"},
		{"2", "100", "2025-06-01", "Total"},
	}
	table, res, err := testImporter().ImportRows(rows, "rows")
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 0, res.SkippedSummaryRows)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default().Ingest
	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Nil(t, opts.Aliases)
	assert.Equal(t, DefaultSummaryMarkers, opts.SummaryMarkers)
	assert.Equal(t, "Valued Customer", opts.DefaultCustomerName)

	cfg.AliasFile = "/nonexistent/aliases.yaml"
	_, err = OptionsFromConfig(cfg)
	assert.Error(t, err)
}
