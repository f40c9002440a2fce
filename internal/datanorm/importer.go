package datanorm

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/pkg/logger"
)

// Importer turns uploaded customer exports into a normalized domain.Table.
type Importer struct {
	aliases        AliasTable
	rows           *RowClassifier
	normalizer     *Normalizer
	headerScanRows int
}

// NewImporter creates an Importer with the given options.
func NewImporter(opts Options) *Importer {
	aliases := opts.Aliases
	if aliases == nil {
		aliases = DefaultAliases()
	}
	scan := opts.HeaderScanRows
	if scan <= 0 {
		scan = defaultHeaderScanRows
	}
	return &Importer{
		aliases:        aliases,
		rows:           NewRowClassifier(opts.SummaryMarkers),
		normalizer:     NewNormalizer(opts),
		headerScanRows: scan,
	}
}

// ImportReader reads a whole CSV or XLSX export. The format is sniffed from
// the content, with the filename as a hint for text files.
func (imp *Importer) ImportReader(ctx context.Context, r io.Reader, filename string) (*domain.Table, *ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, ErrEmptyFile
	}

	head := data
	if len(head) > 16 {
		head = head[:16]
	}
	format, err := DetectFormat(filename, head)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}

	var rows [][]string
	var sheet string
	switch format {
	case FormatXLSX:
		rows, sheet, err = readXLSX(data)
	default:
		rows, err = readCSV(data)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	table, res, err := imp.ImportRows(rows, filename)
	if res != nil {
		res.Format = format
		res.Sheet = sheet
	}
	return table, res, err
}

// ImportRows locates the header among the leading rows, then normalizes every
// data row beneath it.
func (imp *Importer) ImportRows(rows [][]string, sourceFile string) (*domain.Table, *ImportResult, error) {
	if len(rows) == 0 {
		return nil, nil, ErrEmptyFile
	}
	headerIdx := FindHeaderRow(rows, imp.aliases, imp.headerScanRows)
	return imp.importTable(rows[headerIdx], rows[headerIdx+1:], headerIdx+1, sourceFile)
}

// importTable normalizes data rows under a known header. headerRowNum is the
// 1-based source row of the header.
func (imp *Importer) importTable(header []string, data [][]string, headerRowNum int, sourceFile string) (*domain.Table, *ImportResult, error) {
	start := time.Now()

	mapping := MapColumns(header, imp.aliases)
	if missing := mapping.Missing(); len(missing) > 0 {
		return nil, nil, &domain.SchemaError{Missing: missing}
	}

	res := &ImportResult{
		SourceFile: sourceFile,
		HeaderRow:  headerRowNum,
		Columns:    mapping.Describe(),
		TotalRows:  len(data),
	}
	table := &domain.Table{
		Fields:  mapping.Fields(),
		Records: make([]domain.CustomerRecord, 0, len(data)),
	}

	for i, row := range data {
		if imp.rows.IsBlank(row) {
			res.SkippedBlankRows++
			continue
		}
		if imp.rows.IsSummary(row) {
			res.SkippedSummaryRows++
			continue
		}
		rec, errs := imp.normalizer.NormalizeRow(row, mapping, headerRowNum+i+1)
		for _, pe := range errs {
			logger.Debug("cell parse failed, using default",
				"source", sourceFile, "row", pe.Row, "field", string(pe.Field), "error", pe.Err.Error())
		}
		res.ParseErrors = append(res.ParseErrors, errs...)
		table.Records = append(table.Records, rec)
	}

	res.ImportedRows = len(table.Records)
	res.Duration = time.Since(start)
	logger.Info("import complete",
		"source", sourceFile,
		"header_row", res.HeaderRow,
		"imported", res.ImportedRows,
		"skipped_summary", res.SkippedSummaryRows,
		"parse_errors", len(res.ParseErrors))

	return table, res, nil
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(stripBOM(bytes.NewReader(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// readXLSX reads the first worksheet with raw cell values, so dates arrive
// as serial numbers and amounts keep full precision.
func readXLSX(data []byte) ([][]string, string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, "", ErrNoSheets
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, sheets[0], ErrEmptyFile
	}
	return rows, sheets[0], nil
}

// stripBOM wraps a reader to strip a UTF-8 BOM if present.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, err := io.ReadFull(r, buf)
	if err != nil || n < 3 {
		return io.MultiReader(bytes.NewReader(buf[:n]), r)
	}
	if buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(bytes.NewReader(buf[:n]), r)
}
