package datanorm

import (
	"errors"
	"time"

	"github.com/ignite/discount-generator/internal/config"
	"github.com/ignite/discount-generator/internal/domain"
)

// Format is the detected container format of an uploaded export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatSQL  Format = "sql"
)

// Sentinel errors for the ingestion layer.
var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoSheets          = errors.New("workbook has no sheets")
)

// ImportResult tracks the outcome of one import.
type ImportResult struct {
	SourceFile         string              `json:"source_file"`
	Format             Format              `json:"format"`
	Sheet              string              `json:"sheet,omitempty"`
	HeaderRow          int                 `json:"header_row"`
	Columns            map[string]string   `json:"columns"`
	TotalRows          int                 `json:"total_rows"`
	ImportedRows       int                 `json:"imported_rows"`
	SkippedSummaryRows int                 `json:"skipped_summary_rows"`
	SkippedBlankRows   int                 `json:"skipped_blank_rows"`
	ParseErrors        []domain.ParseError `json:"parse_errors,omitempty"`
	Duration           time.Duration       `json:"duration"`
}

// Options configures an Importer. Zero values fall back to the defaults
// used by the original exports.
type Options struct {
	Aliases             AliasTable
	SummaryMarkers      []string
	HeaderScanRows      int
	DefaultCustomerName string
	DefaultPhone        string
	// Now supplies the default for missing order dates.
	Now func() time.Time
	// Location is used for dates without an explicit zone.
	Location *time.Location
}

// DefaultSummaryMarkers are first-cell labels of report footer rows.
var DefaultSummaryMarkers = []string{"Total", "Min.", "Max.", "Avg."}

const defaultHeaderScanRows = 10

// OptionsFromConfig builds importer options from the ingest section,
// loading the alias file when one is set.
func OptionsFromConfig(cfg config.IngestConfig) (Options, error) {
	opts := Options{
		SummaryMarkers:      cfg.SummaryMarkers,
		HeaderScanRows:      cfg.HeaderScanRows,
		DefaultCustomerName: cfg.DefaultCustomerName,
		DefaultPhone:        cfg.DefaultPhone,
	}
	if cfg.AliasFile != "" {
		aliases, err := LoadAliases(cfg.AliasFile)
		if err != nil {
			return Options{}, err
		}
		opts.Aliases = aliases
	}
	return opts, nil
}
