package datanorm

import (
	"bytes"
	"path/filepath"
	"strings"
)

var (
	zipMagic = []byte("PK\x03\x04")
	// OLE2 compound file, used by legacy .xls workbooks.
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat determines the container format from the leading bytes,
// falling back to the filename extension for plain text.
func DetectFormat(filename string, head []byte) (Format, error) {
	if bytes.HasPrefix(head, zipMagic) {
		return FormatXLSX, nil
	}
	if bytes.HasPrefix(head, oleMagic) {
		return "", ErrUnsupportedFormat
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xls":
		// Spreadsheet extension without a zip container.
		return "", ErrUnsupportedFormat
	case ".csv", ".txt", ".tsv", "":
		return FormatCSV, nil
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return "", ErrUnsupportedFormat
	}
	return FormatCSV, nil
}

// RowClassifier recognizes rows that are not customer data.
type RowClassifier struct {
	markers map[string]struct{}
}

// NewRowClassifier builds a classifier for the given summary labels.
func NewRowClassifier(markers []string) *RowClassifier {
	if len(markers) == 0 {
		markers = DefaultSummaryMarkers
	}
	m := make(map[string]struct{}, len(markers))
	for _, s := range markers {
		m[strings.TrimSpace(s)] = struct{}{}
	}
	return &RowClassifier{markers: m}
}

// IsSummary reports whether the first cell carries a footer label such as
// "Total" or "Avg.". Matching is exact after trimming.
func (c *RowClassifier) IsSummary(row []string) bool {
	if len(row) == 0 {
		return false
	}
	_, ok := c.markers[strings.TrimSpace(row[0])]
	return ok
}

// IsBlank reports whether every cell is empty.
func (c *RowClassifier) IsBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
