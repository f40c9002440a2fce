package datanorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		head     []byte
		want     Format
		wantErr  bool
	}{
		{"zip container is xlsx", "export.xlsx", []byte("PK\x03\x04rest"), FormatXLSX, false},
		{"zip container wins over extension", "export.csv", []byte("PK\x03\x04rest"), FormatXLSX, false},
		{"plain csv", "customers.csv", []byte("name,total_spent"), FormatCSV, false},
		{"no extension text", "upload", []byte("name,total_spent"), FormatCSV, false},
		{"legacy xls rejected", "old.xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, "", true},
		{"xlsx extension without zip", "fake.xlsx", []byte("name,total"), "", true},
		{"binary with unknown extension", "blob.bin", []byte{0x01, 0x00, 0x02}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.filename, tt.head)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRowClassifier(t *testing.T) {
	c := NewRowClassifier(nil)

	assert.True(t, c.IsSummary([]string{"Total", "", "125000"}))
	assert.True(t, c.IsSummary([]string{" Avg. ", "4"}))
	assert.False(t, c.IsSummary([]string{"Totally Real Customer", "4"}))
	assert.False(t, c.IsSummary([]string{"total", "4"}), "markers are case-sensitive")
	assert.False(t, c.IsSummary(nil))

	assert.True(t, c.IsBlank([]string{"", "  ", ""}))
	assert.False(t, c.IsBlank([]string{"", "x"}))

	custom := NewRowClassifier([]string{"Grand Total"})
	assert.True(t, custom.IsSummary([]string{"Grand Total"}))
	assert.False(t, custom.IsSummary([]string{"Total"}))
}
