package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRequiresOneSource(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run("", "", "", "", false, &out))
	assert.Error(t, run("", "a.csv", "SELECT 1", "", false, &out))
}

func TestRunCSV(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "customers.csv")
	csv := "name,phone,orders,amount,last_order\n" +
		"Asha,9845012345,25,7500,2025-06-25\n" +
		"Ravi,,2,400,2025-06-27\n"
	require.NoError(t, os.WriteFile(in, []byte(csv), 0o644))

	outPath := filepath.Join(dir, "result.xlsx")
	var out bytes.Buffer
	err := run(filepath.Join(dir, "missing.yaml"), in, "", outPath, false, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Total customers:   2")
	assert.Contains(t, out.String(), "Rows imported:     2 of 2")
	assert.Contains(t, out.String(), "Workbook written to "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data[:2]))
}

func TestRunMissingInput(t *testing.T) {
	var out bytes.Buffer
	err := run(filepath.Join(t.TempDir(), "missing.yaml"), "/nonexistent/customers.csv", "", "", false, &out)
	assert.Error(t, err)
}
