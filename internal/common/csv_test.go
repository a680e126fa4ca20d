package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSheetRow struct {
	Name   string          `csv:"Name"`
	Amount decimal.Decimal `csv:"Amount"`
	Count  int             `csv:"Count"`
}

func TestReadCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.csv")
	content := "Name,Amount,Count\nGroceries,-45.20,3\nIncome,1500.00,1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := ReadCSVFile[testSheetRow](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Groceries", rows[0].Name)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromFloat(-45.2)))
	assert.Equal(t, 3, rows[0].Count)
	assert.Equal(t, "Income", rows[1].Name)
}

func TestReadCSVFile_MissingFile(t *testing.T) {
	_, err := ReadCSVFile[testSheetRow](filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestWriteCSVFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "sheet.csv")

	in := []testSheetRow{
		{Name: "Dining", Amount: decimal.NewFromFloat(-12.5), Count: 2},
		{Name: "Misc", Amount: decimal.Zero, Count: 0},
	}
	require.NoError(t, WriteCSVFile(in, path))

	out, err := ReadCSVFile[testSheetRow](path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Dining", out[0].Name)
	assert.True(t, out[0].Amount.Equal(in[0].Amount))
}

func TestWriteCSVFile_NilRows(t *testing.T) {
	var rows []testSheetRow
	err := WriteCSVFile(rows, filepath.Join(t.TempDir(), "x.csv"))
	assert.Error(t, err)
}

func TestSetDelimiter(t *testing.T) {
	original := Delimiter
	defer SetDelimiter(original)

	SetDelimiter(';')
	assert.Equal(t, ';', Delimiter)

	dir := t.TempDir()
	path := filepath.Join(dir, "semi.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name;Amount;Count\nA;1.00;1\n"), 0o644))

	rows, err := ReadCSVFile[testSheetRow](path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].Name)
}
