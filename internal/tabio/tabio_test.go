package tabio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/chaostab-cli/internal/table"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tb := table.New("people")
	require.NoError(t, tb.AddColumn("name", table.KindString, []any{"Ada", nil, "Linus"}))
	require.NoError(t, tb.AddColumn("age", table.KindInteger, []any{int64(36), int64(54), nil}))
	require.NoError(t, tb.AddColumn("score", table.KindFloat, []any{12.5, nil, 3.25}))
	require.NoError(t, tb.AddColumn("active", table.KindBool, []any{true, false, nil}))
	require.NoError(t, tb.AddColumn("joined", table.KindDate, []any{
		time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), nil, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, tb.AddColumn("phone", table.KindString, []any{"0612345678", "007", nil}))
	return tb
}

func assertSameCells(t *testing.T, want, got *table.Table) {
	t.Helper()
	require.Equal(t, want.ColumnNames(), got.ColumnNames())
	require.Equal(t, want.NumRows(), got.NumRows())
	for j := range want.Columns {
		assert.Equal(t, want.Columns[j].Kind, got.Columns[j].Kind, "kind of %s", want.Columns[j].Name)
		for i := range want.Columns[j].Cells {
			assert.Equal(t, want.Columns[j].Cells[i], got.Columns[j].Cells[i], "cell %d of %s", i, want.Columns[j].Name)
		}
	}
}

func TestCSVRoundTripKeepsNullsAndKinds(t *testing.T) {
	tb := sampleTable(t)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tb))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "name,age,score,active,joined,phone", lines[0])
	assert.Equal(t, ",54,,false,,007", lines[2])

	got, err := ReadCSV(&buf, "people", ReadOptions{})
	require.NoError(t, err)
	assertSameCells(t, tb, got)
}

func TestRoundTripKeepsSurroundingSpaces(t *testing.T) {
	tb := table.New("padded")
	require.NoError(t, tb.AddColumn("label", table.KindString, []any{"  padded", "tail  ", "x", nil}))
	require.NoError(t, tb.AddColumn("code", table.KindString, []any{" 12", "7", "  N/A", "y"}))
	dir := t.TempDir()
	for _, ext := range []string{"csv", "xlsx", "parquet"} {
		path := filepath.Join(dir, "padded."+ext)
		require.NoError(t, WriteFile(path, Sheet{Name: "padded", Table: tb}), ext)
		got, err := ReadFile(path, ReadOptions{})
		require.NoError(t, err, ext)
		assertSameCells(t, tb, got)
	}
}

func TestParquetKeepsEmptyStringsApartFromNulls(t *testing.T) {
	tb := table.New("blank")
	require.NoError(t, tb.AddColumn("note", table.KindString, []any{"", nil, "z"}))
	path := filepath.Join(t.TempDir(), "blank.parquet")
	require.NoError(t, WriteFile(path, Sheet{Table: tb}))

	got, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []any{"", nil, "z"}, got.Columns[0].Cells)
}

func TestReadCSVHeaderCleanupAndMaxRows(t *testing.T) {
	in := "\ufeffid,,id\n1,a,x\n2,b,y\n3,c,z\n"
	got, err := ReadCSV(strings.NewReader(in), "t", ReadOptions{MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "column_2", "id_1"}, got.ColumnNames())
	assert.Equal(t, 2, got.NumRows())
	assert.Equal(t, table.KindInteger, got.Columns[0].Kind)
}

func TestReadCSVEmptyInput(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""), "empty", ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumCols())
	assert.Equal(t, 0, got.NumRows())
}

func TestReadFileTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.tsv")
	require.NoError(t, os.WriteFile(path, []byte("a\tb\n1\thello\n"), 0o644))
	got, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "data", got.Name)
	assert.Equal(t, []string{"a", "b"}, got.ColumnNames())
	assert.Equal(t, "hello", got.Columns[1].Cells[0])
}

func TestXLSXSheetsAndBlankCells(t *testing.T) {
	tb := sampleTable(t)
	other := tb.Clone()
	other.Columns[0].Name = "full_name"

	path := filepath.Join(t.TempDir(), "out", "tables.xlsx")
	require.NoError(t, WriteFile(path,
		Sheet{Name: "Version 1", Table: tb},
		Sheet{Name: "Version 2", Table: other},
	))

	f, err := os.Open(path)
	require.NoError(t, err)
	names, err := SheetNames(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, []string{"Version 1", "Version 2"}, names)

	got, err := ReadFile(path, ReadOptions{Sheet: "version 2"})
	require.NoError(t, err)
	assert.Equal(t, "Version 2", got.Name)
	assertSameCells(t, other, got)

	first, err := ReadFile(path, ReadOptions{SheetIndex: 1})
	require.NoError(t, err)
	assertSameCells(t, tb, first)

	_, err = ReadFile(path, ReadOptions{Sheet: "Version 9"})
	assert.ErrorContains(t, err, "Available sheets: Version 1, Version 2")
	_, err = ReadFile(path, ReadOptions{SheetIndex: 5})
	assert.ErrorContains(t, err, "out of range")
}

func TestValidateSheetNames(t *testing.T) {
	assert.NoError(t, ValidateSheetNames([]string{"Version 1", "Version 2"}))
	assert.Error(t, ValidateSheetNames([]string{""}))
	assert.Error(t, ValidateSheetNames([]string{strings.Repeat("x", 32)}))
	assert.Error(t, ValidateSheetNames([]string{"a/b"}))
	assert.Error(t, ValidateSheetNames([]string{"'quoted"}))
	assert.Error(t, ValidateSheetNames([]string{"Data", "data"}))
}

func TestParquetRoundTripKeepsNulls(t *testing.T) {
	tb := sampleTable(t)
	path := filepath.Join(t.TempDir(), "people.parquet")
	require.NoError(t, WriteFile(path, Sheet{Table: tb}))

	got, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "people", got.Name)
	assertSameCells(t, tb, got)
}

func TestWriteFileRejectsSeveralSheetsForSingleTableFormats(t *testing.T) {
	tb := sampleTable(t)
	dir := t.TempDir()
	err := WriteFile(filepath.Join(dir, "a.csv"), Sheet{Table: tb}, Sheet{Table: tb})
	assert.ErrorContains(t, err, "single table")
	err = WriteFile(filepath.Join(dir, "a.csv"))
	assert.ErrorContains(t, err, "no tables")
}

func TestRegistry(t *testing.T) {
	for file, want := range map[string]string{
		"a.csv": "csv", "B.TSV": "csv", "c.xlsx": "xlsx", "d.parquet": "parquet",
	} {
		c, err := ForFile(file)
		require.NoError(t, err, file)
		assert.Equal(t, want, c.Name())
	}
	_, err := ForFile("notes.docx")
	assert.True(t, errors.Is(err, ErrUnsupported))

	c, err := ByName("XLSX")
	require.NoError(t, err)
	assert.True(t, c.MultiSheet())
	_, err = ByName("json")
	assert.ErrorIs(t, err, ErrUnsupported)
}
