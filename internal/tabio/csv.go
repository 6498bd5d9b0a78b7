package tabio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/chaostab-cli/internal/table"
)

type csvCodec struct{}

func (csvCodec) Name() string     { return "csv" }
func (csvCodec) MultiSheet() bool { return false }

func (csvCodec) CanHandle(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvCodec) Write(w io.Writer, sheets []Sheet) error {
	return WriteCSV(w, sheets[0].Table)
}

func (csvCodec) Read(r io.Reader, name string, opt ReadOptions) (*table.Table, error) {
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(name)
	}
	return ReadCSV(r, baseName(name), opt)
}

// WriteCSV writes t as UTF-8 CSV: a header row of column names followed by
// one line per row, without an index column. Missing cells are empty fields.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// ReadCSV loads CSV text into a table. Empty fields become missing cells and
// column kinds are inferred.
func ReadCSV(r io.Reader, name string, opt ReadOptions) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return table.New(name), nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+2, err)
		}
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
		rows = append(rows, rec)
	}
	return tableFromRecords(name, header, rows, nil)
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
