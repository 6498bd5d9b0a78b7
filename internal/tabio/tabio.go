// Package tabio reads and writes tables as CSV, XLSX and Parquet files.
package tabio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/chaostab-cli/internal/table"
	"github.com/KaramelBytes/chaostab-cli/internal/utils"
)

// Sheet is a table paired with the name it is exported under. Formats with a
// single table per file ignore the name.
type Sheet struct {
	Name  string
	Table *table.Table
}

// ReadOptions controls how files are loaded into a table.
type ReadOptions struct {
	// Delimiter for CSV. If 0, derived from the file extension.
	Delimiter rune
	// Sheet selects an XLSX sheet by name; SheetIndex (1-based) is used
	// when Sheet is empty. Both empty means the first sheet.
	Sheet      string
	SheetIndex int
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// Codec encodes and decodes one file format.
type Codec interface {
	Name() string
	CanHandle(filename string) bool
	// MultiSheet reports whether Write accepts more than one sheet.
	MultiSheet() bool
	Write(w io.Writer, sheets []Sheet) error
	Read(r io.Reader, name string, opt ReadOptions) (*table.Table, error)
}

var registry []Codec

// Register adds a codec to the registry.
func Register(c Codec) {
	registry = append(registry, c)
}

// ErrUnsupported indicates no codec handles a file name.
var ErrUnsupported = errors.New("unsupported table format")

// ForFile selects a codec by file extension.
func ForFile(filename string) (Codec, error) {
	for _, c := range registry {
		if c.CanHandle(filename) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(filename))
}

// ByName selects a codec by its format name (csv, xlsx, parquet).
func ByName(name string) (Codec, error) {
	for _, c := range registry {
		if strings.EqualFold(c.Name(), name) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
}

// WriteFile encodes sheets with the codec matching path and writes the file
// atomically.
func WriteFile(path string, sheets ...Sheet) error {
	c, err := ForFile(path)
	if err != nil {
		return err
	}
	if len(sheets) == 0 {
		return fmt.Errorf("write %s: no tables", filepath.Base(path))
	}
	if len(sheets) > 1 && !c.MultiSheet() {
		return fmt.Errorf("write %s: %s holds a single table, got %d", filepath.Base(path), c.Name(), len(sheets))
	}
	var buf bytes.Buffer
	if err := c.Write(&buf, sheets); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// ReadFile loads a table from path using the codec matching its extension.
func ReadFile(path string, opt ReadOptions) (*table.Table, error) {
	c, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Name(), err)
	}
	defer f.Close()
	t, err := c.Read(f, path, opt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// tableFromRecords turns a header and string rows into a typed table. Short
// rows are padded, empty header cells and duplicates get unique names. Cell
// text is kept as read. nulls marks missing cells when the source records
// them; otherwise empty cells are missing.
func tableFromRecords(name string, header []string, rows [][]string, nulls [][]bool) (*table.Table, error) {
	names := uniqueHeader(header)
	out := table.New(name)
	for j, col := range names {
		raw := make([]string, len(rows))
		var missing []bool
		if nulls != nil {
			missing = make([]bool, len(rows))
		}
		for i, r := range rows {
			if j < len(r) {
				raw[i] = r[j]
			}
			if missing != nil {
				missing[i] = j >= len(nulls[i]) || nulls[i][j]
			}
		}
		kind, cells := table.InferMissing(raw, missing)
		if err := out.AddColumn(col, kind, cells); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for j, h := range header {
		h = strings.TrimSpace(h)
		if j == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == "" {
			h = fmt.Sprintf("column_%d", j+1)
		}
		name := h
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		seen[name] = true
		out[j] = name
	}
	return out
}

func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

func init() {
	Register(csvCodec{})
	Register(xlsxCodec{})
	Register(parquetCodec{})
}
