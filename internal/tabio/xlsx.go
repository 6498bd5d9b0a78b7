package tabio

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/chaostab-cli/internal/table"
	"github.com/xuri/excelize/v2"
)

type xlsxCodec struct{}

func (xlsxCodec) Name() string     { return "xlsx" }
func (xlsxCodec) MultiSheet() bool { return true }

func (xlsxCodec) CanHandle(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxCodec) Write(w io.Writer, sheets []Sheet) error {
	return WriteXLSX(w, sheets)
}

func (xlsxCodec) Read(r io.Reader, name string, opt ReadOptions) (*table.Table, error) {
	return ReadXLSX(r, baseName(name), opt)
}

// maxSheetName is Excel's limit on sheet name length.
const maxSheetName = 31

// ValidateSheetNames checks names against Excel's sheet naming rules.
func ValidateSheetNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("sheet name is empty")
		}
		if utf8.RuneCountInString(n) > maxSheetName {
			return fmt.Errorf("sheet name %q longer than %d characters", n, maxSheetName)
		}
		if strings.ContainsAny(n, `[]:*?/\`) {
			return fmt.Errorf("sheet name %q contains one of []:*?/\\", n)
		}
		if strings.HasPrefix(n, "'") || strings.HasSuffix(n, "'") {
			return fmt.Errorf("sheet name %q starts or ends with an apostrophe", n)
		}
		key := strings.ToLower(n)
		if seen[key] {
			return fmt.Errorf("duplicate sheet name %q", n)
		}
		seen[key] = true
	}
	return nil
}

// WriteXLSX writes one sheet per table, each with a header row and no index
// column. Missing cells are left out entirely so they read back as blank.
func WriteXLSX(w io.Writer, sheets []Sheet) error {
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	if err := ValidateSheetNames(names); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("add sheet %q: %w", s.Name, err)
		}
		if err := writeSheet(f, s.Name, s.Table); err != nil {
			return fmt.Errorf("sheet %q: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *table.Table) error {
	for j, c := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, c.Name); err != nil {
			return err
		}
	}
	for j, c := range t.Columns {
		for i, v := range c.Cells {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, xlsxValue(v, c.Kind)); err != nil {
				return err
			}
		}
	}
	return nil
}

// xlsxValue keeps numbers native and renders timestamps and booleans as text
// so they survive the round trip without cell styles.
func xlsxValue(v any, kind table.Kind) any {
	switch x := v.(type) {
	case int64, float64, string:
		return x
	default:
		return table.FormatCell(x, kind)
	}
}

// ReadXLSX loads one sheet of a workbook. The first row is the header; blank
// cells become missing values.
func ReadXLSX(r io.Reader, name string, opt ReadOptions) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook '%s' has no sheets", name)
	}
	target := ""
	switch {
	case opt.Sheet != "":
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				target = s
				break
			}
		}
		if target == "" {
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				opt.Sheet, name, strings.Join(sheets, ", "))
		}
	case opt.SheetIndex > 0:
		if opt.SheetIndex > len(sheets) {
			return nil, fmt.Errorf("sheet index %d out of range: workbook '%s' has %d sheets", opt.SheetIndex, name, len(sheets))
		}
		target = sheets[opt.SheetIndex-1]
	default:
		target = sheets[0]
	}

	rows, err := f.GetRows(target, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", target, err)
	}
	if len(rows) == 0 {
		return table.New(target), nil
	}
	body := rows[1:]
	if opt.MaxRows > 0 && len(body) > opt.MaxRows {
		body = body[:opt.MaxRows]
	}
	return tableFromRecords(target, rows[0], body, nil)
}

// SheetNames lists the sheets of a workbook in order.
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
