package tabio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/chaostab-cli/internal/table"
)

type parquetCodec struct{}

func (parquetCodec) Name() string     { return "parquet" }
func (parquetCodec) MultiSheet() bool { return false }

func (parquetCodec) CanHandle(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".parquet")
}

func (parquetCodec) Write(w io.Writer, sheets []Sheet) error {
	return WriteParquet(w, sheets[0].Table)
}

func (parquetCodec) Read(r io.Reader, name string, opt ReadOptions) (*table.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return ReadParquet(bytes.NewReader(data), baseName(name), opt)
}

// WriteParquet writes t as a Snappy-compressed Parquet file. Every column is a
// nullable UTF-8 string column; missing cells are nulls.
func WriteParquet(w io.Writer, t *table.Table) error {
	mem := memory.NewGoAllocator()
	fields := make([]arrow.Field, t.NumCols())
	for j, c := range t.Columns {
		fields[j] = arrow.Field{Name: c.Name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for j, c := range t.Columns {
		sb := b.Field(j).(*array.StringBuilder)
		for _, v := range c.Cells {
			if v == nil {
				sb.AppendNull()
				continue
			}
			sb.Append(table.FormatCell(v, c.Kind))
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	fw, err := pqarrow.NewFileWriter(schema, w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return fmt.Errorf("write parquet record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet loads a Parquet file. Columns are read as text and their kinds
// inferred, so files written by WriteParquet come back with typed cells.
func ReadParquet(r parquet.ReaderAtSeeker, name string, opt ReadOptions) (*table.Table, error) {
	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(context.Background(), r, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	defer tbl.Release()

	schema := tbl.Schema()
	header := make([]string, tbl.NumCols())
	for j := range header {
		header[j] = schema.Field(j).Name
	}
	nrows := int(tbl.NumRows())
	if opt.MaxRows > 0 && nrows > opt.MaxRows {
		nrows = opt.MaxRows
	}
	rows := make([][]string, nrows)
	nulls := make([][]bool, nrows)
	for i := range rows {
		rows[i] = make([]string, len(header))
		nulls[i] = make([]bool, len(header))
	}
	for j := range header {
		i := 0
		for _, chunk := range tbl.Column(j).Data().Chunks() {
			for k := 0; k < chunk.Len() && i < nrows; k++ {
				if chunk.IsNull(k) {
					nulls[i][j] = true
				} else {
					rows[i][j] = chunk.ValueStr(k)
				}
				i++
			}
		}
	}
	return tableFromRecords(name, header, rows, nulls)
}
