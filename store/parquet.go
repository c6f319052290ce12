package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// columnsMetadataKey records the declared column order, which the parquet
// schema itself does not keep.
const columnsMetadataKey = "flatsql.columns"

// ParquetCodec stores a table as an Apache Parquet file with one optional
// string column per table column.
type ParquetCodec struct{}

func (ParquetCodec) Extension() string {
	return ".parquet"
}

// Decode reads the whole file into memory and returns its rows. Column
// values are converted to text.
func (ParquetCodec) Decode(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return Table{}, nil
	}

	pqFile, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Table{}, fmt.Errorf("failed to open parquet file: %w", err)
	}

	leaves := leafNames(pqFile.Schema())
	table := Table{
		Columns: parquetColumns(pqFile, leaves),
		Rows:    make([]Row, 0, pqFile.NumRows()),
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	buf := make([]parquet.Row, 128)
	for {
		n, err := reader.ReadRows(buf)
		for _, values := range buf[:n] {
			row := make(Row, len(leaves))
			for _, name := range leaves {
				row[name] = nil
			}
			for _, v := range values {
				if v.Column() < 0 || v.Column() >= len(leaves) || v.IsNull() {
					continue
				}
				row[leaves[v.Column()]] = v.String()
			}
			table.Rows = append(table.Rows, row)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Table{}, fmt.Errorf("failed to read rows: %w", err)
		}
	}

	return table, nil
}

// leafNames names every leaf column by its dotted path, indexed by column
// index.
func leafNames(schema *parquet.Schema) []string {
	paths := schema.Columns()
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = strings.Join(path, ".")
	}
	return names
}

// parquetColumns returns the column order stored in the file metadata, or
// the leaf column order for files written elsewhere.
func parquetColumns(pqFile *parquet.File, leaves []string) []string {
	if value, ok := pqFile.Lookup(columnsMetadataKey); ok && value != "" {
		return strings.Split(value, "\x1f")
	}
	return append([]string(nil), leaves...)
}

func (ParquetCodec) Encode(w io.Writer, table Table) error {
	columns := table.ColumnNames()
	if len(columns) == 0 {
		return nil
	}

	group := make(parquet.Group, len(columns))
	for _, col := range columns {
		group[col] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("table", group)

	writer := parquet.NewWriter(w, schema,
		parquet.KeyValueMetadata(columnsMetadataKey, strings.Join(columns, "\x1f")),
	)

	// Leaf columns follow the schema field order, not the declared order.
	fields := schema.Fields()
	rows := make([]parquet.Row, 0, len(table.Rows))
	for _, r := range table.Rows {
		row := make(parquet.Row, len(fields))
		for i, field := range fields {
			v, ok := r[field.Name()]
			if !ok || v == nil {
				row[i] = parquet.NullValue().Level(0, 0, i)
				continue
			}
			row[i] = parquet.ByteArrayValue([]byte(FormatValue(v))).Level(0, 1, i)
		}
		rows = append(rows, row)
	}

	if _, err := writer.WriteRows(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}

	return nil
}
