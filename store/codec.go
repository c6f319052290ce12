package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Codec converts between a table and its flat-file encoding.
type Codec interface {
	// Extension is appended to the table name to form the object path.
	Extension() string
	Decode(r io.Reader) (Table, error)
	Encode(w io.Writer, table Table) error
}

// CSVCodec stores a table as comma-separated values. The first record is
// the header naming the columns.
type CSVCodec struct{}

func (CSVCodec) Extension() string {
	return ".csv"
}

// Decode reads a header record followed by data records. An empty input is
// an empty table without columns.
func (CSVCodec) Decode(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, nil
		}
		return Table{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	table := Table{
		Columns: append([]string(nil), header...),
		Rows:    make([]Row, 0),
	}

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Table{}, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := make(Row, len(table.Columns))
		for i, col := range table.Columns {
			row[col] = record[i]
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Encode writes the header and one record per row. Absent values are
// written as empty fields.
func (CSVCodec) Encode(w io.Writer, table Table) error {
	csvWriter := csv.NewWriter(w)
	columns := table.ColumnNames()

	if len(columns) == 0 {
		csvWriter.Flush()
		return csvWriter.Error()
	}

	if err := csvWriter.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range table.Rows {
		for i, col := range columns {
			record[i] = FormatValue(row[col])
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return nil
}

// FormatValue renders a row value as stored text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case float32, float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
