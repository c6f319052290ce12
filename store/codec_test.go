package store_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vegasq/flatsql/store"
	"gotest.tools/v3/assert"
)

func usersTable() store.Table {
	return store.Table{
		Columns: []string{"id", "name", "age"},
		Rows: []store.Row{
			{"id": "1", "name": "A", "age": "30"},
			{"id": "2", "name": "B, Jr.", "age": "25"},
		},
	}
}

func TestCSVCodec_Decode(t *testing.T) {
	table, err := store.CSVCodec{}.Decode(strings.NewReader("id,name,age\n1,A,30\n2,\"B, Jr.\",25\n"))
	assert.NilError(t, err)
	assert.DeepEqual(t, table, usersTable())
}

func TestCSVCodec_DecodeEmpty(t *testing.T) {
	table, err := store.CSVCodec{}.Decode(strings.NewReader(""))
	assert.NilError(t, err)
	assert.Equal(t, len(table.Columns), 0)
	assert.Equal(t, len(table.Rows), 0)

	table, err = store.CSVCodec{}.Decode(strings.NewReader("id,name\n"))
	assert.NilError(t, err)
	assert.DeepEqual(t, table.Columns, []string{"id", "name"})
	assert.Equal(t, len(table.Rows), 0)
}

func TestCSVCodec_DecodeRagged(t *testing.T) {
	_, err := store.CSVCodec{}.Decode(strings.NewReader("id,name\n1\n"))
	assert.ErrorContains(t, err, "failed to read CSV record")
}

func TestCSVCodec_Encode(t *testing.T) {
	table := usersTable()
	table.Rows = append(table.Rows, store.Row{"id": "3", "name": nil, "age": int64(7)})

	var buf bytes.Buffer
	assert.NilError(t, store.CSVCodec{}.Encode(&buf, table))
	assert.Equal(t, buf.String(), "id,name,age\n1,A,30\n2,\"B, Jr.\",25\n3,,7\n")
}

func TestCSVCodec_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	assert.NilError(t, store.CSVCodec{}.Encode(&buf, usersTable()))

	table, err := store.CSVCodec{}.Decode(&buf)
	assert.NilError(t, err)
	assert.DeepEqual(t, table, usersTable())
}

func TestParquetCodec_RoundTrip(t *testing.T) {
	source := usersTable()
	source.Rows = append(source.Rows, store.Row{"id": "3", "name": nil, "age": "22"})

	var buf bytes.Buffer
	assert.NilError(t, store.ParquetCodec{}.Encode(&buf, source))

	table, err := store.ParquetCodec{}.Decode(&buf)
	assert.NilError(t, err)

	// Declared column order survives even though parquet sorts its fields
	assert.DeepEqual(t, table.Columns, []string{"id", "name", "age"})
	assert.DeepEqual(t, table.Rows, source.Rows)
}

func TestParquetCodec_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	assert.NilError(t, store.ParquetCodec{}.Encode(&buf, store.Table{}))

	table, err := store.ParquetCodec{}.Decode(&buf)
	assert.NilError(t, err)
	assert.Equal(t, len(table.Rows), 0)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{"text", "text"},
		{[]byte("bytes"), "bytes"},
		{int64(42), "42"},
		{float64(12), "12"},
		{float64(2.5), "2.5"},
		{true, "true"},
	}

	for _, tt := range tests {
		assert.Equal(t, store.FormatValue(tt.value), tt.want)
	}
}
