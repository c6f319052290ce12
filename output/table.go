package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/vegasq/flatsql/store"
)

// TableFormatter renders rows as an aligned text table.
type TableFormatter struct {
	writer  io.Writer
	options options
}

func NewTableFormatter(w io.Writer, opts ...Option) *TableFormatter {
	return &TableFormatter{writer: w, options: newOptions(opts)}
}

func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format renders NULL for nil values so they stand apart from empty text.
func (t *TableFormatter) Format(rows []store.Row) error {
	columns := t.options.columnsFor(rows)
	if len(columns) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			if row[col] == nil {
				record[i] = "NULL"
				continue
			}
			record[i] = store.FormatValue(row[col])
		}
		table.Append(record)
	}

	table.Render()
	return nil
}
