package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/flatsql/store"
)

// CSVFormatter outputs rows as CSV format
type CSVFormatter struct {
	writer  io.Writer
	options options
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer, opts ...Option) *CSVFormatter {
	return &CSVFormatter{writer: w, options: newOptions(opts)}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes a header followed by one record per row. Nothing is
// written for an empty result unless columns were configured.
func (c *CSVFormatter) Format(rows []store.Row) error {
	csvWriter := csv.NewWriter(c.writer)

	columns := c.options.columnsFor(rows)
	if len(columns) == 0 {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			return fmt.Errorf("failed to flush CSV writer: %w", err)
		}
		return nil
	}

	if err := csvWriter.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = formatValue(row[col])
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

// formatValue converts a value to text, guarding against spreadsheet
// formula injection.
func formatValue(v any) string {
	s := store.FormatValue(v)
	if _, isString := v.(string); !isString || s == "" {
		return s
	}

	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		return "'" + strings.ReplaceAll(s, "'", "''")
	}
	return s
}
