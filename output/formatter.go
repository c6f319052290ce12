package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/vegasq/flatsql/store"
)

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to convert rows to the target format
// and SetOutput to change the output destination.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(rows []store.Row) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Option configures a formatter.
type Option func(*options)

type options struct {
	columns []string
}

// WithColumns fixes the column order of header-based formats. Without it
// the header is the sorted union of row keys.
func WithColumns(columns []string) Option {
	return func(o *options) {
		o.columns = append([]string(nil), columns...)
	}
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Names of the supported formats.
const (
	FormatJSONLines = "jsonl"
	FormatJSON      = "json"
	FormatCSV       = "csv"
	FormatTable     = "table"
)

// New returns the formatter registered under name.
func New(name string, w io.Writer, opts ...Option) (Formatter, error) {
	switch name {
	case FormatJSONLines:
		return NewJSONFormatter(w), nil
	case FormatJSON:
		return NewJSONArrayFormatter(w), nil
	case FormatCSV:
		return NewCSVFormatter(w, opts...), nil
	case FormatTable:
		return NewTableFormatter(w, opts...), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
}

// columnsFor returns the configured columns, or the sorted union of keys
// across all rows so sparse rows from outer joins keep every column.
func (o options) columnsFor(rows []store.Row) []string {
	if len(o.columns) > 0 {
		return o.columns
	}

	columnSet := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			columnSet[col] = true
		}
	}

	columns := make([]string, 0, len(columnSet))
	for col := range columnSet {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	return columns
}
