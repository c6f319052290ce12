// Package output provides formatters for query results.
//
// Supported formats:
//   - JSON Lines: One JSON object per line
//   - JSON: One indented array holding every row
//   - CSV: Comma-separated values with header row
//   - Table: Aligned text table for terminals
//
// CSV and table output take their header from WithColumns when given,
// otherwise from the sorted union of row keys.
//
// Example usage:
//
//	formatter, err := output.New("csv", os.Stdout, output.WithColumns(fields))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(rows); err != nil {
//	    log.Fatal(err)
//	}
package output
