package query

import (
	"github.com/vegasq/flatsql/store"
)

// ApplySelectList projects every row onto the selected fields, keyed by
// field name. "*" keeps whole rows.
//
// With wholeSet set, each aggregate field is computed once over the entire
// row set and repeated on every output row, while plain fields keep the
// row's own value. Otherwise aggregate fields are read from the row, as
// produced by ApplyGroupBy.
func ApplySelectList(rows []store.Row, fields []Field, wholeSet bool) ([]store.Row, error) {
	projected := make([]store.Row, 0, len(rows))

	if len(fields) == 1 && fields[0].Name == "*" {
		for _, row := range rows {
			projected = append(projected, row.Clone())
		}
		return projected, nil
	}

	var aggregates store.Row
	if wholeSet && len(rows) > 0 {
		aggregates = make(store.Row)
		for _, field := range fields {
			if field.Aggregate == nil {
				continue
			}
			value, err := ComputeAggregate(*field.Aggregate, rows)
			if err != nil {
				return nil, err
			}
			aggregates[field.Name] = value
		}
	}

	for _, row := range rows {
		out := make(store.Row, len(fields))
		for _, field := range fields {
			if value, ok := aggregates[field.Name]; ok && field.Aggregate != nil {
				out[field.Name] = value
				continue
			}

			value, ok := lookupColumn(row, field.Name)
			if !ok {
				return nil, evaluationErrorf("column %q does not exist", field.Name)
			}
			out[field.Name] = value
		}
		projected = append(projected, out)
	}

	return projected, nil
}
