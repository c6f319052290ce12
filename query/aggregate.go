package query

import (
	"strings"

	"github.com/vegasq/flatsql/store"
)

// Group represents a group of rows for aggregation
type Group struct {
	Key    string      // Hash key for the group
	Values store.Row   // Column values for GROUP BY columns
	Rows   []store.Row // All rows in the group
}

// ApplyGroupBy partitions rows by the GROUP BY columns and computes the
// aggregate fields for each group. Groups are returned in first-seen order,
// each row holding the GROUP BY columns plus the aggregates.
func ApplyGroupBy(rows []store.Row, groupBy []string, fields []Field) ([]store.Row, error) {
	if err := validateSelectListWithGroupBy(fields, groupBy); err != nil {
		return nil, err
	}

	groups := make(map[string]*Group)
	var order []*Group

	for _, row := range rows {
		key, groupValues, err := computeGroupKey(row, groupBy)
		if err != nil {
			return nil, err
		}

		if group, exists := groups[key]; exists {
			group.Rows = append(group.Rows, row)
			continue
		}

		group := &Group{
			Key:    key,
			Values: groupValues,
			Rows:   []store.Row{row},
		}
		groups[key] = group
		order = append(order, group)
	}

	result := make([]store.Row, 0, len(order))
	for _, group := range order {
		aggregatedRow, err := computeAggregates(group, fields)
		if err != nil {
			return nil, err
		}
		result = append(result, aggregatedRow)
	}

	return result, nil
}

// computeGroupKey computes a hash key for a group based on GROUP BY columns
func computeGroupKey(row store.Row, groupBy []string) (string, store.Row, error) {
	var keyBuilder strings.Builder
	groupValues := make(store.Row, len(groupBy))

	for i, col := range groupBy {
		value, exists := lookupColumn(row, col)
		if !exists {
			return "", nil, evaluationErrorf("GROUP BY column %q does not exist", col)
		}

		if i > 0 {
			keyBuilder.WriteString("\x00||\x00") // Use unlikely separator to avoid collisions
		}
		// Include column name in key to prevent cross-column collisions
		keyBuilder.WriteString(col)
		keyBuilder.WriteString("\x00:\x00")
		if value == nil {
			keyBuilder.WriteString("\x00")
		} else {
			keyBuilder.WriteString(store.FormatValue(value))
		}
		groupValues[col] = value
	}

	return keyBuilder.String(), groupValues, nil
}

// computeAggregates builds the output row of one group
func computeAggregates(group *Group, fields []Field) (store.Row, error) {
	result := group.Values.Clone()

	for _, field := range fields {
		if field.Aggregate == nil {
			continue
		}
		value, err := ComputeAggregate(*field.Aggregate, group.Rows)
		if err != nil {
			return nil, err
		}
		result[field.Name] = value
	}

	return result, nil
}

// ComputeAggregate applies one aggregate function to a row set.
//
// COUNT returns int64 and SUM returns float64, both 0 on an empty set. AVG,
// MIN and MAX return nil on an empty set. MIN and MAX compare numerically
// when every value is numeric and return float64, otherwise they compare
// lexically and return the text.
func ComputeAggregate(agg Aggregate, rows []store.Row) (interface{}, error) {
	if agg.Column == "*" {
		if agg.Function != AggregateCount {
			return nil, evaluationErrorf("%s(*) is not supported", agg.Function)
		}
		return int64(len(rows)), nil
	}

	values, err := aggregateValues(agg, rows)
	if err != nil {
		return nil, err
	}

	switch agg.Function {
	case AggregateCount:
		return int64(len(values)), nil
	case AggregateSum:
		return sumValues(values), nil
	case AggregateAvg:
		if len(values) == 0 {
			return nil, nil
		}
		return sumValues(values) / float64(len(values)), nil
	case AggregateMin:
		return extremeValue(values, -1), nil
	case AggregateMax:
		return extremeValue(values, 1), nil
	default:
		return nil, evaluationErrorf("unknown aggregate function %s", agg.Function)
	}
}

// aggregateValues collects the non-NULL values of the aggregate's column.
// A column missing from every row of a non-empty set is an error.
func aggregateValues(agg Aggregate, rows []store.Row) ([]interface{}, error) {
	values := make([]interface{}, 0, len(rows))
	present := false

	for _, row := range rows {
		v, ok := lookupColumn(row, agg.Column)
		if !ok {
			continue
		}
		present = true
		if v != nil {
			values = append(values, v)
		}
	}

	if len(rows) > 0 && !present {
		return nil, evaluationErrorf("%s references column %q which does not exist", agg, agg.Column)
	}

	return values, nil
}

// sumValues adds the numeric values; anything else counts as 0
func sumValues(values []interface{}) float64 {
	var sum float64
	for _, v := range values {
		if f, ok := toFloat64(v); ok {
			sum += f
		}
	}
	return sum
}

// extremeValue returns the smallest (sign -1) or largest (sign 1) value
func extremeValue(values []interface{}, sign int) interface{} {
	if len(values) == 0 {
		return nil
	}

	nums := make([]float64, 0, len(values))
	for _, v := range values {
		f, ok := toFloat64(v)
		if !ok {
			break
		}
		nums = append(nums, f)
	}

	if len(nums) == len(values) {
		best := nums[0]
		for _, f := range nums[1:] {
			if (sign < 0 && f < best) || (sign > 0 && f > best) {
				best = f
			}
		}
		return best
	}

	best := store.FormatValue(values[0])
	for _, v := range values[1:] {
		s := store.FormatValue(v)
		if strings.Compare(s, best)*sign > 0 {
			best = s
		}
	}
	return best
}

// validateSelectListWithGroupBy validates that non-aggregate columns in SELECT are in GROUP BY
func validateSelectListWithGroupBy(fields []Field, groupBy []string) error {
	groupByMap := make(map[string]bool)
	for _, col := range groupBy {
		groupByMap[col] = true
	}

	for _, field := range fields {
		if field.Aggregate != nil {
			continue
		}
		if field.Name == "*" {
			return evaluationErrorf("SELECT * cannot be combined with GROUP BY")
		}
		// A qualified field may be grouped by its bare column
		if !groupByMap[field.Name] && !groupByMap[unqualify(field.Name)] {
			return evaluationErrorf("column %q must appear in GROUP BY clause or be used in an aggregate function", field.Name)
		}
	}

	return nil
}
