package query

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vegasq/flatsql/store"
)

// lookupColumn reads a column from a row. A qualified reference such as
// "users.name" falls back to the bare column when the row has no qualified
// key, and a bare reference falls back to the one qualified key ending in
// ".name". Several such keys make the bare reference ambiguous.
func lookupColumn(row store.Row, column string) (interface{}, bool) {
	if v, ok := row[column]; ok {
		return v, true
	}
	if table, bare := splitQualified(column); table != "" {
		v, ok := row[bare]
		return v, ok
	}

	suffix := "." + column
	var found interface{}
	matches := 0
	for key, v := range row {
		if strings.HasSuffix(key, suffix) {
			found = v
			matches++
		}
	}
	if matches != 1 {
		return nil, false
	}
	return found, true
}

// parseNumber parses a finite numeric literal
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toFloat64 converts aggregate results and numeric text to a float
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case float64:
		return val, true
	case string:
		return parseNumber(val)
	default:
		return 0, false
	}
}

// compareText compares two values numerically when both parse as numbers,
// lexically otherwise.
func compareText(a, b string) int {
	aNum, aIsNum := parseNumber(a)
	bNum, bIsNum := parseNumber(b)
	if aIsNum && bIsNum {
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// EvaluateCondition evaluates one WHERE condition against a row
func EvaluateCondition(row store.Row, cond Condition) (bool, error) {
	v, ok := lookupColumn(row, cond.Column)
	if !ok {
		return false, evaluationErrorf("column %q does not exist", cond.Column)
	}

	// Absent values never compare equal to anything
	if v == nil {
		return cond.Operator == TokenNotEqual, nil
	}

	text := store.FormatValue(v)

	switch cond.Operator {
	case TokenEqual:
		return text == cond.Value, nil
	case TokenNotEqual:
		return text != cond.Value, nil
	case TokenLike:
		return matchLikePattern(text, cond.Value), nil
	case TokenLess:
		return compareText(text, cond.Value) < 0, nil
	case TokenGreater:
		return compareText(text, cond.Value) > 0, nil
	case TokenLessEqual:
		return compareText(text, cond.Value) <= 0, nil
	case TokenGreaterEqual:
		return compareText(text, cond.Value) >= 0, nil
	default:
		return false, evaluationErrorf("unsupported operator %v", cond.Operator)
	}
}

// matchesAll reports whether a row satisfies every condition
func matchesAll(row store.Row, conds []Condition) (bool, error) {
	for _, cond := range conds {
		ok, err := EvaluateCondition(row, cond)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// ApplyFilter keeps the rows satisfying all conditions. An empty condition
// list keeps every row.
func ApplyFilter(rows []store.Row, conds []Condition) ([]store.Row, error) {
	filtered := make([]store.Row, 0, len(rows))
	for _, row := range rows {
		ok, err := matchesAll(row, conds)
		if err != nil {
			return nil, err
		}
		if ok {
			filtered = append(filtered, row.Clone())
		}
	}
	return filtered, nil
}

// ApplyOrderBy sorts rows based on ORDER BY clause. The sort is stable, so
// rows comparing equal on every key keep their input order.
func ApplyOrderBy(rows []store.Row, orderBy []OrderByItem) ([]store.Row, error) {
	sorted := make([]store.Row, len(rows))
	for i, row := range rows {
		sorted[i] = row.Clone()
	}
	if len(sorted) == 0 || len(orderBy) == 0 {
		return sorted, nil
	}

	for _, item := range orderBy {
		if !columnInAnyRow(sorted, item.Column) {
			return nil, evaluationErrorf("ORDER BY column %q does not exist", item.Column)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		for _, item := range orderBy {
			// Rows lacking the column sort as NULL
			valI, _ := lookupColumn(sorted[i], item.Column)
			valJ, _ := lookupColumn(sorted[j], item.Column)

			cmp := compareValues(valI, valJ)
			if cmp != 0 {
				if item.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return false
	})

	return sorted, nil
}

// columnInAnyRow reports whether at least one row resolves the column
func columnInAnyRow(rows []store.Row, column string) bool {
	for _, row := range rows {
		if _, ok := lookupColumn(row, column); ok {
			return true
		}
	}
	return false
}

// compareValues compares two values and returns:
// -1 if a < b
//
//	0 if a == b
//
// +1 if a > b
//
// NULL sorts first. Aggregate results compare numerically; text compares
// lexically.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	_, aIsText := a.(string)
	_, bIsText := b.(string)
	if !aIsText && !bIsText {
		aNum, aIsNum := toFloat64(a)
		bNum, bIsNum := toFloat64(b)
		if aIsNum && bIsNum {
			switch {
			case aNum < bNum:
				return -1
			case aNum > bNum:
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(store.FormatValue(a), store.FormatValue(b))
}

// ApplyLimit keeps the first limit rows. A nil limit keeps every row.
func ApplyLimit(rows []store.Row, limit *int64) []store.Row {
	end := len(rows)
	if limit != nil && *limit < int64(end) {
		end = int(*limit)
	}

	limited := make([]store.Row, end)
	for i := 0; i < end; i++ {
		limited[i] = rows[i].Clone()
	}
	return limited
}

// ApplyDistinct removes rows whose selected fields repeat an earlier row.
// The first occurrence wins. Selecting "*" compares whole rows.
func ApplyDistinct(rows []store.Row, fields []string) []store.Row {
	seen := make(map[string]bool)
	distinct := make([]store.Row, 0, len(rows))

	for _, row := range rows {
		key := rowToKey(row, fields)
		if !seen[key] {
			seen[key] = true
			distinct = append(distinct, row.Clone())
		}
	}

	return distinct
}

// rowToKey creates a unique string key from the selected fields of a row
func rowToKey(row store.Row, fields []string) string {
	if len(fields) == 1 && fields[0] == "*" {
		fields = make([]string, 0, len(row))
		for col := range row {
			fields = append(fields, col)
		}
		sort.Strings(fields)
	}

	var key strings.Builder
	for i, field := range fields {
		if i > 0 {
			key.WriteString("\x1f")
		}
		v, ok := lookupColumn(row, field)
		if !ok || v == nil {
			key.WriteString("\x00")
			continue
		}
		key.WriteString(store.FormatValue(v))
	}

	return key.String()
}

// matchLikePattern matches a string against a SQL LIKE pattern anchored at
// both ends. % matches any sequence of characters, _ matches any single
// character. Matching is case-sensitive.
func matchLikePattern(str, pattern string) bool {
	s := []rune(str)
	p := []rune(pattern)

	si, pi := 0, 0
	star, mark := -1, 0

	for si < len(s) {
		switch {
		case pi < len(p) && p[pi] == '%':
			star = pi
			mark = si
			pi++
		case pi < len(p) && (p[pi] == '_' || p[pi] == s[si]):
			si++
			pi++
		case star >= 0:
			// Let the last % absorb one more character and retry
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}

	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}
