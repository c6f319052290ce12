package query

import (
	"path"
	"strings"

	"github.com/vegasq/flatsql/store"
)

// joinSide says which input table a join column is read from
type joinSide int

const (
	sideLeft joinSide = iota
	sideRight
)

// joiner merges rows of two tables. Left columns are exposed bare and as
// "left.col"; right columns as "right.col", plus bare when the left table
// has no column of that name.
type joiner struct {
	left, right           store.Table
	leftLabel, rightLabel string
	leftCols, rightCols   []string
	leftHas               map[string]bool
	leftKey, rightKey     string
}

// ApplyJoin joins the rows of two tables on the equality in join.Condition.
// leftTable is the name of the table in the FROM clause and is used to
// resolve qualified column references.
func ApplyJoin(left, right store.Table, join *Join, leftTable string) ([]store.Row, error) {
	if join == nil {
		return nil, evaluationErrorf("missing JOIN descriptor")
	}

	j, err := newJoiner(left, right, join, leftTable)
	if err != nil {
		return nil, err
	}

	switch join.Type {
	case JoinInner:
		return j.innerJoin(), nil
	case JoinLeft:
		return j.leftJoin(), nil
	case JoinRight:
		return j.rightJoin(), nil
	default:
		return nil, evaluationErrorf("unsupported join type: %v", join.Type)
	}
}

func newJoiner(left, right store.Table, join *Join, leftTable string) (*joiner, error) {
	j := &joiner{
		left:       left,
		right:      right,
		leftLabel:  tableLabel(leftTable),
		rightLabel: tableLabel(join.TableName),
		leftCols:   left.ColumnNames(),
		rightCols:  right.ColumnNames(),
		leftHas:    make(map[string]bool),
	}
	for _, col := range j.leftCols {
		j.leftHas[col] = true
	}

	leftSide, leftCol, err := j.resolve(join.Condition.Left, sideLeft)
	if err != nil {
		return nil, err
	}
	rightSide, rightCol, err := j.resolve(join.Condition.Right, sideRight)
	if err != nil {
		return nil, err
	}
	if leftSide == rightSide {
		return nil, evaluationErrorf("join condition %s = %s must reference both tables",
			join.Condition.Left, join.Condition.Right)
	}
	if leftSide == sideRight {
		leftCol, rightCol = rightCol, leftCol
	}
	j.leftKey, j.rightKey = leftCol, rightCol

	if err := checkJoinColumn(left, leftTable, j.leftKey); err != nil {
		return nil, err
	}
	if err := checkJoinColumn(right, join.TableName, j.rightKey); err != nil {
		return nil, err
	}

	return j, nil
}

// resolve decides which table a condition reference reads from. A reference
// qualified with the other table's name moves to that side; an unqualified
// reference stays on its default side.
func (j *joiner) resolve(ref string, def joinSide) (joinSide, string, error) {
	qualifier, column := splitQualified(ref)
	if qualifier == "" {
		return def, column, nil
	}

	label := tableLabel(qualifier)
	switch {
	case label == j.leftLabel && label == j.rightLabel:
		return def, column, nil
	case label == j.leftLabel:
		return sideLeft, column, nil
	case label == j.rightLabel:
		return sideRight, column, nil
	default:
		return def, "", evaluationErrorf("unknown table %q in join condition", qualifier)
	}
}

func checkJoinColumn(table store.Table, name, column string) error {
	for _, col := range table.ColumnNames() {
		if col == column {
			return nil
		}
	}
	if len(table.Rows) == 0 && len(table.Columns) == 0 {
		return nil
	}
	return evaluationErrorf("column %q does not exist in table %s", column, name)
}

// tableLabel is the name a table is qualified with: the base name of its
// path without extension.
func tableLabel(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// matches compares the join columns as text. Absent values never match.
func (j *joiner) matches(l, r store.Row) bool {
	lv, rv := l[j.leftKey], r[j.rightKey]
	if lv == nil || rv == nil {
		return false
	}
	return store.FormatValue(lv) == store.FormatValue(rv)
}

// innerJoin emits a merged row for every matching pair, in left row order
func (j *joiner) innerJoin() []store.Row {
	result := make([]store.Row, 0)
	for _, leftRow := range j.left.Rows {
		for _, rightRow := range j.right.Rows {
			if j.matches(leftRow, rightRow) {
				result = append(result, j.mergeRows(leftRow, rightRow))
			}
		}
	}
	return result
}

// leftJoin performs a LEFT OUTER JOIN
func (j *joiner) leftJoin() []store.Row {
	result := make([]store.Row, 0, len(j.left.Rows))
	for _, leftRow := range j.left.Rows {
		matched := false
		for _, rightRow := range j.right.Rows {
			if j.matches(leftRow, rightRow) {
				result = append(result, j.mergeRows(leftRow, rightRow))
				matched = true
			}
		}

		// If no match, include left row with NULL values for right columns
		if !matched {
			result = append(result, j.mergeRows(leftRow, nil))
		}
	}
	return result
}

// rightJoin performs a RIGHT OUTER JOIN, in right row order
func (j *joiner) rightJoin() []store.Row {
	result := make([]store.Row, 0, len(j.right.Rows))
	for _, rightRow := range j.right.Rows {
		matched := false
		for _, leftRow := range j.left.Rows {
			if j.matches(leftRow, rightRow) {
				result = append(result, j.mergeRows(leftRow, rightRow))
				matched = true
			}
		}

		// If no match, include right row with NULL values for left columns
		if !matched {
			result = append(result, j.mergeRows(nil, rightRow))
		}
	}
	return result
}

// mergeRows combines two rows into a new one. A nil row fills its columns
// with NULL.
func (j *joiner) mergeRows(left, right store.Row) store.Row {
	merged := make(store.Row, 2*(len(j.leftCols)+len(j.rightCols)))

	for _, col := range j.leftCols {
		var v interface{}
		if left != nil {
			v = left[col]
		}
		merged[col] = v
		merged[j.leftLabel+"."+col] = v
	}

	for _, col := range j.rightCols {
		var v interface{}
		if right != nil {
			v = right[col]
		}
		merged[j.rightLabel+"."+col] = v
		if !j.leftHas[col] {
			merged[col] = v
		}
	}

	return merged
}
