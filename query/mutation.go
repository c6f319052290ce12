package query

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/vegasq/flatsql/store"
)

// DeletedMessage is the message reported by a successful DELETE
const DeletedMessage = "Rows deleted successfully."

// InsertResult is the outcome of an INSERT
type InsertResult struct {
	Returning store.Row `json:"returning"`
}

// DeleteResult is the outcome of a DELETE
type DeleteResult struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

// ExecuteInsert appends one row to a table and persists the table.
//
// Table columns missing from the statement are set to the empty string. An
// "id" column that is not supplied gets the next integer after the largest
// existing id, or a random UUID when existing ids are not all integers.
func (e *Executor) ExecuteInsert(ctx context.Context, query string) (*InsertResult, error) {
	stmt, err := ParseInsert(query)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	result, err := e.executeInsert(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	return result, nil
}

func (e *Executor) executeInsert(ctx context.Context, stmt *InsertStatement) (*InsertResult, error) {
	table, err := e.store.Load(ctx, stmt.TableName)
	if err != nil {
		return nil, err
	}

	columns := table.ColumnNames()
	if len(columns) == 0 {
		columns = stmt.Columns
	}
	known := make(map[string]bool, len(columns))
	for _, col := range columns {
		known[col] = true
	}

	row := make(store.Row, len(columns))
	for _, col := range columns {
		row[col] = ""
	}

	supplied := make(map[string]bool, len(stmt.Columns))
	for i, col := range stmt.Columns {
		if !known[col] {
			return nil, evaluationErrorf("column %q does not exist in table %s", col, stmt.TableName)
		}
		row[col] = stmt.Values[i]
		supplied[col] = true
	}

	if known["id"] && !supplied["id"] {
		row["id"] = nextID(table.Rows)
	}

	next := store.Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([]store.Row, 0, len(table.Rows)+1),
	}
	for _, existing := range table.Rows {
		next.Rows = append(next.Rows, existing.Clone())
	}
	next.Rows = append(next.Rows, row)

	returning, err := returningRow(row, stmt.Returning)
	if err != nil {
		return nil, err
	}

	if err := e.store.Save(ctx, stmt.TableName, next); err != nil {
		return nil, err
	}
	e.debug(ctx, "row inserted", stmt.TableName, len(next.Rows))

	return &InsertResult{Returning: returning}, nil
}

// returningRow picks the RETURNING columns out of the inserted row
func returningRow(row store.Row, columns []string) (store.Row, error) {
	if len(columns) == 1 && columns[0] == "*" {
		return row.Clone(), nil
	}

	out := make(store.Row, len(columns))
	for _, col := range columns {
		v, ok := row[col]
		if !ok {
			return nil, evaluationErrorf("RETURNING column %q does not exist", col)
		}
		out[col] = v
	}
	return out, nil
}

// nextID generates an id for a new row: max+1 over integer ids (1 for an
// empty table), or a UUID as soon as one id is not an integer or the
// largest id leaves no room for max+1.
func nextID(rows []store.Row) string {
	var maxID int64
	for _, row := range rows {
		v, ok := row["id"]
		if !ok || v == nil || v == "" {
			continue
		}
		id, err := strconv.ParseInt(store.FormatValue(v), 10, 64)
		if err != nil {
			return uuid.NewString()
		}
		if id > maxID {
			maxID = id
		}
	}
	if maxID == math.MaxInt64 {
		return uuid.NewString()
	}
	return strconv.FormatInt(maxID+1, 10)
}

// ExecuteDelete removes the rows matching every WHERE condition, or every
// row without WHERE, and persists the remainder.
func (e *Executor) ExecuteDelete(ctx context.Context, query string) (*DeleteResult, error) {
	stmt, err := ParseDelete(query)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	result, err := e.executeDelete(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	return result, nil
}

func (e *Executor) executeDelete(ctx context.Context, stmt *DeleteStatement) (*DeleteResult, error) {
	table, err := e.store.Load(ctx, stmt.TableName)
	if err != nil {
		return nil, err
	}

	remaining := store.Table{
		Columns: append([]string(nil), table.ColumnNames()...),
		Rows:    make([]store.Row, 0, len(table.Rows)),
	}
	deleted := 0
	for _, row := range table.Rows {
		match, err := matchesAll(row, stmt.Where)
		if err != nil {
			return nil, err
		}
		if match {
			deleted++
			continue
		}
		remaining.Rows = append(remaining.Rows, row.Clone())
	}

	if err := e.store.Save(ctx, stmt.TableName, remaining); err != nil {
		return nil, err
	}
	e.debug(ctx, "rows deleted", stmt.TableName, len(remaining.Rows), "deleted", deleted)

	return &DeleteResult{Message: DeletedMessage, Deleted: deleted}, nil
}
