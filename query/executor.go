package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vegasq/flatsql/store"
)

// Executor runs statements against the tables of a store
type Executor struct {
	store  store.Store
	logger *slog.Logger
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithLogger sets the logger used for per-stage debug records
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an executor reading and writing tables through s
func NewExecutor(s store.Store, options ...ExecutorOption) *Executor {
	e := &Executor{
		store:  s,
		logger: slog.Default(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Result is the outcome of Execute. Exactly one of Rows, Insert and Delete
// is set, according to Statement.
type Result struct {
	Statement StatementType
	Rows      []store.Row
	Insert    *InsertResult
	Delete    *DeleteResult
}

// Execute runs a single SELECT, INSERT or DELETE statement
func (e *Executor) Execute(ctx context.Context, query string) (*Result, error) {
	kind, err := StatementKind(query)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	result := &Result{Statement: kind}
	switch kind {
	case StatementInsert:
		result.Insert, err = e.ExecuteInsert(ctx, query)
	case StatementDelete:
		result.Delete, err = e.ExecuteDelete(ctx, query)
	default:
		result.Rows, err = e.ExecuteSelect(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ExecuteSelect runs a SELECT statement and returns the projected rows
func (e *Executor) ExecuteSelect(ctx context.Context, query string) ([]store.Row, error) {
	q, err := Parse(query)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	rows, err := e.executeSelect(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	return rows, nil
}

// executeSelect runs the pipeline: join, filter, group, order, limit,
// distinct, project.
func (e *Executor) executeSelect(ctx context.Context, q *Query) ([]store.Row, error) {
	table, err := e.store.Load(ctx, q.TableName)
	if err != nil {
		return nil, err
	}
	rows := table.Rows
	e.debug(ctx, "table loaded", q.TableName, len(rows))

	if q.Join != nil {
		right, err := e.store.Load(ctx, q.Join.TableName)
		if err != nil {
			return nil, err
		}
		e.debug(ctx, "table loaded", q.Join.TableName, len(right.Rows))

		rows, err = ApplyJoin(table, right, q.Join, q.TableName)
		if err != nil {
			return nil, err
		}
		e.debug(ctx, "join applied", q.TableName, len(rows), slog.String("join", q.Join.Type.String()))
	}

	rows, err = ApplyFilter(rows, q.Where)
	if err != nil {
		return nil, err
	}
	if len(q.Where) > 0 {
		e.debug(ctx, "filter applied", q.TableName, len(rows))
	}

	if len(q.GroupBy) > 0 {
		rows, err = ApplyGroupBy(rows, q.GroupBy, q.Fields)
		if err != nil {
			return nil, err
		}
		e.debug(ctx, "rows grouped", q.TableName, len(rows))
	}

	// A lone aggregate over the whole set yields one synthetic row
	if q.HasAggregateWithoutGroupBy && len(q.Fields) == 1 {
		field := q.Fields[0]
		value, err := ComputeAggregate(*field.Aggregate, rows)
		if err != nil {
			return nil, err
		}
		return []store.Row{{field.Name: value}}, nil
	}

	if len(q.OrderBy) > 0 {
		rows, err = ApplyOrderBy(rows, q.OrderBy)
		if err != nil {
			return nil, err
		}
	}

	rows = ApplyLimit(rows, q.Limit)

	if q.Distinct {
		rows = ApplyDistinct(rows, q.FieldNames())
	}

	rows, err = ApplySelectList(rows, q.Fields, q.HasAggregateWithoutGroupBy)
	if err != nil {
		return nil, err
	}
	e.debug(ctx, "select executed", q.TableName, len(rows))

	return rows, nil
}

func (e *Executor) debug(ctx context.Context, msg, table string, rows int, attrs ...any) {
	args := append([]any{slog.String("table", table), slog.Int("rows", rows)}, attrs...)
	e.logger.DebugContext(ctx, msg, args...)
}
