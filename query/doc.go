// Package query provides SQL statement parsing and execution for flat-file
// tables.
//
// This package implements a small SQL-like language with support for:
//   - SELECT with column projection and DISTINCT
//   - WHERE clauses with conditions combined by AND
//   - One JOIN per query (INNER, LEFT [OUTER], RIGHT [OUTER])
//   - GROUP BY with aggregates (COUNT, SUM, AVG, MIN, MAX)
//   - ORDER BY over one or more columns, ASC or DESC
//   - LIMIT
//   - INSERT with RETURNING
//   - DELETE
//
// # Basic Usage
//
// Execute statements against a table store:
//
//	tables, err := store.NewDriverLocal("data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	executor := query.NewExecutor(store.NewFileStore(tables, store.CSVCodec{}))
//
//	rows, err := executor.ExecuteSelect(ctx, "SELECT name FROM users WHERE age > 26")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Pipeline Stages
//
// Each SELECT stage is exposed on its own and returns new rows, leaving its
// input untouched:
//
//	q, err := query.Parse("SELECT name FROM users WHERE age > 26 ORDER BY name")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	filtered, err := query.ApplyFilter(rows, q.Where)
//	sorted, err := query.ApplyOrderBy(filtered, q.OrderBy)
//	projected, err := query.ApplySelectList(sorted, q.Fields, false)
//
// # JOIN Operations
//
// Joined rows expose the left table's columns bare and qualified with the
// table name, and the right table's columns qualified, plus bare when the
// left table has no column of that name:
//
//	SELECT users.name, orders.amount
//	FROM users
//	LEFT JOIN orders ON users.id = orders.user_id
//
// Unmatched rows of an outer join carry nil for the other side.
//
// # Aggregation
//
// With GROUP BY, one row is produced per group in first-seen order. Without
// GROUP BY, a single aggregate field yields one row computed over every
// filtered row:
//
//	SELECT COUNT(id) FROM users            -> [{"COUNT(id)": 2}]
//	SELECT dept, AVG(age) FROM users GROUP BY dept
//
// Several fields with an aggregate and no GROUP BY produce one row per input
// row, each repeating the aggregate computed over all rows.
//
// # Supported Operators
//
// WHERE clause operators:
//   - Comparison: =, != (or <>), <, >, <=, >=
//   - Pattern: LIKE, with % for any run of characters and _ for one
//
// = and != compare text. Ordering operators compare numerically when both
// sides are numbers and lexically otherwise.
//
// # Error Handling
//
// Malformed statements fail with a *SyntaxError naming the clause
// (errors.Is(err, ErrSyntax)). References to missing columns fail with an
// *EvaluationError (errors.Is(err, ErrEvaluation)). Executor methods wrap
// every failure as "query execution failed: ..." and keep store errors such
// as store.ErrNotFound matchable with errors.Is.
package query
