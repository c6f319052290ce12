package query

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/vegasq/flatsql/store"
)

func usersStore() *store.MemoryStore {
	return store.NewMemoryStore(map[string]store.Table{
		"users": {
			Columns: []string{"id", "name", "age"},
			Rows: []store.Row{
				{"id": "1", "name": "A", "age": "30"},
				{"id": "2", "name": "B", "age": "25"},
			},
		},
		"orders": {
			Columns: []string{"id", "user_id", "total"},
			Rows: []store.Row{
				{"id": "10", "user_id": "1", "total": "5"},
				{"id": "11", "user_id": "1", "total": "7"},
				{"id": "12", "user_id": "3", "total": "9"},
			},
		},
		"empty": {
			Columns: []string{"id", "name"},
		},
	})
}

// failingStore loads from a MemoryStore and fails every save
type failingStore struct {
	*store.MemoryStore
}

func (failingStore) Save(ctx context.Context, name string, table store.Table) error {
	return store.ErrWrite
}

func TestExecuteSelect(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []store.Row
	}{
		{
			name:  "filter and project",
			query: "SELECT name FROM users WHERE age > 26",
			want:  []store.Row{{"name": "A"}},
		},
		{
			name:  "count without group by",
			query: "SELECT COUNT(id) FROM users",
			want:  []store.Row{{"COUNT(id)": int64(2)}},
		},
		{
			name:  "count over empty filter",
			query: "SELECT COUNT(id) FROM users WHERE age > 100",
			want:  []store.Row{{"COUNT(id)": int64(0)}},
		},
		{
			name:  "avg over empty filter is nil",
			query: "SELECT AVG(age) FROM users WHERE age > 100",
			want:  []store.Row{{"AVG(age)": nil}},
		},
		{
			name:  "order and limit",
			query: "SELECT name FROM users ORDER BY age LIMIT 1",
			want:  []store.Row{{"name": "B"}},
		},
		{
			name:  "order descending",
			query: "SELECT id, name FROM users ORDER BY name DESC",
			want:  []store.Row{{"id": "2", "name": "B"}, {"id": "1", "name": "A"}},
		},
		{
			name:  "star",
			query: "SELECT * FROM users WHERE id = 2",
			want:  []store.Row{{"id": "2", "name": "B", "age": "25"}},
		},
		{
			name:  "aggregate fan-out",
			query: "SELECT name, COUNT(id) FROM users",
			want: []store.Row{
				{"name": "A", "COUNT(id)": int64(2)},
				{"name": "B", "COUNT(id)": int64(2)},
			},
		},
		{
			name:  "inner join with qualified fields",
			query: "SELECT users.name, orders.total FROM users INNER JOIN orders ON users.id = orders.user_id",
			want: []store.Row{
				{"users.name": "A", "orders.total": "5"},
				{"users.name": "A", "orders.total": "7"},
			},
		},
		{
			name:  "left join keeps unmatched users",
			query: "SELECT name, total FROM users LEFT JOIN orders ON users.id = orders.user_id WHERE name = 'B'",
			want:  []store.Row{{"name": "B", "total": nil}},
		},
		{
			name:  "right join keeps unmatched orders",
			query: "SELECT orders.id, users.name FROM users RIGHT JOIN orders ON users.id = orders.user_id ORDER BY orders.id DESC LIMIT 1",
			want:  []store.Row{{"orders.id": "12", "users.name": nil}},
		},
		{
			name:  "join group and order by aggregate",
			query: "SELECT users.name, SUM(orders.total) FROM users INNER JOIN orders ON users.id = orders.user_id GROUP BY users.name ORDER BY SUM(orders.total) DESC",
			want:  []store.Row{{"users.name": "A", "SUM(orders.total)": float64(12)}},
		},
		{
			name:  "distinct after join",
			query: "SELECT DISTINCT users.name FROM users INNER JOIN orders ON users.id = orders.user_id",
			want:  []store.Row{{"users.name": "A"}},
		},
		{
			name:  "order by bare name of grouped qualified column",
			query: "SELECT users.name FROM users GROUP BY users.name ORDER BY name DESC",
			want:  []store.Row{{"users.name": "B"}, {"users.name": "A"}},
		},
		{
			name:  "empty table",
			query: "SELECT name FROM empty",
			want:  []store.Row{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(usersStore())
			got, err := e.ExecuteSelect(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("ExecuteSelect() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExecuteSelect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecuteSelect_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		target error
	}{
		{"syntax", "SELECT FROM users", ErrSyntax},
		{"missing table", "SELECT * FROM nobody", store.ErrNotFound},
		{"missing join table", "SELECT * FROM users INNER JOIN nobody ON users.id = nobody.id", store.ErrNotFound},
		{"missing where column", "SELECT * FROM users WHERE email = 'x'", ErrEvaluation},
		{"missing projected column", "SELECT email FROM users", ErrEvaluation},
		{"aggregate of missing column", "SELECT SUM(salary) FROM users", ErrEvaluation},
		{"ungrouped column", "SELECT name, COUNT(id) FROM users GROUP BY age", ErrEvaluation},
		{"missing order by column", "SELECT name FROM users ORDER BY email", ErrEvaluation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(usersStore())
			_, err := e.ExecuteSelect(context.Background(), tt.query)
			if !errors.Is(err, tt.target) {
				t.Fatalf("ExecuteSelect() error = %v, want %v", err, tt.target)
			}
			if !strings.HasPrefix(err.Error(), "query execution failed: ") {
				t.Errorf("ExecuteSelect() error = %q, want query execution failed prefix", err.Error())
			}
		})
	}
}

func TestExecuteInsert(t *testing.T) {
	ctx := context.Background()
	s := usersStore()
	e := NewExecutor(s)

	got, err := e.ExecuteInsert(ctx, "INSERT INTO users (id, name, age) VALUES (3, 'C', 22) RETURNING name")
	if err != nil {
		t.Fatalf("ExecuteInsert() error = %v", err)
	}
	if !reflect.DeepEqual(got, &InsertResult{Returning: store.Row{"name": "C"}}) {
		t.Errorf("ExecuteInsert() = %+v", got)
	}

	table, err := s.Load(ctx, "users")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("table has %d rows, want 3", len(table.Rows))
	}
	if !reflect.DeepEqual(table.Rows[2], store.Row{"id": "3", "name": "C", "age": "22"}) {
		t.Errorf("inserted row = %v", table.Rows[2])
	}
	if !reflect.DeepEqual(table.Columns, []string{"id", "name", "age"}) {
		t.Errorf("columns = %v", table.Columns)
	}
}

func TestExecuteInsert_GeneratedValues(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		table store.Table
		query string
		want  store.Row
	}{
		{
			name:  "next integer id and empty columns",
			table: store.Table{Columns: []string{"id", "name", "age"}, Rows: []store.Row{{"id": "7", "name": "A", "age": "1"}, {"id": "3", "name": "B", "age": "2"}}},
			query: "INSERT INTO t (name) VALUES ('C') RETURNING *",
			want:  store.Row{"id": "8", "name": "C", "age": ""},
		},
		{
			name:  "first id of empty table",
			table: store.Table{Columns: []string{"id", "name"}},
			query: `INSERT INTO "t" ("name") VALUES ("first") RETURNING "t"."id", t.name`,
			want:  store.Row{"id": "1", "name": "first"},
		},
		{
			name:  "no id column",
			table: store.Table{Columns: []string{"name"}},
			query: "INSERT INTO t (name) VALUES (x) RETURNING *",
			want:  store.Row{"name": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(store.NewMemoryStore(map[string]store.Table{"t": tt.table}))
			got, err := e.ExecuteInsert(ctx, tt.query)
			if err != nil {
				t.Fatalf("ExecuteInsert() error = %v", err)
			}
			if !reflect.DeepEqual(got.Returning, tt.want) {
				t.Errorf("ExecuteInsert() returning = %v, want %v", got.Returning, tt.want)
			}
		})
	}
}

func TestExecuteInsert_UUIDWhenIdsAreNotNumeric(t *testing.T) {
	s := store.NewMemoryStore(map[string]store.Table{
		"t": {Columns: []string{"id", "name"}, Rows: []store.Row{{"id": "abc", "name": "A"}}},
	})
	e := NewExecutor(s)

	got, err := e.ExecuteInsert(context.Background(), "INSERT INTO t (name) VALUES ('B') RETURNING id")
	if err != nil {
		t.Fatalf("ExecuteInsert() error = %v", err)
	}
	id, _ := got.Returning["id"].(string)
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Errorf("generated id = %q, want a UUID", id)
	}
}

func TestExecuteInsert_UUIDWhenLargestIDIsMaxInt(t *testing.T) {
	s := store.NewMemoryStore(map[string]store.Table{
		"t": {Columns: []string{"id", "name"}, Rows: []store.Row{{"id": "9223372036854775807", "name": "A"}}},
	})
	e := NewExecutor(s)

	got, err := e.ExecuteInsert(context.Background(), "INSERT INTO t (name) VALUES ('B') RETURNING id")
	if err != nil {
		t.Fatalf("ExecuteInsert() error = %v", err)
	}
	id, _ := got.Returning["id"].(string)
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Errorf("generated id = %q, want a UUID", id)
	}
}

func TestExecuteInsert_Errors(t *testing.T) {
	tests := []struct {
		name   string
		store  store.Store
		query  string
		target error
	}{
		{"syntax", usersStore(), "INSERT INTO users VALUES (1)", ErrSyntax},
		{"count mismatch", usersStore(), "INSERT INTO users (id, name) VALUES (1)", ErrSyntax},
		{"unknown column", usersStore(), "INSERT INTO users (email) VALUES ('x')", ErrEvaluation},
		{"unknown returning column", usersStore(), "INSERT INTO users (name) VALUES ('x') RETURNING email", ErrEvaluation},
		{"missing table", usersStore(), "INSERT INTO nobody (id) VALUES (1)", store.ErrNotFound},
		{"write failure", failingStore{usersStore()}, "INSERT INTO users (name) VALUES ('x')", store.ErrWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(tt.store)
			_, err := e.ExecuteInsert(context.Background(), tt.query)
			if !errors.Is(err, tt.target) {
				t.Errorf("ExecuteInsert() error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestExecuteDelete(t *testing.T) {
	ctx := context.Background()
	s := usersStore()
	e := NewExecutor(s)

	if _, err := e.ExecuteInsert(ctx, "INSERT INTO users (id, name, age) VALUES (3, 'C', 22) RETURNING name"); err != nil {
		t.Fatalf("ExecuteInsert() error = %v", err)
	}

	got, err := e.ExecuteDelete(ctx, "DELETE FROM users WHERE id = 2")
	if err != nil {
		t.Fatalf("ExecuteDelete() error = %v", err)
	}
	if !reflect.DeepEqual(got, &DeleteResult{Message: DeletedMessage, Deleted: 1}) {
		t.Errorf("ExecuteDelete() = %+v", got)
	}

	rows, err := e.ExecuteSelect(ctx, "SELECT id FROM users")
	if err != nil {
		t.Fatalf("ExecuteSelect() error = %v", err)
	}
	want := []store.Row{{"id": "1"}, {"id": "3"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("remaining rows = %v, want %v", rows, want)
	}
}

func TestExecuteDelete_All(t *testing.T) {
	ctx := context.Background()
	s := usersStore()
	e := NewExecutor(s)

	got, err := e.ExecuteDelete(ctx, "DELETE FROM users")
	if err != nil {
		t.Fatalf("ExecuteDelete() error = %v", err)
	}
	if got.Deleted != 2 {
		t.Errorf("ExecuteDelete() deleted = %d, want 2", got.Deleted)
	}

	table, err := s.Load(ctx, "users")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("table has %d rows, want 0", len(table.Rows))
	}
	if !reflect.DeepEqual(table.Columns, []string{"id", "name", "age"}) {
		t.Errorf("columns = %v, want header kept", table.Columns)
	}
}

func TestExecuteDelete_Errors(t *testing.T) {
	tests := []struct {
		name   string
		store  store.Store
		query  string
		target error
	}{
		{"syntax", usersStore(), "DELETE users", ErrSyntax},
		{"missing column", usersStore(), "DELETE FROM users WHERE email = 'x'", ErrEvaluation},
		{"missing table", usersStore(), "DELETE FROM nobody", store.ErrNotFound},
		{"write failure", failingStore{usersStore()}, "DELETE FROM users WHERE id = 1", store.ErrWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(tt.store)
			_, err := e.ExecuteDelete(context.Background(), tt.query)
			if !errors.Is(err, tt.target) {
				t.Errorf("ExecuteDelete() error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestExecute_Dispatch(t *testing.T) {
	ctx := context.Background()
	e := NewExecutor(usersStore())

	tests := []struct {
		query string
		want  StatementType
	}{
		{"SELECT name FROM users", StatementSelect},
		{"INSERT INTO users (name) VALUES ('Z')", StatementInsert},
		{"DELETE FROM users WHERE name = 'Z'", StatementDelete},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			result, err := e.Execute(ctx, tt.query)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if result.Statement != tt.want {
				t.Errorf("Execute() statement = %v, want %v", result.Statement, tt.want)
			}
			switch tt.want {
			case StatementSelect:
				if len(result.Rows) != 2 {
					t.Errorf("Execute() rows = %v", result.Rows)
				}
			case StatementInsert:
				if result.Insert == nil {
					t.Error("Execute() insert result = nil")
				}
			case StatementDelete:
				if result.Delete == nil || result.Delete.Deleted != 1 {
					t.Errorf("Execute() delete result = %+v", result.Delete)
				}
			}
		})
	}

	if _, err := e.Execute(ctx, "UPDATE users SET name = 'x'"); !errors.Is(err, ErrSyntax) {
		t.Errorf("Execute() error = %v, want ErrSyntax", err)
	}
}

func TestExecute_NonASCIIText(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(map[string]store.Table{
		"t": {
			Columns: []string{"id", "name", "prénom"},
			Rows: []store.Row{
				{"id": "1", "name": "José", "prénom": "Renée"},
				{"id": "2", "name": "Jose", "prénom": "Rene"},
			},
		},
	})
	e := NewExecutor(s)

	got, err := e.ExecuteSelect(ctx, "SELECT id FROM t WHERE name = 'José'")
	if err != nil {
		t.Fatalf("ExecuteSelect() error = %v", err)
	}
	if !reflect.DeepEqual(got, []store.Row{{"id": "1"}}) {
		t.Errorf("ExecuteSelect() = %v, want the José row", got)
	}

	got, err = e.ExecuteSelect(ctx, "SELECT prénom FROM t WHERE id = 2")
	if err != nil {
		t.Fatalf("ExecuteSelect() error = %v", err)
	}
	if !reflect.DeepEqual(got, []store.Row{{"prénom": "Rene"}}) {
		t.Errorf("ExecuteSelect() = %v", got)
	}

	inserted, err := e.ExecuteInsert(ctx, "INSERT INTO t (id, name) VALUES (3, 'Zoë') RETURNING name")
	if err != nil {
		t.Fatalf("ExecuteInsert() error = %v", err)
	}
	if !reflect.DeepEqual(inserted.Returning, store.Row{"name": "Zoë"}) {
		t.Errorf("ExecuteInsert() returning = %v", inserted.Returning)
	}

	table, err := s.Load(ctx, "t")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if name := table.Rows[2]["name"]; name != "Zoë" {
		t.Errorf("stored name = %q, want %q", name, "Zoë")
	}
}

func TestExecuteInsert_BackslashKeptVerbatim(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(map[string]store.Table{
		"t": {Columns: []string{"id", "path"}},
	})
	e := NewExecutor(s)

	if _, err := e.ExecuteInsert(ctx, `INSERT INTO t (path) VALUES ('C:\temp')`); err != nil {
		t.Fatalf("ExecuteInsert() error = %v", err)
	}
	got, err := e.ExecuteSelect(ctx, `SELECT path FROM t WHERE path = 'C:\temp'`)
	if err != nil {
		t.Fatalf("ExecuteSelect() error = %v", err)
	}
	if !reflect.DeepEqual(got, []store.Row{{"path": `C:\temp`}}) {
		t.Errorf("ExecuteSelect() = %v", got)
	}
}
