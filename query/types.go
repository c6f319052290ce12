package query

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere
	TokenAnd
	TokenOr
	TokenGroup
	TokenBy
	TokenOrder
	TokenAsc
	TokenDesc
	TokenLimit
	TokenLike
	TokenDistinct
	TokenJoin
	TokenInner
	TokenLeft
	TokenRight
	TokenFull
	TokenOuter
	TokenCross
	TokenOn
	TokenInsert
	TokenInto
	TokenValues
	TokenReturning
	TokenDelete

	// Operators
	TokenEqual        // =
	TokenNotEqual     // != or <>
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=

	// Literals
	TokenString
	TokenNumber
	TokenIdent

	// Delimiters
	TokenComma      // ,
	TokenLeftParen  // (
	TokenRightParen // )

	// Special
	TokenEOF
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenEqual:        "=",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenComma:        "','",
	TokenLeftParen:    "'('",
	TokenRightParen:   "')'",
	TokenEOF:          "end of query",
	TokenError:        "invalid token",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	for word, tokType := range keywords {
		if tokType == t {
			return word
		}
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Quote rune // opening quote of a TokenString, 0 otherwise
}

// describe renders a token for error messages
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of query"
	case TokenString:
		return fmt.Sprintf("%c%s%c", t.Quote, t.Value, t.Quote)
	default:
		return fmt.Sprintf("%q", t.Value)
	}
}

// StatementType identifies the kind of statement in a query string
type StatementType int

const (
	StatementSelect StatementType = iota
	StatementInsert
	StatementDelete
)

func (s StatementType) String() string {
	switch s {
	case StatementSelect:
		return "SELECT"
	case StatementInsert:
		return "INSERT"
	case StatementDelete:
		return "DELETE"
	default:
		return fmt.Sprintf("StatementType(%d)", int(s))
	}
}

// Query represents a parsed SELECT statement
type Query struct {
	Fields    []Field       // Selected fields in query order; a single "*" selects all columns
	TableName string        // Table in the FROM clause
	Where     []Condition   // Conjunctive WHERE conditions
	Join      *Join         // Optional JOIN clause
	GroupBy   []string      // Column names to group by
	OrderBy   []OrderByItem // Sort specification
	Limit     *int64        // Row limit
	Distinct  bool          // DISTINCT modifier

	// HasAggregateWithoutGroupBy is set when a field is an aggregate call and
	// there is no GROUP BY clause.
	HasAggregateWithoutGroupBy bool
}

// FieldNames returns the output name of every selected field.
func (q *Query) FieldNames() []string {
	names := make([]string, len(q.Fields))
	for i, f := range q.Fields {
		names[i] = f.Name
	}
	return names
}

// SelectsAll reports whether the field list is "*".
func (q *Query) SelectsAll() bool {
	return len(q.Fields) == 1 && q.Fields[0].Name == "*"
}

// Field is one item of the SELECT list
type Field struct {
	Name      string     // Output column name, e.g. "name", "users.name" or "COUNT(id)"
	Aggregate *Aggregate // Set for aggregate calls
}

// AggregateFunc names an aggregate function
type AggregateFunc string

const (
	AggregateCount AggregateFunc = "COUNT"
	AggregateSum   AggregateFunc = "SUM"
	AggregateAvg   AggregateFunc = "AVG"
	AggregateMin   AggregateFunc = "MIN"
	AggregateMax   AggregateFunc = "MAX"
)

// Aggregate represents an aggregate call such as COUNT(id)
type Aggregate struct {
	Function AggregateFunc
	Column   string // Column name, or "*" for COUNT(*)
}

// String renders the canonical call text used as the output column name
func (a Aggregate) String() string {
	return fmt.Sprintf("%s(%s)", a.Function, a.Column)
}

// JoinType represents the type of join operation
type JoinType int

const (
	JoinInner JoinType = iota // INNER JOIN
	JoinLeft                  // LEFT JOIN / LEFT OUTER JOIN
	JoinRight                 // RIGHT JOIN / RIGHT OUTER JOIN
)

func (j JoinType) String() string {
	switch j {
	case JoinInner:
		return "INNER"
	case JoinLeft:
		return "LEFT"
	case JoinRight:
		return "RIGHT"
	default:
		return fmt.Sprintf("JoinType(%d)", int(j))
	}
}

// Join represents a JOIN clause
type Join struct {
	Type      JoinType      // Type of join (INNER, LEFT, RIGHT)
	TableName string        // Table to join
	Condition JoinCondition // ON clause equality
}

// JoinCondition is the equality in an ON clause. Either side may be
// qualified with a table name.
type JoinCondition struct {
	Left  string
	Right string
}

// Condition is a single WHERE comparison (column op literal)
type Condition struct {
	Column   string
	Operator TokenType
	Value    string
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Column, c.Operator, c.Value)
}

// OrderByItem represents a column to sort by
type OrderByItem struct {
	Column string // Column name or aggregate call text
	Desc   bool   // DESC vs ASC (default)
}

// InsertStatement represents a parsed INSERT statement
type InsertStatement struct {
	TableName string
	Columns   []string
	Values    []string
	Returning []string // RETURNING columns, unqualified
}

// DeleteStatement represents a parsed DELETE statement
type DeleteStatement struct {
	TableName string
	Where     []Condition // Empty means every row
}

// splitQualified splits "table.column" into its parts. An unqualified name
// has an empty table part.
func splitQualified(name string) (string, string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// unqualify strips a table qualifier from a column reference
func unqualify(name string) string {
	_, column := splitQualified(name)
	return column
}
