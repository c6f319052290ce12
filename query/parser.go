package query

import (
	"strconv"
	"strings"
)

// Parser parses SQL statements from a token stream
type Parser struct {
	tokens []Token
	pos    int
	clause string // clause being parsed, used in syntax errors
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		pos:    0,
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) error {
	if p.current().Type != tokType {
		return p.errorf("expected %v, got %s", tokType, p.current().describe())
	}
	p.advance()
	return nil
}

// errorf builds a SyntaxError for the clause being parsed
func (p *Parser) errorf(format string, args ...interface{}) error {
	return syntaxErrorf(p.clause, format, args...)
}

// expectEOF fails when tokens remain after a complete statement
func (p *Parser) expectEOF() error {
	switch p.current().Type {
	case TokenEOF:
		return nil
	case TokenError:
		return p.errorf("invalid character in query: %s", p.current().Value)
	default:
		return p.errorf("unexpected trailing tokens after query: %s", p.current().describe())
	}
}

// Parse parses a SELECT statement
func Parse(query string) (*Query, error) {
	tokens, err := tokenize("SELECT", query)
	if err != nil {
		return nil, err
	}

	parser := NewParser(tokens)
	q, err := parser.parseQuery()
	if err != nil {
		return nil, err
	}

	if err := parser.expectEOF(); err != nil {
		return nil, err
	}

	return q, nil
}

// parseQuery parses, in order:
//
//	SELECT [DISTINCT] fields FROM table
//	[(INNER | LEFT [OUTER] | RIGHT [OUTER]) JOIN table ON a = b]
//	[WHERE cond [AND cond]...]
//	[GROUP BY col, ...]
//	[ORDER BY field [ASC|DESC], ...]
//	[LIMIT n]
func (p *Parser) parseQuery() (*Query, error) {
	p.clause = "SELECT"
	if err := p.expect(TokenSelect); err != nil {
		return nil, err
	}

	q := &Query{}

	if p.current().Type == TokenDistinct {
		q.Distinct = true
		p.advance()
	}

	fields, err := p.parseFieldList()
	if err != nil {
		return nil, err
	}
	q.Fields = fields

	p.clause = "FROM"
	if err := p.expect(TokenFrom); err != nil {
		return nil, err
	}
	q.TableName, err = p.parseTableName()
	if err != nil {
		return nil, err
	}

	if isJoinStart(p.current().Type) {
		join, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		q.Join = join

		if isJoinStart(p.current().Type) {
			return nil, p.errorf("only one JOIN per query is supported")
		}
	}

	if p.current().Type == TokenWhere {
		p.clause = "WHERE"
		p.advance()
		q.Where, err = p.parseConditions()
		if err != nil {
			return nil, err
		}
	}

	if p.current().Type == TokenGroup {
		p.clause = "GROUP BY"
		p.advance()
		if err := p.expect(TokenBy); err != nil {
			return nil, err
		}
		q.GroupBy, err = p.parseColumnList()
		if err != nil {
			return nil, err
		}
	}

	if p.current().Type == TokenOrder {
		p.clause = "ORDER BY"
		p.advance()
		if err := p.expect(TokenBy); err != nil {
			return nil, err
		}
		q.OrderBy, err = p.parseOrderBy()
		if err != nil {
			return nil, err
		}
	}

	if p.current().Type == TokenLimit {
		p.clause = "LIMIT"
		p.advance()
		limit, err := p.parseLimit()
		if err != nil {
			return nil, err
		}
		q.Limit = &limit
	}

	if len(q.GroupBy) == 0 {
		for _, f := range q.Fields {
			if f.Aggregate != nil {
				q.HasAggregateWithoutGroupBy = true
				break
			}
		}
	}

	return q, nil
}

// parseFieldList parses the comma-separated SELECT list
func (p *Parser) parseFieldList() ([]Field, error) {
	var fields []Field
	star := false

	for {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		if field.Name == "*" {
			star = true
		}
		fields = append(fields, field)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	if star && len(fields) > 1 {
		return nil, p.errorf("* cannot be combined with other fields")
	}

	return fields, nil
}

// parseField parses a column reference, "*" or an aggregate call
func (p *Parser) parseField() (Field, error) {
	tok := p.current()

	if tok.Type == TokenIdent && tok.Value == "*" {
		p.advance()
		return Field{Name: "*"}, nil
	}

	if tok.Type == TokenIdent && p.peek().Type == TokenLeftParen {
		agg, err := p.parseAggregate()
		if err != nil {
			return Field{}, err
		}
		return Field{Name: agg.String(), Aggregate: agg}, nil
	}

	name, err := p.parseColumnRef()
	if err != nil {
		return Field{}, err
	}
	return Field{Name: name}, nil
}

// parseAggregate parses FUNC(column) where FUNC is an aggregate function
func (p *Parser) parseAggregate() (*Aggregate, error) {
	fn := AggregateFunc(strings.ToUpper(p.current().Value))
	switch fn {
	case AggregateCount, AggregateSum, AggregateAvg, AggregateMin, AggregateMax:
	default:
		return nil, p.errorf("unknown aggregate function %s", p.current().Value)
	}
	p.advance()

	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	var column string
	if p.current().Type == TokenIdent && p.current().Value == "*" {
		if fn != AggregateCount {
			return nil, p.errorf("%s(*) is not supported", fn)
		}
		column = "*"
		p.advance()
	} else {
		var err error
		column, err = p.parseColumnRef()
		if err != nil {
			return nil, err
		}
	}

	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	return &Aggregate{Function: fn, Column: column}, nil
}

// parseColumnRef parses a bare, qualified or double-quoted column name
func (p *Parser) parseColumnRef() (string, error) {
	tok := p.current()

	var name string
	switch {
	case tok.Type == TokenIdent && tok.Value != "*":
		name = tok.Value
	case tok.Type == TokenString && tok.Quote == '"':
		name = tok.Value
	default:
		return "", p.errorf("expected column name, got %s", tok.describe())
	}

	if name == "" {
		return "", p.errorf("column name cannot be empty")
	}
	if err := ValidateColumnName(name); err != nil {
		return "", p.errorf("%v", err)
	}

	p.advance()
	return name, nil
}

// parseColumnList parses col [, col]...
func (p *Parser) parseColumnList() ([]string, error) {
	var columns []string
	for {
		col, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)

		if p.current().Type != TokenComma {
			return columns, nil
		}
		p.advance()
	}
}

// parseTableName parses a bare or quoted table name
func (p *Parser) parseTableName() (string, error) {
	tok := p.current()
	if tok.Type != TokenIdent && tok.Type != TokenString {
		return "", p.errorf("expected table name, got %s", tok.describe())
	}
	if tok.Value == "*" {
		return "", p.errorf("expected table name, got %s", tok.describe())
	}
	if err := ValidateTableName(tok.Value); err != nil {
		return "", p.errorf("%v", err)
	}
	p.advance()
	return tok.Value, nil
}

func isJoinStart(t TokenType) bool {
	switch t {
	case TokenJoin, TokenInner, TokenLeft, TokenRight, TokenFull, TokenCross:
		return true
	}
	return false
}

// parseJoin parses (INNER | LEFT [OUTER] | RIGHT [OUTER]) JOIN table ON a = b
func (p *Parser) parseJoin() (*Join, error) {
	p.clause = "JOIN"
	join := &Join{}

	switch p.current().Type {
	case TokenInner:
		join.Type = JoinInner
		p.advance()
	case TokenLeft:
		join.Type = JoinLeft
		p.advance()
		if p.current().Type == TokenOuter {
			p.advance()
		}
	case TokenRight:
		join.Type = JoinRight
		p.advance()
		if p.current().Type == TokenOuter {
			p.advance()
		}
	case TokenFull, TokenCross:
		return nil, p.errorf("%s JOIN is not supported", p.current().Type)
	default:
		return nil, p.errorf("join kind must be INNER, LEFT or RIGHT")
	}

	if err := p.expect(TokenJoin); err != nil {
		return nil, err
	}

	tableName, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	join.TableName = tableName

	if err := p.expect(TokenOn); err != nil {
		return nil, err
	}

	left, err := p.parseColumnRef()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenEqual); err != nil {
		return nil, err
	}
	right, err := p.parseColumnRef()
	if err != nil {
		return nil, err
	}
	join.Condition = JoinCondition{Left: left, Right: right}

	return join, nil
}

// parseConditions parses cond [AND cond]...
func (p *Parser) parseConditions() ([]Condition, error) {
	var conds []Condition
	for {
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)

		switch p.current().Type {
		case TokenAnd:
			p.advance()
		case TokenOr:
			return nil, p.errorf("OR is not supported, conditions can only be combined with AND")
		default:
			return conds, nil
		}
	}
}

// parseCondition parses column op literal
func (p *Parser) parseCondition() (Condition, error) {
	column, err := p.parseColumnRef()
	if err != nil {
		return Condition{}, err
	}

	op := p.current()
	switch op.Type {
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual, TokenLike:
		p.advance()
	default:
		return Condition{}, p.errorf("expected comparison operator after %s, got %s", column, op.describe())
	}

	value, err := p.parseLiteral()
	if err != nil {
		return Condition{}, err
	}

	return Condition{Column: column, Operator: op.Type, Value: value}, nil
}

// parseLiteral parses a quoted string, a number or a bare word
func (p *Parser) parseLiteral() (string, error) {
	tok := p.current()
	switch tok.Type {
	case TokenString, TokenNumber:
	case TokenIdent:
		if tok.Value == "*" {
			return "", p.errorf("expected value, got %s", tok.describe())
		}
	default:
		return "", p.errorf("expected value, got %s", tok.describe())
	}
	p.advance()
	return tok.Value, nil
}

// parseOrderBy parses field [ASC|DESC] [, field [ASC|DESC]]...
func (p *Parser) parseOrderBy() ([]OrderByItem, error) {
	var items []OrderByItem

	for {
		var item OrderByItem
		if p.current().Type == TokenIdent && p.peek().Type == TokenLeftParen {
			agg, err := p.parseAggregate()
			if err != nil {
				return nil, err
			}
			item.Column = agg.String()
		} else {
			col, err := p.parseColumnRef()
			if err != nil {
				return nil, err
			}
			item.Column = col
		}

		switch p.current().Type {
		case TokenAsc:
			p.advance()
		case TokenDesc:
			item.Desc = true
			p.advance()
		}

		items = append(items, item)

		if p.current().Type != TokenComma {
			return items, nil
		}
		p.advance()
	}
}

// parseLimit parses a non-negative integer row count
func (p *Parser) parseLimit() (int64, error) {
	tok := p.current()
	if tok.Type != TokenNumber {
		return 0, p.errorf("expected number, got %s", tok.describe())
	}

	limit, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil || limit < 0 {
		return 0, p.errorf("LIMIT must be a non-negative integer, got %s", tok.Value)
	}

	p.advance()
	return limit, nil
}
