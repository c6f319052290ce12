package query

// StatementKind reports which statement a query string holds, judging by
// its leading keyword.
func StatementKind(query string) (StatementType, error) {
	tok := NewLexer(query).NextToken()
	switch tok.Type {
	case TokenSelect:
		return StatementSelect, nil
	case TokenInsert:
		return StatementInsert, nil
	case TokenDelete:
		return StatementDelete, nil
	default:
		return 0, syntaxErrorf("statement", "expected SELECT, INSERT or DELETE, got %s", tok.describe())
	}
}

// ParseInsert parses:
//
//	INSERT INTO table (col, ...) VALUES (value, ...) [RETURNING col, ...]
func ParseInsert(query string) (*InsertStatement, error) {
	tokens, err := tokenize("INSERT INTO", query)
	if err != nil {
		return nil, err
	}

	p := NewParser(tokens)
	p.clause = "INSERT INTO"

	if err := p.expect(TokenInsert); err != nil {
		return nil, err
	}
	if err := p.expect(TokenInto); err != nil {
		return nil, err
	}

	stmt := &InsertStatement{}
	stmt.TableName, err = p.parseTableName()
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	columns, err := p.parseColumnList()
	if err != nil {
		return nil, err
	}
	for _, col := range columns {
		stmt.Columns = append(stmt.Columns, unqualify(col))
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	p.clause = "VALUES"
	if err := p.expect(TokenValues); err != nil {
		return nil, err
	}
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	for {
		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, value)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	if len(stmt.Columns) != len(stmt.Values) {
		return nil, syntaxErrorf("INSERT INTO", "%d columns but %d values", len(stmt.Columns), len(stmt.Values))
	}

	if p.current().Type == TokenReturning {
		p.clause = "RETURNING"
		p.advance()
		if p.current().Type == TokenIdent && p.current().Value == "*" {
			stmt.Returning = []string{"*"}
			p.advance()
		} else {
			returning, err := p.parseColumnList()
			if err != nil {
				return nil, err
			}
			for _, col := range returning {
				stmt.Returning = append(stmt.Returning, unqualify(col))
			}
		}
	}

	if err := p.expectEOF(); err != nil {
		return nil, err
	}

	return stmt, nil
}

// ParseDelete parses:
//
//	DELETE FROM table [WHERE cond [AND cond]...]
func ParseDelete(query string) (*DeleteStatement, error) {
	tokens, err := tokenize("DELETE FROM", query)
	if err != nil {
		return nil, err
	}

	p := NewParser(tokens)
	p.clause = "DELETE FROM"

	if err := p.expect(TokenDelete); err != nil {
		return nil, err
	}
	if err := p.expect(TokenFrom); err != nil {
		return nil, err
	}

	stmt := &DeleteStatement{}
	stmt.TableName, err = p.parseTableName()
	if err != nil {
		return nil, err
	}

	if p.current().Type == TokenWhere {
		p.clause = "WHERE"
		p.advance()
		stmt.Where, err = p.parseConditions()
		if err != nil {
			return nil, err
		}
	}

	if err := p.expectEOF(); err != nil {
		return nil, err
	}

	return stmt, nil
}
