package query

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax matches every *SyntaxError
	ErrSyntax = errors.New("syntax error")

	// ErrEvaluation matches every *EvaluationError
	ErrEvaluation = errors.New("evaluation error")
)

// SyntaxError reports query text that does not match the shape of a clause.
type SyntaxError struct {
	Clause  string // Clause that failed, e.g. "SELECT", "JOIN", "INSERT INTO"
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid %s syntax: %s", e.Clause, e.Message)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

func syntaxErrorf(clause string, format string, args ...interface{}) error {
	return &SyntaxError{Clause: clause, Message: fmt.Sprintf(format, args...)}
}

// EvaluationError reports a query that parsed but cannot be evaluated
// against the data, such as a reference to a missing column.
type EvaluationError struct {
	Message string
}

func (e *EvaluationError) Error() string {
	return e.Message
}

func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}

func evaluationErrorf(format string, args ...interface{}) error {
	return &EvaluationError{Message: fmt.Sprintf(format, args...)}
}
