package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrInvalidExpression is returned when an advanced filter does not compile.
var ErrInvalidExpression = errors.New("invalid filter expression")

// Expression is a compiled advanced filter such as
// `price >= 100 && status == "Valid"`. Identifiers refer to the row's JSON
// field names.
type Expression struct {
	source  string
	program *vm.Program
}

// CompileExpression compiles src. A blank src yields a nil Expression,
// which filters nothing.
func CompileExpression(src string) (*Expression, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	program, err := expr.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return &Expression{source: src, program: program}, nil
}

// String returns the source text.
func (e *Expression) String() string {
	if e == nil {
		return ""
	}
	return e.source
}

// Match evaluates the expression against env. Evaluation errors and
// non-boolean results count as no match.
func (e *Expression) Match(env map[string]any) bool {
	out, err := expr.Run(e.program, env)
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}

// Where adapts an expression to a predicate. env converts a row into the
// variables the expression sees. Returns nil for a nil expression.
func Where[T any](e *Expression, env func(T) map[string]any) Predicate[T] {
	if e == nil {
		return nil
	}
	return func(row T) bool {
		return e.Match(env(row))
	}
}
