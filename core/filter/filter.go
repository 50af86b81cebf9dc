package filter

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/ext"
)

// costLimit bounds the work a single evaluation may do.
const costLimit = 100_000

// Result is the outcome of a successful evaluation.
type Result int

const (
	ResultFalse Result = iota
	ResultTrue
	// ResultAbsent is a null or unknown value.
	ResultAbsent
)

func (r Result) String() string {
	switch r {
	case ResultTrue:
		return "true"
	case ResultFalse:
		return "false"
	default:
		return "absent"
	}
}

// Identifiers are not declared: the candidate mapping is open-ended, so
// expressions stay unchecked and names resolve against the Scope at runtime.
var sharedEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(ext.Strings())
})

// Predicate is a compiled condition. It is immutable and safe for concurrent
// use; evaluation state lives in the Scope passed to Evaluate.
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile parses expr into a predicate.
func Compile(expr string) (*Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrCompile)
	}

	env, err := sharedEnv()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, iss.Err())
	}
	prg, err := env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Predicate {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *Predicate) String() string {
	return p.expr
}

// Evaluate runs the predicate against the scope's current root.
// Non-boolean results yield ErrUnsupported; runtime failures yield ErrEvaluation.
func (p *Predicate) Evaluate(scope *Scope) (Result, error) {
	if scope == nil {
		scope = NewScope()
	}
	out, _, err := p.prg.Eval(scope)
	if err != nil {
		return ResultAbsent, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	if _, isNull := out.(types.Null); isNull || types.IsUnknown(out) {
		return ResultAbsent, nil
	}
	b, ok := out.Value().(bool)
	if !ok {
		return ResultAbsent, fmt.Errorf("%w: result is %s", ErrUnsupported, out.Type().TypeName())
	}
	if b {
		return ResultTrue, nil
	}
	return ResultFalse, nil
}

// Match reports whether the predicate holds for the scope's root.
// Any error counts as no match.
func (p *Predicate) Match(scope *Scope) bool {
	res, err := p.Evaluate(scope)
	return err == nil && res == ResultTrue
}

// Probe evaluates the predicate against an empty root to reject conditions
// that could never filter anything. A false result and evaluation errors are
// accepted: a condition may legitimately fail on an empty root.
func (p *Predicate) Probe() error {
	res, err := p.Evaluate(NewScope())
	switch {
	case errors.Is(err, ErrUnsupported):
		return err
	case err != nil:
		return nil
	case res == ResultFalse:
		return nil
	default:
		return fmt.Errorf("%w: empty root yields %s", ErrAlwaysTrue, res)
	}
}
