package filter

import "github.com/google/cel-go/interpreter"

// RootVariable names the whole candidate mapping inside a condition,
// e.g. metadata["content-type"] for keys that are not valid identifiers.
const RootVariable = "metadata"

// Scope holds the candidate root a predicate is evaluated against.
// It is not safe for concurrent use; each subscriber owns one and
// serializes SetRoot and Evaluate.
type Scope struct {
	root map[string]any
}

var _ interpreter.Activation = (*Scope)(nil)

// NewScope returns a scope with an empty root.
func NewScope() *Scope {
	return &Scope{root: map[string]any{}}
}

// SetRoot replaces the current candidate. A nil root is treated as empty.
func (s *Scope) SetRoot(root map[string]any) {
	if root == nil {
		root = map[string]any{}
	}
	s.root = root
}

// Root returns the current candidate.
func (s *Scope) Root() map[string]any {
	return s.root
}

// ResolveName implements interpreter.Activation. Top-level keys of the root
// resolve as identifiers; RootVariable resolves to the root itself unless the
// root defines a key with that name.
func (s *Scope) ResolveName(name string) (any, bool) {
	if v, ok := s.root[name]; ok {
		return v, true
	}
	if name == RootVariable {
		return s.root, true
	}
	return nil, false
}

// Parent implements interpreter.Activation.
func (s *Scope) Parent() interpreter.Activation {
	return nil
}
