// Package filter compiles subscriber conditions written in CEL and evaluates
// them against a flat metadata mapping.
//
// Top-level metadata keys are available as identifiers, and the whole mapping
// is available as metadata:
//
//	content_type == 'text/plain' && content_length > 1024
//	metadata['meta_owner'] == 'alice'
//
// A Predicate is shared and immutable. The candidate lives in a Scope owned by
// one subscriber:
//
//	p, err := filter.Compile(expr)
//	if err != nil {
//		return err // errors.Is(err, filter.ErrCompile)
//	}
//	if err := p.Probe(); err != nil {
//		return err // ErrAlwaysTrue or ErrUnsupported
//	}
//	scope := filter.NewScope()
//	scope.SetRoot(metadata)
//	if p.Match(scope) {
//		// deliver
//	}
//
// Match is fail-closed: evaluation errors and non-boolean results never match.
package filter
