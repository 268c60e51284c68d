// Package tcontext implements the layered template variable context used
// by the renderer (component E, plus the chain-walking primitive shared
// with component B): a per-session cache of system/agent/project/category
// roots, and a generic child-scope chain for name lookup.
package tcontext

// Scope is one link in a parent-chain of variable lookups. Name lookup
// walks from the most specific scope outward; the first hit wins. Scopes
// are immutable once built — each layer of context (caller args,
// frontmatter vars, session base, resolved flags) is materialized as a
// child scope over the previous layer's scope.
type Scope struct {
	vars   map[string]any
	parent *Scope
}

// Root builds a scope with no parent.
func Root(vars map[string]any) *Scope {
	if vars == nil {
		vars = map[string]any{}
	}
	return &Scope{vars: vars}
}

// Child builds a new, more-specific scope over s.
func (s *Scope) Child(vars map[string]any) *Scope {
	if vars == nil {
		vars = map[string]any{}
	}
	return &Scope{vars: vars, parent: s}
}

// Lookup walks the chain from this scope outward and returns the first
// value found for name.
func (s *Scope) Lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}
