// Package flags implements the core's two-layer feature flag store and
// resolver (component D): project and global maps of validated flag
// values, resolved project-first.
package flags

import (
	"fmt"
	"regexp"
	"sync"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Value is a flag value: boolean, string, ordered sequence of strings, or
// a mapping from string to string.
type Value any

// Scope distinguishes which store a flag is being validated or resolved
// against. Per-flag validators receive it so a flag can restrict itself to
// one scope.
type Scope int

const (
	ScopeProject Scope = iota
	ScopeGlobal
)

// Validator is a per-flag custom predicate, registered by flag name. It
// receives the candidate value and the scope being written to, and returns
// an error if the value is unacceptable for that flag.
type Validator func(value Value, scope Scope) error

// ValidationError reports a flag name or value that failed validation.
type ValidationError struct {
	Name   string
	Scope  Scope
	Reason string
}

func (e *ValidationError) Error() string {
	scope := "project"
	if e.Scope == ScopeGlobal {
		scope = "global"
	}
	return fmt.Sprintf("flags: %s (%s scope): %s", e.Name, scope, e.Reason)
}

// Store holds the project and global flag maps plus the registered
// per-flag validators, and a cached resolved view invalidated on mutation.
// Store is owned by the session/config layer; the core consumes it
// read-only through Resolver.
type Store struct {
	mu         sync.RWMutex
	project    map[string]Value
	global     map[string]Value
	validators map[string]Validator

	resolvedValid bool
	resolved      map[string]Value
}

// New constructs an empty flag store.
func New() *Store {
	return &Store{
		project:    make(map[string]Value),
		global:     make(map[string]Value),
		validators: make(map[string]Validator),
	}
}

// RegisterValidator installs a custom predicate for name. A flag with no
// registered validator accepts any well-typed value.
func (s *Store) RegisterValidator(name string, v Validator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validators[name] = v
}

// validateLocked checks name against the name rule and value against the type
// predicate (always satisfied by Value's definition) plus any registered
// per-flag validator. Caller must hold s.mu for writing.
func (s *Store) validateLocked(name string, value Value, scope Scope) error {
	if name == "" || !nameRe.MatchString(name) {
		return &ValidationError{Name: name, Scope: scope, Reason: "flag name must match [A-Za-z0-9_-]+"}
	}
	switch value.(type) {
	case bool, string, []string, map[string]string:
	default:
		return &ValidationError{Name: name, Scope: scope, Reason: fmt.Sprintf("unsupported value type %T", value)}
	}
	if v, ok := s.validators[name]; ok {
		if err := v(value, scope); err != nil {
			return &ValidationError{Name: name, Scope: scope, Reason: err.Error()}
		}
	}
	return nil
}

func (s *Store) mapFor(scope Scope) map[string]Value {
	if scope == ScopeGlobal {
		return s.global
	}
	return s.project
}

// Set validates and stores value for name in the given scope, invalidating
// the cached resolved view.
func (s *Store) Set(scope Scope, name string, value Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateLocked(name, value, scope); err != nil {
		return err
	}
	s.mapFor(scope)[name] = value
	s.resolvedValid = false
	return nil
}

// Remove deletes name from the given scope, invalidating the cached
// resolved view. Removing an absent name is a no-op.
func (s *Store) Remove(scope Scope, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mapFor(scope), name)
	s.resolvedValid = false
}

// Resolve returns the project value for name if present, else the global
// value, else (nil, false).
func (s *Store) Resolve(name string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.project[name]; ok {
		return v, true
	}
	if v, ok := s.global[name]; ok {
		return v, true
	}
	return nil, false
}

// ResolveAll returns every flag name present in either store, mapped to
// its project-first resolved value. The result is cached and rebuilt only
// after a mutation.
func (s *Store) ResolveAll() map[string]Value {
	s.mu.RLock()
	if s.resolvedValid {
		defer s.mu.RUnlock()
		return s.resolved
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolvedValid {
		return s.resolved
	}
	out := make(map[string]Value, len(s.project)+len(s.global))
	for k, v := range s.global {
		out[k] = v
	}
	for k, v := range s.project {
		out[k] = v
	}
	s.resolved = out
	s.resolvedValid = true
	return out
}
