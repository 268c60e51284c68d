package flags

import (
	"errors"
	"testing"
)

func TestSetRejectsInvalidName(t *testing.T) {
	s := New()
	if err := s.Set(ScopeProject, "bad name!", true); err == nil {
		t.Fatalf("expected error for invalid flag name")
	}
}

func TestResolveProjectWinsOverGlobal(t *testing.T) {
	s := New()
	if err := s.Set(ScopeGlobal, "workflow", false); err != nil {
		t.Fatalf("set global: %v", err)
	}
	if err := s.Set(ScopeProject, "workflow", true); err != nil {
		t.Fatalf("set project: %v", err)
	}
	v, ok := s.Resolve("workflow")
	if !ok || v != true {
		t.Fatalf("expected project value to win, got %v, %v", v, ok)
	}
}

func TestResolveFallsBackToGlobal(t *testing.T) {
	s := New()
	if err := s.Set(ScopeGlobal, "allow-client-info", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok := s.Resolve("allow-client-info")
	if !ok || v != true {
		t.Fatalf("expected global fallback, got %v, %v", v, ok)
	}
}

func TestResolveAbsent(t *testing.T) {
	s := New()
	if _, ok := s.Resolve("nonexistent"); ok {
		t.Fatalf("expected absent flag to resolve to not-ok")
	}
}

func TestCustomValidatorRejectsByScope(t *testing.T) {
	s := New()
	s.RegisterValidator("global-only", func(value Value, scope Scope) error {
		if scope != ScopeGlobal {
			return errScopeRestricted
		}
		return nil
	})
	if err := s.Set(ScopeProject, "global-only", "x"); err == nil {
		t.Fatalf("expected project-scope write to be rejected")
	}
	if err := s.Set(ScopeGlobal, "global-only", "x"); err != nil {
		t.Fatalf("expected global-scope write to succeed: %v", err)
	}
}

var errScopeRestricted = errors.New("global scope only")

func TestResolveAllCachesUntilMutation(t *testing.T) {
	s := New()
	_ = s.Set(ScopeProject, "a", "1")
	view1 := s.ResolveAll()
	if len(view1) != 1 {
		t.Fatalf("expected one flag in view")
	}
	_ = s.Set(ScopeProject, "b", "2")
	view2 := s.ResolveAll()
	if len(view2) != 2 {
		t.Fatalf("expected resolved view to be rebuilt after mutation, got %d", len(view2))
	}
}
