package tcontext

import "testing"

func TestScopeLookupWalksChain(t *testing.T) {
	root := Root(map[string]any{"agent": "outer"})
	child := root.Child(map[string]any{"caller": "inner"})

	if v, ok := child.Lookup("caller"); !ok || v != "inner" {
		t.Fatalf("expected caller=inner, got %v, %v", v, ok)
	}
	if v, ok := child.Lookup("agent"); !ok || v != "outer" {
		t.Fatalf("expected fallthrough to parent scope, got %v, %v", v, ok)
	}
	if _, ok := child.Lookup("missing"); ok {
		t.Fatalf("expected missing name to miss")
	}
}

func TestChildScopeShadowsParent(t *testing.T) {
	root := Root(map[string]any{"name": "parent"})
	child := root.Child(map[string]any{"name": "child"})
	if v, _ := child.Lookup("name"); v != "child" {
		t.Fatalf("expected most-specific scope to win, got %v", v)
	}
}

func TestCacheInvalidateSession(t *testing.T) {
	c := New()
	c.Put("sess-1", SessionBase{System: map[string]any{"os": "linux"}})
	if _, ok := c.Get("sess-1"); !ok {
		t.Fatalf("expected cached base")
	}
	c.InvalidateSession("sess-1")
	if _, ok := c.Get("sess-1"); ok {
		t.Fatalf("expected base dropped after invalidation")
	}
}

func TestCacheInvalidateAll(t *testing.T) {
	c := New()
	c.Put("a", SessionBase{})
	c.Put("b", SessionBase{})
	c.InvalidateAll()
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected all sessions dropped")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected all sessions dropped")
	}
}

func TestBaseScopeMissing(t *testing.T) {
	c := New()
	if _, ok := c.BaseScope("unknown"); ok {
		t.Fatalf("expected no base scope for uncached session")
	}
}
