package configstore

import (
	"database/sql"
	"testing"

	"github.com/deeprave/mcp-guide-go/internal/core/flags"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSetPersistsAndReloads(t *testing.T) {
	db := openTestDB(t)
	core := flags.New()
	s := Open(db, core)
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := s.Set(flags.ScopeProject, "workflow", []string{"discussion", "planning"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	reloadedCore := flags.New()
	reloaded := Open(db, reloadedCore)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	v, ok := reloadedCore.Resolve("workflow")
	if !ok {
		t.Fatalf("expected workflow to resolve after reload")
	}
	list, ok := v.([]string)
	if !ok || len(list) != 2 || list[0] != "discussion" {
		t.Fatalf("expected reloaded list value, got %#v", v)
	}
}

func TestRemoveDeletesRow(t *testing.T) {
	db := openTestDB(t)
	core := flags.New()
	s := Open(db, core)
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := s.Set(flags.ScopeGlobal, "allow-client-info", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Remove(flags.ScopeGlobal, "allow-client-info"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	reloadedCore := flags.New()
	reloaded := Open(db, reloadedCore)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := reloadedCore.Resolve("allow-client-info"); ok {
		t.Fatalf("expected removed flag to stay gone after reload")
	}
}

func TestSetRejectsInvalidValue(t *testing.T) {
	db := openTestDB(t)
	core := flags.New()
	s := Open(db, core)
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := s.Set(flags.ScopeProject, "bad name!", true); err == nil {
		t.Fatalf("expected validation error for bad flag name")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM flags`).Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no row persisted for a rejected set, got %d", count)
	}
}
