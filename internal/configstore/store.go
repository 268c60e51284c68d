// Package configstore persists the core's flag store (component D) to a
// SQLite database, one row per (scope, name) pair with the value encoded
// as JSON, using the same database/sql plus idempotent
// "CREATE TABLE IF NOT EXISTS" pattern as the rest of this codebase's
// storage layers.
package configstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/deeprave/mcp-guide-go/internal/core/flags"
)

// Store wraps a *flags.Store and a backing SQLite database. Every mutation
// goes through Set/Remove here rather than directly against the wrapped
// flags.Store, so the validated in-memory map and the backing rows never
// drift apart.
type Store struct {
	db   *sql.DB
	core *flags.Store
}

// Open wraps db and core. Init must be called once before use.
func Open(db *sql.DB, core *flags.Store) *Store {
	return &Store{db: db, core: core}
}

// Init creates the flags table if it does not already exist.
func (s *Store) Init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS flags (
			scope TEXT NOT NULL,
			name  TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (scope, name)
		)
	`)
	if err != nil {
		return fmt.Errorf("configstore: init: %w", err)
	}
	return nil
}

func scopeLabel(scope flags.Scope) string {
	if scope == flags.ScopeGlobal {
		return "global"
	}
	return "project"
}

// Set validates value and commits it to core's in-memory map, then
// persists it to the backing row. A validation error is returned
// unchanged and leaves both the database and core state untouched; a
// persistence error is returned after core has already been updated.
func (s *Store) Set(scope flags.Scope, name string, value flags.Value) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("configstore: encoding %q: %w", name, err)
	}
	if err := s.core.Set(scope, name, value); err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO flags (scope, name, value) VALUES (?, ?, ?)
		 ON CONFLICT(scope, name) DO UPDATE SET value = excluded.value`,
		scopeLabel(scope), name, string(encoded),
	)
	if err != nil {
		return fmt.Errorf("configstore: persisting %q: %w", name, err)
	}
	return nil
}

// Remove deletes name from the given scope in both core and the backing
// table.
func (s *Store) Remove(scope flags.Scope, name string) error {
	s.core.Remove(scope, name)
	_, err := s.db.Exec(`DELETE FROM flags WHERE scope = ? AND name = ?`, scopeLabel(scope), name)
	if err != nil {
		return fmt.Errorf("configstore: removing %q: %w", name, err)
	}
	return nil
}

// Load hydrates core from every row currently in the table. Intended to
// run once at startup, before any task registers and starts reading
// resolved flags.
func (s *Store) Load() error {
	rows, err := s.db.Query(`SELECT scope, name, value FROM flags`)
	if err != nil {
		return fmt.Errorf("configstore: loading: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var scopeStr, name, raw string
		if err := rows.Scan(&scopeStr, &name, &raw); err != nil {
			return fmt.Errorf("configstore: scanning row: %w", err)
		}
		var value flags.Value
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return fmt.Errorf("configstore: decoding %q: %w", name, err)
		}
		scope := flags.ScopeProject
		if scopeStr == "global" {
			scope = flags.ScopeGlobal
		}
		// Loaded values go through core.Set and are re-validated against
		// the validators registered at load time; a row that fails
		// validation aborts Load with an error.
		if err := s.core.Set(scope, name, normalizeJSONValue(value)); err != nil {
			return fmt.Errorf("configstore: rehydrating %q: %w", name, err)
		}
	}
	return rows.Err()
}

// normalizeJSONValue converts the loosely-typed results of decoding a
// flags.Value through encoding/json (bool/string fine as-is, but a JSON
// array decodes to []any and a JSON object to map[string]any) back into
// the concrete []string / map[string]string shapes flags.Store validates.
func normalizeJSONValue(v flags.Value) flags.Value {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(val))
		for k, item := range val {
			if s, ok := item.(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return v
	}
}
