package frontmatter

import "testing"

func TestParseNoHeader(t *testing.T) {
	unit, err := Parse("hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unit.Body != "hello world" {
		t.Fatalf("body = %q", unit.Body)
	}
	if len(unit.Frontmatter) != 0 {
		t.Fatalf("expected empty frontmatter, got %v", unit.Frontmatter)
	}
}

func TestParseWithHeader(t *testing.T) {
	content := "---\ntype: instruction\ninstruction: do the thing\nrequires-workflow: true\n---\nbody text\n"
	unit, err := Parse(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unit.Body != "body text\n" {
		t.Fatalf("body = %q", unit.Body)
	}
	typ, err := unit.Frontmatter.GetString(KeyType)
	if err != nil || typ != "instruction" {
		t.Fatalf("type = %q, err = %v", typ, err)
	}
	req := unit.Frontmatter.RequiresKeys()
	if v, ok := req["workflow"]; !ok || v != true {
		t.Fatalf("requires-workflow not parsed: %v", req)
	}
}

func TestParseUnterminatedHeaderTreatedAsBody(t *testing.T) {
	content := "---\ntype: instruction\nno closing fence"
	unit, err := Parse(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unit.Body != content {
		t.Fatalf("expected entire content as body when header unterminated, got %q", unit.Body)
	}
}

func TestGetListWrapsScalar(t *testing.T) {
	m := Map{"aliases": "solo"}
	if got := m.GetList("aliases"); len(got) != 1 || got[0] != "solo" {
		t.Fatalf("GetList = %v", got)
	}
}

func TestGetStringTypeMismatch(t *testing.T) {
	m := Map{"type": 5}
	if _, err := m.GetString("type"); err == nil {
		t.Fatalf("expected error for non-string type value")
	}
}

func TestCheckRequiresBool(t *testing.T) {
	if !CheckRequires(true, true) {
		t.Fatalf("expected true==true to pass")
	}
	if CheckRequires(true, false) {
		t.Fatalf("expected true==false to fail")
	}
	if !CheckRequires(false, nil) {
		t.Fatalf("expected requires-false to pass when flag unresolved")
	}
	if CheckRequires(true, nil) {
		t.Fatalf("expected requires-true to fail when flag unresolved")
	}
}

func TestCheckRequiresList(t *testing.T) {
	list := []string{"markdown", "plain"}
	if !CheckRequires(list, "markdown") {
		t.Fatalf("expected membership match")
	}
	if CheckRequires(list, "mime") {
		t.Fatalf("expected non-membership to fail")
	}
}

func TestCheckRequiresListAgainstListActual(t *testing.T) {
	required := []string{"planning"}
	if !CheckRequires(required, []string{"discussion", "planning"}) {
		t.Fatalf("expected non-empty list intersection to pass")
	}
	if CheckRequires(required, []string{"discussion", "deployment"}) {
		t.Fatalf("expected empty list intersection to fail")
	}
	if !CheckRequires(required, []any{"discussion", "planning"}) {
		t.Fatalf("expected []any actual to intersect the same as []string")
	}
}

func TestCheckRequiresListAgainstMappingActual(t *testing.T) {
	required := []string{"planning"}
	if !CheckRequires(required, map[string]string{"planning": "on"}) {
		t.Fatalf("expected key membership to pass")
	}
	if CheckRequires(required, map[string]string{"deployment": "on"}) {
		t.Fatalf("expected missing key to fail")
	}
	if !CheckRequires(required, map[string]any{"planning": true}) {
		t.Fatalf("expected map[string]any key membership to pass")
	}
}

func TestCheckRequiresEquality(t *testing.T) {
	if !CheckRequires("enabled", "enabled") {
		t.Fatalf("expected scalar equality to pass")
	}
	if CheckRequires("enabled", "disabled") {
		t.Fatalf("expected scalar inequality to fail")
	}
	if CheckRequires("enabled", nil) {
		t.Fatalf("expected nil actual to fail scalar equality")
	}
}
