package docexpr

import "testing"

func TestParseNameOnly(t *testing.T) {
	e := Parse("standards")
	if e.Name != "standards" || e.Patterns != nil {
		t.Fatalf("got %+v", e)
	}
}

func TestParseNameWithPatterns(t *testing.T) {
	e := Parse("standards: go/*, python/*")
	if e.Name != "standards" {
		t.Fatalf("got name %q", e.Name)
	}
	if len(e.Patterns) != 2 || e.Patterns[0] != "go/*" || e.Patterns[1] != "python/*" {
		t.Fatalf("got patterns %v", e.Patterns)
	}
}

func TestParseEmpty(t *testing.T) {
	e := Parse("")
	if e.Name != "" || e.Patterns != nil {
		t.Fatalf("got %+v", e)
	}
}
