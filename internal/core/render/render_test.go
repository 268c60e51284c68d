package render

import (
	"errors"
	"testing"

	"github.com/deeprave/mcp-guide-go/internal/core/flags"
)

type fakeLoader map[string]string

func (f fakeLoader) Read(p string) (string, error) {
	c, ok := f[p]
	if !ok {
		return "", errors.New("not found: " + p)
	}
	return c, nil
}

func TestRenderSimpleVariable(t *testing.T) {
	loader := fakeLoader{
		"greet.mustache": "Hello, {{name}}!",
	}
	out, err := Render(loader, ".", "greet.mustache", map[string]any{"name": "agent"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Body != "Hello, agent!" {
		t.Fatalf("got %q", out.Body)
	}
}

func TestRenderSectionOverList(t *testing.T) {
	loader := fakeLoader{
		"list.mustache": "{{#items}}- {{.}}\n{{/items}}",
	}
	out, err := Render(loader, ".", "list.mustache", map[string]any{
		"items": []string{"a", "b"},
	}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "." in a string-list element context doesn't resolve (no self key);
	// this asserts iteration happens the right number of times.
	if out.Body != "- \n- \n" {
		t.Fatalf("got %q", out.Body)
	}
}

func TestRenderInvertedSection(t *testing.T) {
	loader := fakeLoader{
		"cond.mustache": "{{^enabled}}disabled{{/enabled}}",
	}
	out, err := Render(loader, ".", "cond.mustache", map[string]any{}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Body != "disabled" {
		t.Fatalf("got %q", out.Body)
	}
}

func TestRenderFilteredByRequires(t *testing.T) {
	loader := fakeLoader{
		"gated.mustache": "---\nrequires-workflow: true\n---\nbody\n",
	}
	out, err := Render(loader, ".", "gated.mustache", nil, nil, map[string]flags.Value{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil (filtered), got %+v", out)
	}
}

func TestRenderPassesRequiresWhenFlagSet(t *testing.T) {
	loader := fakeLoader{
		"gated.mustache": "---\nrequires-workflow: true\n---\nbody text\n",
	}
	out, err := Render(loader, ".", "gated.mustache", nil, nil, map[string]flags.Value{"workflow": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil || out.Body != "body text\n" {
		t.Fatalf("expected ungated render, got %+v", out)
	}
}

func TestRenderPartialInclusion(t *testing.T) {
	loader := fakeLoader{
		"main.mustache": "before {{>sub}} after",
		"sub.mustache":  "PARTIAL",
	}
	out, err := Render(loader, ".", "main.mustache", nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Body != "before PARTIAL after" {
		t.Fatalf("got %q", out.Body)
	}
}

func TestRenderPartialPathEscapeRejected(t *testing.T) {
	loader := fakeLoader{
		"sub/main.mustache": "{{>../../etc/passwd}}",
	}
	_, err := Render(loader, ".", "sub/main.mustache", nil, nil, nil)
	if !errors.Is(err, ErrSecurity) {
		t.Fatalf("expected ErrSecurity, got %v", err)
	}
}

func TestRenderPartialFilteredBecomesEmpty(t *testing.T) {
	loader := fakeLoader{
		"main.mustache": "[{{>sub}}]",
		"sub.mustache":  "---\nrequires-workflow: true\n---\nhidden\n",
	}
	out, err := Render(loader, ".", "main.mustache", nil, nil, map[string]flags.Value{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Body != "[]" {
		t.Fatalf("expected filtered partial to render as empty, got %q", out.Body)
	}
}

func TestContextLayeringCallerWinsOverFrontmatter(t *testing.T) {
	loader := fakeLoader{
		"tpl.mustache": "---\nname: frontmatter-value\n---\n{{name}}",
	}
	out, err := Render(loader, ".", "tpl.mustache", map[string]any{"name": "caller-value"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Body != "caller-value" {
		t.Fatalf("expected caller context to win, got %q", out.Body)
	}
}
