package render

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/deeprave/mcp-guide-go/internal/core/tcontext"
)

// partialResolver renders a named partial against the enclosing scope and
// returns its body and whether it was filtered (present=false). The
// resolver itself accumulates the partial's frontmatter into
// RenderedContent.PartialFrontmatter. Supplied by the top-level Render
// orchestration so eval stays free of frontmatter/gating/IO concerns.
type partialResolver func(name string, scope *tcontext.Scope) (body string, present bool, err error)

// evalNodes renders nodes against scope, substituting variables and
// sections, and invoking resolvePartial for every {{>name}} marker
// encountered.
func evalNodes(nodes []node, scope *tcontext.Scope, resolvePartial partialResolver) (string, error) {
	var out strings.Builder
	for _, n := range nodes {
		switch t := n.(type) {
		case textNode:
			out.WriteString(string(t))
		case varNode:
			v, _ := scope.Lookup(t.name)
			out.WriteString(stringify(v))
		case partialNode:
			body, present, err := resolvePartial(t.name, scope)
			if err != nil {
				return "", err
			}
			if present {
				out.WriteString(body)
			}
		case sectionNode:
			rendered, err := evalSection(t, scope, resolvePartial)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		default:
			return "", fmt.Errorf("render: unknown node type %T", n)
		}
	}
	return out.String(), nil
}

func evalSection(s sectionNode, scope *tcontext.Scope, resolvePartial partialResolver) (string, error) {
	v, ok := scope.Lookup(s.name)
	truthy := isTruthy(v, ok)

	if s.inverted {
		if truthy {
			return "", nil
		}
		return evalNodes(s.children, scope, resolvePartial)
	}

	if !truthy {
		return "", nil
	}

	// A list value iterates the block once per element, each against a
	// child scope where applicable (map elements become variables).
	if list, isList := asList(v); isList {
		var out strings.Builder
		for _, elem := range list {
			childScope := scope
			if m, ok := elem.(map[string]any); ok {
				childScope = scope.Child(m)
			}
			rendered, err := evalNodes(s.children, childScope, resolvePartial)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		}
		return out.String(), nil
	}

	// A map value pushes its fields as a child scope for the block.
	if m, ok := v.(map[string]any); ok {
		return evalNodes(s.children, scope.Child(m), resolvePartial)
	}

	// Any other truthy scalar just renders the block once against the
	// unchanged scope.
	return evalNodes(s.children, scope, resolvePartial)
}

func isTruthy(v any, present bool) bool {
	if !present || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}
	if list, ok := asList(v); ok {
		return len(list) > 0
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map {
		return rv.Len() > 0
	}
	return true
}

func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
