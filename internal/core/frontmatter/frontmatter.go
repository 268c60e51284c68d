// Package frontmatter parses the delimited structured header that precedes
// a template body and exposes typed, lowercase-normalized accessors over it.
package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"github.com/deeprave/mcp-guide-go/internal/stringutils"
)

const fence = "---"

// Map is a type-safe frontmatter dictionary with typed accessors. Unknown
// keys are preserved verbatim; accessors error on type mismatch rather than
// silently coercing.
type Map map[string]any

// GetString returns a lowercased string value for key, or "" if absent.
// It returns an error if the stored value is present but not a string.
func (m Map) GetString(key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("frontmatter: key %q: expected string, got %T", key, v)
	}
	return strings.ToLower(s), nil
}

// GetList returns a list value for key, wrapping a bare scalar in a
// one-element list. Returns nil if absent.
func (m Map) GetList(key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, fmt.Sprint(e))
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}

// GetDict returns a mapping value for key, or nil if absent. It returns an
// error if the stored value is present but not a mapping.
func (m Map) GetDict(key string) (map[string]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = val
		}
		return out, nil
	default:
		return nil, fmt.Errorf("frontmatter: key %q: expected mapping, got %T", key, v)
	}
}

// GetBool returns a boolean value for key. The zero value (false) is
// returned if absent. It returns an error if the stored value is present
// but not a boolean.
func (m Map) GetBool(key string) (bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("frontmatter: key %q: expected bool, got %T", key, v)
	}
	return b, nil
}

// RequiresKeys returns every key beginning with "requires-", paired with the
// flag name that follows the prefix.
func (m Map) RequiresKeys() map[string]any {
	out := make(map[string]any)
	for k, v := range m {
		if name, ok := strings.CutPrefix(k, RequiresPrefix); ok {
			out[name] = v
		}
	}
	return out
}

// RequiresPrefix is the frontmatter key prefix introducing a requires-gate
// directive; the suffix names the flag to check.
const RequiresPrefix = "requires-"

// Known frontmatter keys, exposed so callers can exclude them when building
// a template's variable context.
const (
	KeyType        = "type"
	KeyInstruction = "instruction"
	KeyDescription = "description"
	KeyUsage       = "usage"
	KeyCategory    = "category"
	KeyAliases     = "aliases"
	KeyIncludes    = "includes"
)

// Unit is a parsed template content unit: the frontmatter header and the
// body that follows it.
type Unit struct {
	Frontmatter        Map
	FrontmatterByteLen int
	Body               string
	BodyLen            int
}

// Parse strips a leading "---"-delimited YAML header from content and
// returns the parsed frontmatter plus the remaining body. Content with no
// header yields an empty Frontmatter and the content unchanged as Body.
func Parse(content string) (Unit, error) {
	trimmedStart := strings.TrimLeft(content, "\n")
	leadingNL := len(content) - len(trimmedStart)

	if !strings.HasPrefix(trimmedStart, fence) {
		return Unit{Frontmatter: Map{}, Body: content, BodyLen: len(content)}, nil
	}

	rest := trimmedStart[len(fence):]
	// Fence line must end with newline (or EOF) to count as a header open.
	if !strings.HasPrefix(rest, "\n") && rest != "" {
		return Unit{Frontmatter: Map{}, Body: content, BodyLen: len(content)}, nil
	}
	rest = strings.TrimPrefix(rest, "\n")

	closeIdx := strings.Index(rest, "\n"+fence)
	if closeIdx == -1 {
		if rest == fence {
			closeIdx = 0
			rest = ""
		} else {
			return Unit{Frontmatter: Map{}, Body: content, BodyLen: len(content)}, nil
		}
	}

	headerYAML := rest[:closeIdx]
	afterClose := rest[closeIdx:]
	afterClose = strings.TrimPrefix(afterClose, "\n"+fence)
	afterClose = strings.TrimPrefix(afterClose, fence)
	afterClose = strings.TrimPrefix(afterClose, "\n")

	headerByteLen := leadingNL + len(fence) + 1 + len(headerYAML) + 1 + len(fence) + 1
	if headerByteLen > len(content) {
		headerByteLen = len(content)
	}

	fm := Map{}
	if !stringutils.IsEmpty(headerYAML) {
		raw := map[string]any{}
		if err := yaml.Unmarshal([]byte(headerYAML), &raw); err != nil {
			return Unit{}, fmt.Errorf("frontmatter: invalid header: %w", err)
		}
		for k, v := range raw {
			fm[k] = normalizeYAML(v)
		}
	}

	return Unit{
		Frontmatter:        fm,
		FrontmatterByteLen: headerByteLen,
		Body:               afterClose,
		BodyLen:            len(afterClose),
	}, nil
}

// normalizeYAML converts map[string]interface{} nodes recursively so that
// GetDict/GetList never have to deal with yaml.v3's map[string]interface{}
// vs. map[interface{}]interface{} ambiguity.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
