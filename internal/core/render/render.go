// Package render implements the template renderer (component B): a
// logic-less mustache-style dialect with sections, inverted sections, and
// recursive partial inclusion, over a layered variable context, gated by
// frontmatter requires-directives.
package render

import (
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/deeprave/mcp-guide-go/internal/core/flags"
	"github.com/deeprave/mcp-guide-go/internal/core/frontmatter"
	"github.com/deeprave/mcp-guide-go/internal/core/tcontext"
)

// ErrSecurity is returned when a partial include would resolve outside
// the document root.
var ErrSecurity = errors.New("render: partial path escapes document root")

// TemplateSuffix is the sentinel suffix that marks a file as a template
// subject to the frontmatter/partial/context pipeline; files without it
// are returned verbatim (still frontmatter-stripped, since frontmatter
// parsing itself is suffix-independent per §4.A).
const TemplateSuffix = ".mustache"

// Loader reads template source text by document-root-relative path.
type Loader interface {
	Read(path string) (string, error)
}

// RenderedContent is a template content unit extended with provenance and
// the accumulated frontmatter of every partial it pulled in.
type RenderedContent struct {
	TemplatePath       string
	TemplateName       string
	Body               string
	Frontmatter        frontmatter.Map
	PartialFrontmatter []frontmatter.Map
}

// TemplateType returns the frontmatter "type" key, defaulting to
// "agent/instruction" when absent.
func (r *RenderedContent) TemplateType() string {
	t, _ := r.Frontmatter.GetString(frontmatter.KeyType)
	if t == "" {
		return "agent/instruction"
	}
	return t
}

func (r *RenderedContent) str(key string) string {
	s, _ := r.Frontmatter.GetString(key)
	return s
}

func (r *RenderedContent) Description() string { return r.str(frontmatter.KeyDescription) }
func (r *RenderedContent) Usage() string       { return r.str(frontmatter.KeyUsage) }
func (r *RenderedContent) Category() string    { return r.str(frontmatter.KeyCategory) }
func (r *RenderedContent) Aliases() []string   { return r.Frontmatter.GetList(frontmatter.KeyAliases) }

// IsTemplateFile reports whether name carries the template sentinel
// suffix.
func IsTemplateFile(name string) bool {
	return strings.HasSuffix(name, TemplateSuffix)
}

// Render expands templatePath from docRoot into a RenderedContent. It
// returns (nil, nil) when the template itself is filtered by an
// unsatisfied requires-directive: filtering is silent per §4.A, logged
// but not an error. A filtered partial renders as an empty string in its
// parent's body. It returns (nil, err) for parse/IO/render
// failures; callers must not surface these as exceptions to tasks.
//
// callerContext is the most-specific context layer (tool/prompt-call
// extras). sessionVars is the session-base layer (system/agent/project/
// category, built by tcontext.Cache). resolvedFlags is the flag
// resolver's project∪global view, forming the least-specific layer.
func Render(loader Loader, docRoot, templatePath string, callerContext, sessionVars map[string]any, resolvedFlags map[string]flags.Value) (*RenderedContent, error) {
	raw, err := loader.Read(templatePath)
	if err != nil {
		return nil, fmt.Errorf("render: reading %s: %w", templatePath, err)
	}

	unit, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("render: parsing frontmatter of %s: %w", templatePath, err)
	}

	if !requiresSatisfied(unit.Frontmatter, resolvedFlags) {
		log.Printf("[RENDER] %s filtered by requires-gate", templatePath)
		return nil, nil
	}

	flagVars := make(map[string]any, len(resolvedFlags))
	for k, v := range resolvedFlags {
		flagVars[k] = v
	}
	base := tcontext.Root(flagVars)
	base = base.Child(sessionVars)
	base = base.Child(frontmatterVars(unit.Frontmatter))
	scope := base.Child(callerContext)

	if !IsTemplateFile(templatePath) {
		return &RenderedContent{
			TemplatePath: templatePath,
			TemplateName: path.Base(templatePath),
			Body:         unit.Body,
			Frontmatter:  unit.Frontmatter,
		}, nil
	}

	var partialFrontmatters []frontmatter.Map
	templateDir := path.Dir(templatePath)

	nodes, err := parse(unit.Body)
	if err != nil {
		return nil, fmt.Errorf("render: parsing body of %s: %w", templatePath, err)
	}
	body, err := evalNodesWithPartials(nodes, scope, docRoot, templateDir, loader, resolvedFlags, &partialFrontmatters)
	if err != nil {
		return nil, fmt.Errorf("render: evaluating %s: %w", templatePath, err)
	}

	return &RenderedContent{
		TemplatePath:       templatePath,
		TemplateName:       path.Base(templatePath),
		Body:               body,
		Frontmatter:        unit.Frontmatter,
		PartialFrontmatter: partialFrontmatters,
	}, nil
}

// evalNodesWithPartials is evalNodes, but additionally threads docRoot/
// templateDir/loader/resolvedFlags through so a partial's own {{>name}}
// includes resolve recursively relative to the partial's own directory.
func evalNodesWithPartials(nodes []node, scope *tcontext.Scope, docRoot, templateDir string, loader Loader, resolvedFlags map[string]flags.Value, collected *[]frontmatter.Map) (string, error) {
	resolvePartial := func(name string, s *tcontext.Scope) (string, bool, error) {
		partialPath, err := resolvePartialPath(docRoot, templateDir, name)
		if err != nil {
			return "", false, err
		}
		raw, err := loader.Read(partialPath)
		if err != nil {
			return "", false, fmt.Errorf("render: loading partial %s: %w", partialPath, err)
		}
		unit, err := frontmatter.Parse(raw)
		if err != nil {
			return "", false, fmt.Errorf("render: parsing partial frontmatter %s: %w", partialPath, err)
		}
		if !requiresSatisfied(unit.Frontmatter, resolvedFlags) {
			log.Printf("[RENDER] partial %s filtered by requires-gate", partialPath)
			return "", false, nil
		}
		*collected = append(*collected, unit.Frontmatter)

		nodes, err := parse(unit.Body)
		if err != nil {
			return "", false, fmt.Errorf("render: parsing partial body %s: %w", partialPath, err)
		}
		nestedScope := s.Child(frontmatterVars(unit.Frontmatter))
		return evalNodesWithPartials(nodes, nestedScope, docRoot, path.Dir(partialPath), loader, resolvedFlags, collected)
	}
	return evalNodes(nodes, scope, resolvePartial)
}

// requiresSatisfied evaluates every requires-<flag> directive in fm
// against resolvedFlags; the template passes only if all are satisfied.
func requiresSatisfied(fm frontmatter.Map, resolvedFlags map[string]flags.Value) bool {
	for name, required := range fm.RequiresKeys() {
		actual, _ := resolvedFlags[name]
		if !frontmatter.CheckRequires(required, actual) {
			return false
		}
	}
	return true
}

// frontmatterVars extracts a template's own frontmatter as a variable
// layer, excluding includes and requires-* directives (those drive
// pipeline behavior, not substitution).
func frontmatterVars(fm frontmatter.Map) map[string]any {
	out := make(map[string]any, len(fm))
	for k, v := range fm {
		if k == frontmatter.KeyIncludes || strings.HasPrefix(k, frontmatter.RequiresPrefix) {
			continue
		}
		out[k] = v
	}
	return out
}
