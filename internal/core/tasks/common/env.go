// Package common holds the small set of dependencies every core task
// (I/J/K/L) needs to render a template and talk to the supervisor, so
// each task package stays decoupled from how the renderer's inputs are
// actually sourced.
package common

import (
	"path"

	"github.com/deeprave/mcp-guide-go/internal/core/compose"
	"github.com/deeprave/mcp-guide-go/internal/core/flags"
	"github.com/deeprave/mcp-guide-go/internal/core/render"
)

// RenderEnv bundles everything Render needs that a task cannot own itself:
// the template loader, the document root, and accessors for the
// session-variable and resolved-flag layers (which change out from under
// a long-lived task as sessions/config mutate).
type RenderEnv struct {
	Loader        render.Loader
	DocRoot       string
	SessionVars   func() map[string]any
	ResolvedFlags func() map[string]flags.Value
}

// Render expands templatePath against the current session/flag state plus
// callerContext as the most-specific layer. A templatePath with no file
// extension (a bare template name such as "monitoring-setup") gets
// render.TemplateSuffix appended, the same way partial names resolve.
func (e RenderEnv) Render(templatePath string, callerContext map[string]any) (*render.RenderedContent, error) {
	if path.Ext(templatePath) == "" {
		templatePath += render.TemplateSuffix
	}
	return render.Render(e.Loader, e.DocRoot, templatePath, callerContext, e.SessionVars(), e.ResolvedFlags())
}

// Instruction computes the composed instruction string for a rendered
// template, folding in every partial it pulled in.
func Instruction(rc *render.RenderedContent) string {
	if rc == nil {
		return ""
	}
	parent := compose.Resolve(rc.Frontmatter)
	partials := make([]compose.Instruction, 0, len(rc.PartialFrontmatter))
	for _, pfm := range rc.PartialFrontmatter {
		partials = append(partials, compose.Resolve(pfm))
	}
	return compose.Combine(parent, partials)
}
