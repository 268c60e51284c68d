package render

import (
	"path"
	"strings"
)

// resolvePartialPath resolves a partial name relative to templateDir,
// producing a path still relative to docRoot (the Loader interface always
// takes docRoot-relative paths). Absolute names, and names whose
// resolution would climb above docRoot, fail with ErrSecurity.
func resolvePartialPath(docRoot, templateDir, name string) (string, error) {
	if path.IsAbs(name) {
		return "", ErrSecurity
	}

	candidate := path.Join(templateDir, name)
	if !strings.HasSuffix(candidate, TemplateSuffix) {
		candidate += TemplateSuffix
	}
	candidate = path.Clean(candidate)

	if candidate == ".." || strings.HasPrefix(candidate, "../") {
		return "", ErrSecurity
	}
	return candidate, nil
}
