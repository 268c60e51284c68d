package render

import (
	"os"
	"path/filepath"
)

// FileLoader reads template source from the local filesystem, rooted at
// Root. It is the reference Loader implementation; any component that can
// resolve a document-root-relative path to bytes satisfies Loader.
type FileLoader struct {
	Root string
}

// Read reads the file at path, joined onto l.Root. Callers are expected to
// pass only paths already confined to the document root by
// resolvePartialPath or an equivalent check — FileLoader itself performs
// no additional confinement beyond filepath.Join's normal cleaning.
func (l FileLoader) Read(path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(l.Root, path))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
