// Package uri parses the guide:// resource URI scheme used to address a
// collection and an optional document within it.
package uri

import (
	"fmt"
	"net/url"
	"strings"
)

const scheme = "guide"

// GuideURI is a parsed guide:// reference: a required collection (the
// host component) and an optional document path.
type GuideURI struct {
	Collection string
	Document   string
}

// Parse parses raw as a guide:// URI. The scheme must be exactly "guide";
// the host is the collection and is required; the path, with its leading
// slash stripped, is the document — empty (or a bare "/") means no
// document was named.
func Parse(raw string) (GuideURI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return GuideURI{}, fmt.Errorf("uri: invalid guide URI %q: %w", raw, err)
	}
	if u.Scheme != scheme {
		return GuideURI{}, fmt.Errorf("uri: unsupported scheme %q, expected %q", u.Scheme, scheme)
	}
	if u.Host == "" {
		return GuideURI{}, fmt.Errorf("uri: guide URI %q missing collection", raw)
	}

	doc := strings.TrimPrefix(u.Path, "/")
	return GuideURI{Collection: u.Host, Document: doc}, nil
}

// String renders g back into its canonical guide:// form.
func (g GuideURI) String() string {
	if g.Document == "" {
		return fmt.Sprintf("guide://%s", g.Collection)
	}
	return fmt.Sprintf("guide://%s/%s", g.Collection, g.Document)
}
