// Package format implements the outgoing content formatters: base (concat
// with blank-line separation), plain (single verbatim item, or
// "--- name ---" separated when there are several), and mime (JSON
// {mimeType, text} pairs) — the three concrete answers to the content-
// format Open Question.
package format

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Item is one piece of content to be formatted: a name (used by the
// "plain" formatter's multi-item separator and by "mime"'s payload) and
// its text body.
type Item struct {
	Name     string
	Text     string
	MIMEType string
}

// Formatter renders a slice of Items into the final outgoing string.
type Formatter interface {
	Format(items []Item) (string, error)
}

// Style names the formatter selected by the content-format flag.
type Style string

const (
	StyleBase  Style = "base"
	StylePlain Style = "plain"
	StyleMIME  Style = "mime"
)

// For resolves a Style to its Formatter, defaulting to base for an
// unrecognized or empty style.
func For(style Style) Formatter {
	switch style {
	case StylePlain:
		return PlainFormatter{}
	case StyleMIME:
		return MIMEFormatter{}
	default:
		return BaseFormatter{}
	}
}

// BaseFormatter concatenates every item's text, separated by a blank
// line.
type BaseFormatter struct{}

func (BaseFormatter) Format(items []Item) (string, error) {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Text)
	}
	return strings.Join(parts, "\n\n"), nil
}

// PlainFormatter renders a single item verbatim; with more than one item,
// each is preceded by a "--- name ---" header.
type PlainFormatter struct{}

func (PlainFormatter) Format(items []Item) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	if len(items) == 1 {
		return items[0].Text, nil
	}
	var out strings.Builder
	for i, it := range items {
		if i > 0 {
			out.WriteString("\n\n")
		}
		fmt.Fprintf(&out, "--- %s ---\n", it.Name)
		out.WriteString(it.Text)
	}
	return out.String(), nil
}

// mimePayload is one {mimeType, text} entry in the mime formatter's JSON
// array output.
type mimePayload struct {
	MIMEType string `json:"mimeType"`
	Text     string `json:"text"`
}

// MIMEFormatter renders items as a JSON array of {mimeType, text} pairs.
// An item with no explicit MIMEType defaults to "text/plain".
type MIMEFormatter struct{}

func (MIMEFormatter) Format(items []Item) (string, error) {
	payloads := make([]mimePayload, 0, len(items))
	for _, it := range items {
		mt := it.MIMEType
		if mt == "" {
			mt = "text/plain"
		}
		payloads = append(payloads, mimePayload{MIMEType: mt, Text: it.Text})
	}
	out, err := json.Marshal(payloads)
	if err != nil {
		return "", fmt.Errorf("format: marshaling mime payload: %w", err)
	}
	return string(out), nil
}
