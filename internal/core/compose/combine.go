package compose

import (
	"strings"

	"github.com/deeprave/mcp-guide-go/internal/stringutils"
)

// Combine merges a parent template's resolved instruction with its
// partials' resolved instructions (in include order) into the single
// instruction string carried by RenderedContent.
//
// If any element is marked important, the composer emits only the
// earliest important element's text (possibly empty) — this is the
// mechanism by which a child partial overrides its parent. Otherwise,
// every present element's text is concatenated and sentence-deduplicated:
// split on sentence-terminal punctuation (e.g./i.e./etc. treated as
// non-terminal), dropping any sentence whose normalized form is ≥0.85
// similar (Ratcliff-Obershelp ratio) to an earlier kept sentence, then
// joined with newline.
func Combine(parent Instruction, partials []Instruction) string {
	elements := make([]Instruction, 0, 1+len(partials))
	if parent.Present {
		elements = append(elements, parent)
	}
	for _, p := range partials {
		if p.Present {
			elements = append(elements, p)
		}
	}

	for _, e := range elements {
		if e.Important {
			return e.Text
		}
	}

	var combined strings.Builder
	for _, e := range elements {
		if stringutils.IsEmpty(e.Text) {
			continue
		}
		if combined.Len() > 0 {
			combined.WriteString(" ")
		}
		combined.WriteString(e.Text)
	}
	if stringutils.IsEmpty(combined.String()) {
		return ""
	}

	sentences := splitSentences(combined.String())
	deduped := dedupeSentences(sentences)
	return strings.Join(deduped, "\n")
}
