package compose

import (
	"testing"

	"github.com/deeprave/mcp-guide-go/internal/core/frontmatter"
)

func TestResolveNoInstructionNoType(t *testing.T) {
	got := Resolve(frontmatter.Map{})
	if got.Present {
		t.Fatalf("expected no instruction when neither key present, got %+v", got)
	}
}

func TestResolveTypeDefault(t *testing.T) {
	got := Resolve(frontmatter.Map{frontmatter.KeyType: "user/information"})
	if !got.Present || got.Text != "Display this information." {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveUnknownTypeFallsBackToAgentInstruction(t *testing.T) {
	got := Resolve(frontmatter.Map{frontmatter.KeyType: "nonsense/type"})
	if got.Text != "Follow these instructions; do not display." {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveImportantMarker(t *testing.T) {
	got := Resolve(frontmatter.Map{frontmatter.KeyInstruction: "^ override this"})
	if !got.Important || got.Text != "override this" {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveLoneCaretIsImportantWithNoText(t *testing.T) {
	got := Resolve(frontmatter.Map{frontmatter.KeyInstruction: "^"})
	if !got.Important || got.Text != "" || !got.Present {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveCaretWithoutWhitespaceIsLiteral(t *testing.T) {
	got := Resolve(frontmatter.Map{frontmatter.KeyInstruction: "^nospace"})
	if got.Important {
		t.Fatalf("expected no importance without whitespace after caret, got %+v", got)
	}
	if got.Text != "^nospace" {
		t.Fatalf("expected literal text, got %q", got.Text)
	}
}

func TestResolveNonStringInstructionFallsBackToType(t *testing.T) {
	got := Resolve(frontmatter.Map{
		frontmatter.KeyInstruction: 5,
		frontmatter.KeyType:        "agent/requirements",
	})
	if got.Text != "Adhere to these requirements; do not display." {
		t.Fatalf("got %+v", got)
	}
}

func TestCombineImportantWins(t *testing.T) {
	parent := Instruction{Text: "parent instruction.", Present: true}
	partial := Instruction{Text: "override everything.", Important: true, Present: true}
	got := Combine(parent, []Instruction{partial})
	if got != "override everything." {
		t.Fatalf("got %q", got)
	}
}

func TestCombineDedupesNearDuplicateSentences(t *testing.T) {
	parent := Instruction{Text: "Follow these instructions carefully.", Present: true}
	partial := Instruction{Text: "Follow these instructions carefully!", Present: true}
	got := Combine(parent, []Instruction{partial})
	if got != "Follow these instructions carefully." {
		t.Fatalf("expected near-duplicate dropped, got %q", got)
	}
}

func TestCombineKeepsDistinctSentences(t *testing.T) {
	parent := Instruction{Text: "Do the first thing.", Present: true}
	partial := Instruction{Text: "Do something entirely different.", Present: true}
	got := Combine(parent, []Instruction{partial})
	if got != "Do the first thing.\nDo something entirely different." {
		t.Fatalf("got %q", got)
	}
}

func TestSplitSentencesTreatsAbbreviationsAsNonTerminal(t *testing.T) {
	got := splitSentences("Use a helper, e.g. a validator. Then stop.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
	if got[0] != "Use a helper, e.g. a validator." {
		t.Fatalf("got %q", got[0])
	}
}
