// Package compose implements the instruction composer (component C):
// per-template instruction resolution, "important" override semantics, and
// fuzzy sentence deduplication across parent + partial instructions.
package compose

import (
	"strings"

	"github.com/deeprave/mcp-guide-go/internal/core/frontmatter"
)

// typeDefaults maps a template's resolved type to its default instruction
// when no explicit instruction string is present in frontmatter.
var typeDefaults = map[string]string{
	"user/information":   "Display this information.",
	"agent/information":  "This is for your reference; do not display.",
	"agent/instruction":  "Follow these instructions; do not display.",
	"agent/requirements": "Adhere to these requirements; do not display.",
}

const defaultType = "agent/instruction"

// Instruction is a single resolved instruction, ready to be combined with
// its siblings by Combine.
type Instruction struct {
	Text      string
	Important bool
	Present   bool // false when the template yielded no instruction at all
}

// Resolve computes the per-template instruction from fm, following:
//  1. no "instruction" and no "type" key → no instruction.
//  2. "instruction" present but not a string → fall back to the type
//     default.
//  3. "instruction" begins with "^" + whitespace → strip it, mark
//     important, keep the remainder (which may be empty).
//  4. otherwise → use the string as-is, not important.
//  5. with no explicit instruction, default from type via typeDefaults
//     (falling back to the agent/instruction default).
func Resolve(fm frontmatter.Map) Instruction {
	_, hasInstructionKey := fm[frontmatter.KeyInstruction]
	_, hasTypeKey := fm[frontmatter.KeyType]
	if !hasInstructionKey && !hasTypeKey {
		return Instruction{Present: false}
	}

	raw, isString := fm[frontmatter.KeyInstruction].(string)
	if hasInstructionKey && isString {
		if text, important, ok := stripImportant(raw); ok {
			return Instruction{Text: text, Important: important, Present: true}
		}
	}

	typ, _ := fm.GetString(frontmatter.KeyType)
	if typ == "" {
		typ = defaultType
	}
	def, ok := typeDefaults[typ]
	if !ok {
		def = typeDefaults[defaultType]
	}
	return Instruction{Text: def, Present: true}
}

// stripImportant recognizes the "^ " importance marker. A lone "^" yields
// an empty remainder but still reports important=true and ok=true (the
// instruction is present, just textless). Any other string passes through
// unchanged with important=false.
func stripImportant(raw string) (text string, important bool, ok bool) {
	if raw == "^" {
		return "", true, true
	}
	if rest, found := strings.CutPrefix(raw, "^"); found {
		trimmed := strings.TrimLeft(rest, " \t")
		if trimmed != rest {
			return trimmed, true, true
		}
	}
	return raw, false, true
}
