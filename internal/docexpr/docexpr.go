// Package docexpr parses the small "category-or-collection expression"
// dialect used by flags like startup-instruction to name a document
// target, optionally narrowed by glob patterns.
package docexpr

import "strings"

// Expression is a parsed document expression: the name of a category or
// collection, plus optional glob patterns narrowing it (nil when none
// were given).
type Expression struct {
	RawInput string
	Name     string
	Patterns []string
}

// Parse parses raw. The dialect is "name" or "name:pattern1,pattern2,...";
// patterns are trimmed of surrounding whitespace. An empty raw parses to a
// zero-value Name with no patterns.
func Parse(raw string) Expression {
	name, patternsPart, hasPatterns := strings.Cut(raw, ":")
	expr := Expression{RawInput: raw, Name: strings.TrimSpace(name)}
	if !hasPatterns {
		return expr
	}

	var patterns []string
	for _, p := range strings.Split(patternsPart, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	expr.Patterns = patterns
	return expr
}
