package compose

import (
	"regexp"
	"strings"
)

// nonTerminalAbbreviations are abbreviations whose trailing period must
// not be treated as a sentence boundary.
var nonTerminalAbbreviations = []string{"e.g.", "i.e.", "etc."}

const abbrevPlaceholder = "\x00ABBR\x00"

var sentenceSplitRe = regexp.MustCompile(`(?s)(?:[.!?])\s+`)

// splitSentences breaks text into sentence-like chunks, treating
// e.g./i.e./etc. as non-terminal punctuation so they don't spuriously end
// a sentence. Each chunk keeps its own terminal punctuation.
func splitSentences(text string) []string {
	protected := text
	for _, abbr := range nonTerminalAbbreviations {
		protected = strings.ReplaceAll(protected, abbr, strings.ReplaceAll(abbr, ".", abbrevPlaceholder))
	}

	var parts []string
	last := 0
	for _, loc := range sentenceSplitRe.FindAllStringIndex(protected, -1) {
		parts = append(parts, protected[last:loc[0]+1])
		last = loc[1]
	}
	parts = append(parts, protected[last:])
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ReplaceAll(p, abbrevPlaceholder, ".")
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// similarityRatio computes a Ratcliff-Obershelp-style similarity ratio
// between two strings: twice the total length of matched characters
// (found via recursive longest-common-substring matching) divided by the
// combined length of both strings.
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matched := matchLength([]rune(a), []rune(b))
	return 2 * float64(matched) / float64(len([]rune(a))+len([]rune(b)))
}

func matchLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	aStart, bStart, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchLength(a[:aStart], b[:bStart])
	total += matchLength(a[aStart+size:], b[bStart+size:])
	return total
}

// longestMatch finds the longest common contiguous run between a and b.
func longestMatch(a, b []rune) (aStart, bStart, size int) {
	lenA, lenB := len(a), len(b)
	// prev/curr hold the running match length ending at each position.
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)
	best := 0
	bestAEnd, bestBEnd := 0, 0

	for i := 1; i <= lenA; i++ {
		for j := 1; j <= lenB; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
					bestAEnd, bestBEnd = i, j
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return bestAEnd - best, bestBEnd - best, best
}

// similarityThreshold is the minimum ratio at which two sentences are
// considered near-duplicates.
const similarityThreshold = 0.85

// normalize lowercases and strips a sentence for comparison purposes.
func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// dedupeSentences removes any sentence whose normalized form is at least
// similarityThreshold similar to an earlier kept sentence's normalized
// form, preserving first-occurrence order.
func dedupeSentences(sentences []string) []string {
	kept := make([]string, 0, len(sentences))
	normalized := make([]string, 0, len(sentences))
	for _, s := range sentences {
		n := normalize(s)
		dup := false
		for _, prev := range normalized {
			if n == prev || similarityRatio(n, prev) >= similarityThreshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, s)
			normalized = append(normalized, n)
		}
	}
	return kept
}
