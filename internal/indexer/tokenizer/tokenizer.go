// Package tokenizer provides the text normalisation used by the vocabulary
// builder and the term scorer. Words are lower-cased runs of letters, numbers
// (decimal, letter-like and other numeric forms such as "²" or "Ⅷ") and
// underscores, the same class Python's \w matches. Combining marks are not
// word characters, so a decomposed "e\u0301" ends the word at "e". No
// stop-words are removed and no stemming is applied.
package tokenizer

import (
	"strings"
	"unicode"
)

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Words lower-cases text and splits it on non-word boundaries.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
}

// Distinct returns the set of distinct words in text.
func Distinct(text string) map[string]struct{} {
	words := Words(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// CountSubstring counts non-overlapping, case-insensitive occurrences of term
// anywhere in text, including inside longer words. An empty term counts zero.
func CountSubstring(text, term string) int {
	if term == "" {
		return 0
	}
	return strings.Count(strings.ToLower(text), strings.ToLower(term))
}

// CountToken counts the words of text equal to the lower-cased term.
func CountToken(text, term string) int {
	term = strings.ToLower(term)
	if term == "" {
		return 0
	}
	n := 0
	for _, w := range Words(text) {
		if w == term {
			n++
		}
	}
	return n
}
