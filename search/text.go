package search

import (
	"strings"
	"unicode"
)

// Common English words ignored when checking for verbatim matches.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "we": true, "our": true,
}

// significantWords lowercases text, splits on non-alphanumeric runs,
// and drops stop words.
func significantWords(text string) []string {
	raw := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if !stopWords[w] {
			words = append(words, w)
		}
	}
	return words
}

// containsAllQueryWords reports whether every significant query word
// appears somewhere in the chunk text.
func containsAllQueryWords(text, query string) bool {
	queryWords := significantWords(query)
	if len(queryWords) == 0 {
		return false
	}

	present := make(map[string]bool)
	for _, w := range significantWords(text) {
		present[w] = true
	}

	for _, w := range queryWords {
		if !present[w] {
			return false
		}
	}
	return true
}
