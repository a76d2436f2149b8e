package search

import (
	"strings"
	"unicode"

	"github.com/syllabus-engine/backend/internal/sparse"
)

// Document represents an indexed course
type Document struct {
	ID     string
	Title  string // Metadata
	Skills []string
	Vector sparse.Vector
}

// Analyze turns tokenizer output into vocabulary terms: lowercase, split on
// non-word characters, drop runs shorter than two characters.
func Analyze(tokens []string) []string {
	f := func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsNumber(c) && c != '_'
	}
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		for _, field := range strings.FieldsFunc(strings.ToLower(token), f) {
			if len([]rune(field)) >= 2 { // Skip single characters
				terms = append(terms, field)
			}
		}
	}
	return terms
}
