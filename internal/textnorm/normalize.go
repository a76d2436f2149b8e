// Package textnorm canonicalizes course text before tokenization and rule matching.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// bracketTag matches classification tags such as "[1総総,1文]" in course titles.
var bracketTag = regexp.MustCompile(`\[.*?\]`)

// Normalize applies NFKC normalization and trims surrounding whitespace.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// NFKC can turn U+3000 and friends into ASCII spaces, so trim after.
	return strings.TrimSpace(norm.NFKC.String(text))
}

// NormalizeAll normalizes every element into a fresh slice.
func NormalizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = Normalize(t)
	}
	return out
}

// CleanTitle removes bracketed classification tags from a course title.
// The match is non-greedy so "[a]x[b]" keeps "x". Only titles go through this.
func CleanTitle(name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimSpace(bracketTag.ReplaceAllString(name, ""))
}
