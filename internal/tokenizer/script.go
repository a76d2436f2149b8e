// Package tokenizer is the boundary to morphological segmentation.
//
// The pipeline only depends on the Tokenizer interface. Production runs point
// HTTPTokenizer at an analyzer service; ScriptTokenizer is a dependency-free
// approximation used offline and in tests.
package tokenizer

import (
	"context"
	"unicode"
)

type scriptClass int

const (
	classNone scriptClass = iota
	classHan
	classKatakana
	classHiragana
	classLatin
)

// ScriptTokenizer splits text into runs of a single script. Kanji, katakana and
// latin/digit runs are kept as noun candidates; hiragana runs (particles and
// inflections, mostly) and punctuation are discarded.
type ScriptTokenizer struct{}

func NewScriptTokenizer() *ScriptTokenizer {
	return &ScriptTokenizer{}
}

func (t *ScriptTokenizer) Name() string {
	return "script"
}

func (t *ScriptTokenizer) Tokenize(_ context.Context, text string) ([]string, error) {
	tokens := []string{}
	var run []rune
	current := classNone

	flush := func() {
		if len(run) > 0 && current != classHiragana && current != classNone {
			tokens = append(tokens, string(run))
		}
		run = run[:0]
	}

	for _, r := range text {
		c := classify(r, current)
		if c != current {
			flush()
			current = c
		}
		if c != classNone {
			run = append(run, r)
		}
	}
	flush()
	return tokens, nil
}

func classify(r rune, prev scriptClass) scriptClass {
	switch {
	case r == 'ー' && prev == classKatakana:
		return classKatakana
	case r == '々' && prev == classHan:
		return classHan
	case unicode.Is(unicode.Han, r):
		return classHan
	case unicode.Is(unicode.Katakana, r):
		return classKatakana
	case unicode.Is(unicode.Hiragana, r):
		return classHiragana
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classLatin
	default:
		return classNone
	}
}
