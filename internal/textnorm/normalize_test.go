package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syllabus-engine/backend/internal/textnorm"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Empty", "", ""},
		{"Fullwidth alnum", "ＡＢＣ１２３", "ABC123"},
		{"Halfwidth katakana", "ﾌﾟﾛｸﾞﾗﾐﾝｸﾞ", "プログラミング"},
		{"Ideographic space trimmed", "　統計学　", "統計学"},
		{"Roman numeral", "数学Ⅱ", "数学II"},
		{"Inner newline kept", " a\nb ", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textnorm.Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"ＡＢＣ　ｄｅｆ",
		"´x",
		"ｶﾞｷﾞｸﾞ ① ㍻ ﬁ",
		"【キーワード】データ，ＡＩ，統計\n",
		"\t　混在 text　\n",
	}
	for _, in := range inputs {
		once := textnorm.Normalize(in)
		assert.Equal(t, once, textnorm.Normalize(once), "input %q", in)
	}
}

func TestNormalizeAll(t *testing.T) {
	in := []string{"ＡＢ", " c "}
	out := textnorm.NormalizeAll(in)
	assert.Equal(t, []string{"AB", "c"}, out)
	assert.Equal(t, "ＡＢ", in[0])
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Empty", "", ""},
		{"No tag", "統計学入門", "統計学入門"},
		{"Leading tag", "[1総総,1文]統計学入門", "統計学入門"},
		{"Non-greedy", "[A]情報[B]科学", "情報科学"},
		{"Unclosed bracket kept", "[未完 科目", "[未完 科目"},
		{"Only tag", "[1総総]", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textnorm.CleanTitle(tt.input))
		})
	}
}
