package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syllabus-engine/backend/internal/textnorm"
)

func TestHasMarkup(t *testing.T) {
	assert.True(t, textnorm.HasMarkup("a<br>b"))
	assert.True(t, textnorm.HasMarkup("<p>x</p>"))
	assert.False(t, textnorm.HasMarkup("a < b"))
	assert.False(t, textnorm.HasMarkup("plain"))
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain text untouched", "統計 と 確率", "統計 と 確率"},
		{"Line breaks", "概要<br>【キーワード】データ, AI<br/>以上", "概要\n【キーワード】データ, AI\n以上"},
		{"Script dropped", "<p>本文</p><script>var x = 1;</script>", "本文"},
		{"Style dropped", "<style>.a{}</style><div>中身</div>", "中身"},
		{"Entities unescaped", "<p>A &amp; B</p>", "A & B"},
		{"Whitespace collapsed", "<p>  a   b  </p>", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textnorm.StripMarkup(tt.input))
		})
	}
}
