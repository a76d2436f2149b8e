package skills_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syllabus-engine/backend/internal/skills"
)

func TestExtract_ProgrammingIntro(t *testing.T) {
	e := skills.NewExtractor(skills.WelcomeTag)
	tags := e.Extract(skills.Input{
		Title: "プログラミング入門",
		Text:  "プログラミング入門\nPythonを用いてアルゴリズムの基本を学ぶ。",
		Grade: 2,
	})

	assert.True(t, tags.Has(skills.TagProgramming))
	assert.True(t, tags.Has(skills.TagIntro))
}

func TestExtract_WelcomeAddsBeginnerTag(t *testing.T) {
	e := skills.NewExtractor(skills.WelcomeTag)
	tags := e.Extract(skills.Input{
		Text:  "文系の学生も歓迎します。統計の基礎から扱う。",
		Grade: 2,
	})

	assert.True(t, tags.Has(skills.TagBeginnerFriendly))
	assert.True(t, tags.Has(skills.TagStats))
}

func TestExtract_WelcomeWindowIsOneLine(t *testing.T) {
	e := skills.NewExtractor(skills.WelcomeTag)
	tags := e.Extract(skills.Input{Text: "初心者向けの説明。\n受講可能な人数は40名。", Grade: 2})
	assert.False(t, tags.Has(skills.TagBeginnerFriendly))
}

func TestExtract_WelcomeClearPolicy(t *testing.T) {
	e := skills.NewExtractor(skills.WelcomeClear)
	tags := e.Extract(skills.Input{
		Title:    "統計学概論",
		Text:     "全学部の学生を対象とする。統計とPythonを扱う。\n【キーワード】統計, 回帰\n",
		Grade:    2,
		Language: "日本語",
	})

	assert.False(t, tags.Has(skills.TagBeginnerFriendly))
	assert.False(t, tags.Has(skills.TagStats))
	assert.False(t, tags.Has(skills.TagProgramming))
	assert.True(t, tags.Has(skills.TagIntro))
	assert.True(t, tags.Has("kw_統計"))
	assert.True(t, tags.Has(skills.TagLangJapanese))
}

func TestExtract_FirstYearSuppression(t *testing.T) {
	e := skills.NewExtractor(skills.WelcomeTag)
	text := "微分積分と線形代数、統計的検定、Pythonによる実装、英語の文献、レポート課題、数学Iの復習"

	first := e.Extract(skills.Input{Text: text, Grade: 1})
	for _, key := range skills.DefaultAdvancedKeys() {
		assert.False(t, first.Has(key), "grade 1 must not carry %s", key)
	}
	assert.True(t, first.Has(skills.TagReading))
	assert.True(t, first.Has(skills.TagReport))
	assert.True(t, first.Has(skills.TagMathBasic))

	second := e.Extract(skills.Input{Text: text, Grade: 2})
	for _, key := range skills.DefaultAdvancedKeys() {
		assert.True(t, second.Has(key), "grade 2 keeps %s", key)
	}
}

func TestExtract_TitleTagsIgnoreBody(t *testing.T) {
	e := skills.NewExtractor(skills.WelcomeTag)
	tags := e.Extract(skills.Input{
		Title: "化学実験",
		Text:  "演習とゼミ形式の特論を含む",
		Grade: 3,
	})
	assert.True(t, tags.Has(skills.TagExperiment))
	assert.False(t, tags.Has(skills.TagPractice))
	assert.False(t, tags.Has(skills.TagSeminar))
	assert.False(t, tags.Has(skills.TagAdvanced))
}

func TestExtract_TitleTable(t *testing.T) {
	e := skills.NewExtractor(skills.WelcomeTag)
	tests := []struct {
		title string
		tag   string
	}{
		{"物理学実験", skills.TagExperiment},
		{"臨床実習", skills.TagPractice},
		{"情報科学演習", skills.TagPractice},
		{"卒業研究", skills.TagSeminar},
		{"哲学輪講", skills.TagSeminar},
		{"経済学概論", skills.TagIntro},
		{"数理基礎", skills.TagIntro},
		{"環境科学特論", skills.TagAdvanced},
		{"応用数学", skills.TagAdvanced},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.True(t, e.Extract(skills.Input{Title: tt.title, Grade: 2}).Has(tt.tag))
		})
	}
}

func TestExtract_MetadataTags(t *testing.T) {
	e := skills.NewExtractor(skills.WelcomeTag)
	tests := []struct {
		name           string
		language       string
		classification string
		want           []string
	}{
		{"Japanese", "日本語", "", []string{skills.TagLangJapanese}},
		{"English", "英語", "", []string{skills.TagLangEnglish}},
		{"Both codes", "J/E", "", []string{skills.TagLangJapanese, skills.TagLangEnglish}},
		{"Specialized", "", "専門教育科目", []string{skills.TagTypeSpecialized}},
		{"General", "", "教養教育科目", []string{skills.TagTypeGeneral}},
		{"Foundational", "", "基盤科目", []string{skills.TagTypeGeneral}},
		{"Non-exclusive classification", "", "専門基盤", []string{skills.TagTypeSpecialized, skills.TagTypeGeneral}},
		{"None", "", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := e.Extract(skills.Input{Language: tt.language, Classification: tt.classification, Grade: 2})
			assert.ElementsMatch(t, tt.want, tags.Sorted())
		})
	}
}

func TestKeywords(t *testing.T) {
	e := skills.NewExtractor(skills.WelcomeTag)
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"Bracket label", "概要\n【キーワード】データ, AI, 統計\n以下略", []string{"データ", "AI", "統計"}},
		{"English label", "Keywords: ethics, AI\n", []string{"ethics", "AI"}},
		{"Colon label", "キーワード:環境、生態系・気候\n", []string{"環境", "生態系", "気候"}},
		{"Length bounds", "【キーワード】x, ab, 12345678901234567890, 1234567890123456789\n", []string{"ab", "1234567890123456789"}},
		{"Duplicates collapse", "【キーワード】AI, AI\n", []string{"AI"}},
		{"No line break", "【キーワード】データ, AI", nil},
		{"No block", "統計を学ぶ\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Keywords(tt.text))
		})
	}
}

func TestExtract_KeywordTags(t *testing.T) {
	e := skills.NewExtractor(skills.WelcomeTag)
	tags := e.Extract(skills.Input{Text: "【キーワード】データ, AI, 統計\n", Grade: 2})

	assert.True(t, tags.Has("kw_データ"))
	assert.True(t, tags.Has("kw_AI"))
	assert.True(t, tags.Has("kw_統計"))
	for _, tag := range tags.Sorted() {
		assert.NotContains(t, tag, "【")
		assert.NotContains(t, tag, ",")
	}
}

func TestParseGrade(t *testing.T) {
	tests := []struct {
		term string
		want int
	}{
		{"2年次生 前期", 2},
		{"1年次生 後期", 1},
		{"３年次生", 3},
		{"前期", 1},
		{"", 1},
		{"99999999999999999999年次", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, skills.ParseGrade(tt.term), "term %q", tt.term)
	}
}

func TestParseWelcomePolicy(t *testing.T) {
	p, err := skills.ParseWelcomePolicy("")
	require.NoError(t, err)
	assert.Equal(t, skills.WelcomeTag, p)

	p, err = skills.ParseWelcomePolicy("CLEAR")
	require.NoError(t, err)
	assert.Equal(t, skills.WelcomeClear, p)

	_, err = skills.ParseWelcomePolicy("ignore")
	assert.Error(t, err)
}

func TestRulesAreData(t *testing.T) {
	custom := skills.MustRules([2]string{"tag_lab", `(ラボ)`})
	e := skills.NewExtractor(skills.WelcomeTag)
	e.Titles = custom

	tags := e.Extract(skills.Input{Title: "ロボットラボ入門", Grade: 2})
	assert.True(t, tags.Has("tag_lab"))
	assert.False(t, tags.Has(skills.TagIntro))
	assert.Equal(t, []string{"tag_lab"}, custom.Keys())
}

func TestSetSorted(t *testing.T) {
	s := skills.NewSet("b", "a", "b")
	assert.Equal(t, []string{"a", "b"}, s.Sorted())
	s.Remove("a")
	assert.False(t, s.Has("a"))
}
