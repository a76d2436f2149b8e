package skills

import "regexp"

// Rule maps a tag key to the pattern that produces it.
type Rule struct {
	Key     string
	Pattern *regexp.Regexp
}

// Rules is an ordered rule table evaluated by Apply.
type Rules []Rule

// MustRules compiles (key, pattern) pairs, panicking on a bad pattern.
func MustRules(pairs ...[2]string) Rules {
	rules := make(Rules, len(pairs))
	for i, p := range pairs {
		rules[i] = Rule{Key: p[0], Pattern: regexp.MustCompile(p[1])}
	}
	return rules
}

// Apply adds the key of every rule whose pattern matches text.
func (rs Rules) Apply(text string, into Set) {
	for _, r := range rs {
		if r.Pattern.MatchString(text) {
			into.Add(r.Key)
		}
	}
}

// Keys returns the tag keys in table order.
func (rs Rules) Keys() []string {
	keys := make([]string, len(rs))
	for i, r := range rs {
		keys[i] = r.Key
	}
	return keys
}

// Tag keys produced by the built-in tables.
const (
	TagBeginnerFriendly = "beginner_friendly"

	TagMathBasic   = "math_basic"
	TagMathAdv     = "math_adv"
	TagStats       = "stats"
	TagProgramming = "programming"
	TagReading     = "reading"
	TagReport      = "report"

	TagExperiment = "tag_experiment"
	TagPractice   = "tag_practice"
	TagSeminar    = "tag_seminar"
	TagIntro      = "tag_intro"
	TagAdvanced   = "tag_advanced"

	TagLangJapanese    = "lang_japanese"
	TagLangEnglish     = "lang_english"
	TagTypeSpecialized = "type_specialized"
	TagTypeGeneral     = "type_general"

	// KeywordPrefix marks free-form tags taken from a keyword block.
	KeywordPrefix = "kw_"
)

// DefaultSkillRules are tested against the full analysis text.
func DefaultSkillRules() Rules {
	return MustRules(
		[2]string{TagMathBasic, `(数学I|数学A|数I|数A|基礎計算|四則演算)`},
		[2]string{TagMathAdv, `(数学II|数学B|数II|数B|数学III|数III|微分|積分|線形代数|解析学)`},
		[2]string{TagStats, `(統計|確率|検定|データ分析|回帰分析|SPSS|R言語)`},
		[2]string{TagProgramming, `(プログラミング|Python|C言語|Java|アルゴリズム|実装)`},
		[2]string{TagReading, `(英語|English|論文購読|原書|TOEIC)`},
		[2]string{TagReport, `(レポート|小論文|アカデミックライティング)`},
	)
}

// DefaultTitleRules are tested against the cleaned title only.
func DefaultTitleRules() Rules {
	return MustRules(
		[2]string{TagExperiment, `(実験)`},
		[2]string{TagPractice, `(実習|演習)`},
		[2]string{TagSeminar, `(ゼミ|輪講|卒業研究)`},
		[2]string{TagIntro, `(概論|入門|基礎)`},
		[2]string{TagAdvanced, `(特論|応用)`},
	)
}

// DefaultAdvancedKeys are suppressed for first-year courses.
func DefaultAdvancedKeys() []string {
	return []string{TagMathAdv, TagStats, TagProgramming}
}

// An audience descriptor followed, on the same line, by a permission phrase.
const defaultWelcomePattern = `(文系|初心者|初学者|学部・学科|全学部|誰でも|意欲).*?(歓迎|問わない|対象|受講可能)`

// DefaultWelcomePattern matches "no prerequisite / everyone welcome" phrasing.
func DefaultWelcomePattern() *regexp.Regexp {
	return regexp.MustCompile(defaultWelcomePattern)
}

// keywordBlock captures the content of a labeled keyword section up to the line break.
var keywordBlock = regexp.MustCompile(`(【キーワード】|Keywords?\s*[:：]|キーワード\s*[:：])(.*?)\n`)

// keywordSplit separates keyword candidates: commas, ideographic commas, interpuncts, whitespace.
var keywordSplit = regexp.MustCompile(`[,、・\s]+`)

// gradeMarker finds the year level in a term string such as "2年次生 前期".
var gradeMarker = regexp.MustCompile(`(\d+)年次`)
