// Package skills derives capability and prerequisite tags from course text.
//
// Every rule group is data (a Rules table or a pattern) evaluated by the same
// routine, and the groups are unioned into one Set per course:
//
//  1. welcome pattern on the text (see WelcomePolicy)
//  2. domain skill table on the text
//  3. first-year suppression of the advanced skill keys
//  4. title structure table on the cleaned title
//  5. keyword block on the text, as KeywordPrefix tags
//  6. instruction language and classification substrings
package skills

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/syllabus-engine/backend/internal/textnorm"
)

// WelcomePolicy decides what a welcome-pattern match does.
type WelcomePolicy string

const (
	// WelcomeTag adds TagBeginnerFriendly and keeps every other rule.
	WelcomeTag WelcomePolicy = "tag"
	// WelcomeClear drops the domain skill tags (groups 2-3) and adds nothing;
	// title, keyword and metadata tags are still produced.
	WelcomeClear WelcomePolicy = "clear"
)

// ParseWelcomePolicy accepts "tag" or "clear"; "" means WelcomeTag.
func ParseWelcomePolicy(s string) (WelcomePolicy, error) {
	switch WelcomePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", WelcomeTag:
		return WelcomeTag, nil
	case WelcomeClear:
		return WelcomeClear, nil
	default:
		return "", fmt.Errorf("unknown welcome policy %q", s)
	}
}

// Input is the normalized view of one course that the rules read.
type Input struct {
	Text           string
	Title          string
	Grade          int
	Language       string
	Classification string
}

// Extractor applies the rule groups. Its fields are read-only after
// construction, so one Extractor may serve concurrent callers.
type Extractor struct {
	Policy   WelcomePolicy
	Welcome  *regexp.Regexp
	Skills   Rules
	Titles   Rules
	Advanced []string

	// Keyword candidates must be strictly longer than MinKeywordLen and
	// strictly shorter than MaxKeywordLen characters.
	MinKeywordLen int
	MaxKeywordLen int
}

// NewExtractor returns an Extractor with the built-in tables.
func NewExtractor(policy WelcomePolicy) *Extractor {
	if policy == "" {
		policy = WelcomeTag
	}
	return &Extractor{
		Policy:        policy,
		Welcome:       DefaultWelcomePattern(),
		Skills:        DefaultSkillRules(),
		Titles:        DefaultTitleRules(),
		Advanced:      DefaultAdvancedKeys(),
		MinKeywordLen: 1,
		MaxKeywordLen: 20,
	}
}

// Extract returns the tag set for one course.
func (e *Extractor) Extract(in Input) Set {
	tags := NewSet()

	welcome := e.Welcome != nil && e.Welcome.MatchString(in.Text)
	if welcome && e.Policy == WelcomeTag {
		tags.Add(TagBeginnerFriendly)
	}

	if !welcome || e.Policy != WelcomeClear {
		e.Skills.Apply(in.Text, tags)
		if in.Grade == 1 {
			for _, key := range e.Advanced {
				tags.Remove(key)
			}
		}
	}

	e.Titles.Apply(in.Title, tags)

	for _, kw := range e.Keywords(in.Text) {
		tags.Add(KeywordPrefix + kw)
	}

	addMetadataTags(in, tags)
	return tags
}

// Keywords returns the candidates of the first keyword block in text that
// pass the length bounds, in order and without duplicates.
func (e *Extractor) Keywords(text string) []string {
	m := keywordBlock.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, c := range keywordSplit.Split(strings.TrimSpace(m[2]), -1) {
		c = strings.TrimSpace(c)
		n := utf8.RuneCountInString(c)
		if n <= e.MinKeywordLen || n >= e.MaxKeywordLen || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func addMetadataTags(in Input, tags Set) {
	if strings.Contains(in.Language, "日本") || strings.Contains(in.Language, "J") {
		tags.Add(TagLangJapanese)
	}
	if strings.Contains(in.Language, "英") || strings.Contains(in.Language, "E") {
		tags.Add(TagLangEnglish)
	}
	if strings.Contains(in.Classification, "専門") {
		tags.Add(TagTypeSpecialized)
	}
	if strings.Contains(in.Classification, "教養") || strings.Contains(in.Classification, "基盤") {
		tags.Add(TagTypeGeneral)
	}
}

// ParseGrade extracts the year level preceding "年次" in a term string.
// It returns 1 when the marker is missing or the number does not parse.
func ParseGrade(term string) int {
	m := gradeMarker.FindStringSubmatch(textnorm.Normalize(term))
	if m == nil {
		return 1
	}
	grade, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return grade
}
