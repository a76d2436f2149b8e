// Package course holds the record types shared by the indexing pipeline.
package course

// Field labels used by the upstream syllabus source.
const (
	FieldTitle          = "授業科目名"
	FieldSynopsis       = "授業の目標・概要等"
	FieldMessage        = "メッセージ"
	FieldPrerequisites  = "履修上の注意 受講条件等"
	FieldDepartment     = "開講部局"
	FieldTerm           = "開設期"
	FieldSchedule       = "曜日・時限・講義室"
	FieldInstructor     = "担当教員名"
	FieldArea           = "領域"
	FieldField          = "分野"
	FieldLanguage       = "使用言語"
	FieldClassification = "科目区分"
)

// AnalysisFields are concatenated, in order, into a course's analysis text.
// The title is cleaned before it is used.
var AnalysisFields = []string{FieldTitle, FieldSynopsis, FieldMessage, FieldPrerequisites}

// Record is one upstream course entry. Fields not listed above are kept but ignored.
type Record struct {
	ID     string
	Fields map[string]string
}

// Field returns the named field, or "" when it is absent.
func (r Record) Field(key string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[key]
}

// Normalized is the per-run view of a record fed to the vectorizer and tagger.
type Normalized struct {
	ID       string
	Title    string // cleaned title
	Text     string // analysis text
	Grade    int
	Language string
	Category string // classification
}

// Metadata is the display-only projection written to the metadata store.
type Metadata struct {
	Name       string `json:"n"`
	Department string `json:"d"`
	Term       string `json:"t"`
	Schedule   string `json:"w"`
	Instructor string `json:"i"`
	Area       string `json:"a"`
	Field      string `json:"f"`
}
