package search

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrNotFitted is returned when a vectorizer is used before Fit.
	ErrNotFitted = errors.New("vectorizer is not fitted")
	// ErrEmptyVocabulary is returned when a corpus yields no terms.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
)

// Vectorizer turns token sequences into vectors
type Vectorizer interface {
	Fit(docs [][]string) error
	Transform(tokens []string) ([]float64, error)
}

// TFIDFVectorizer implements Term Frequency - Inverse Document Frequency with
// a bounded vocabulary. Once fitted it is read-only and safe to share.
type TFIDFVectorizer struct {
	MaxFeatures int
	Vocabulary  map[string]int
	IDF         []float64
	terms       []string
}

func NewTFIDFVectorizer(maxFeatures int) *TFIDFVectorizer {
	return &TFIDFVectorizer{
		MaxFeatures: maxFeatures,
		Vocabulary:  make(map[string]int),
	}
}

// NewFittedVectorizer restores a vectorizer from a persisted vocabulary.
// A nil idf weights every term 1, which keeps cosine ranking usable for
// stores written without idf values.
func NewFittedVectorizer(vocabulary map[string]int, idf []float64) (*TFIDFVectorizer, error) {
	terms := make([]string, len(vocabulary))
	for term, idx := range vocabulary {
		if idx < 0 || idx >= len(terms) || terms[idx] != "" {
			return nil, fmt.Errorf("vocabulary index %d for %q is out of range or duplicated", idx, term)
		}
		terms[idx] = term
	}
	if idf == nil {
		idf = make([]float64, len(terms))
		for i := range idf {
			idf[i] = 1
		}
	}
	if len(idf) != len(terms) {
		return nil, fmt.Errorf("idf has %d entries for a vocabulary of %d", len(idf), len(terms))
	}
	v := &TFIDFVectorizer{
		Vocabulary: make(map[string]int, len(vocabulary)),
		IDF:        append([]float64(nil), idf...),
		terms:      terms,
	}
	for term, idx := range vocabulary {
		v.Vocabulary[term] = idx
	}
	return v, nil
}

type termStat struct {
	term      string
	count     int
	docs      int
	firstSeen int
}

// Fit analyzes the corpus to build vocabulary and IDF stats. Terms are ranked
// by corpus frequency (ties by first occurrence), the top MaxFeatures are kept
// and indexed in lexicographic order.
func (v *TFIDFVectorizer) Fit(docs [][]string) error {
	docCount := float64(len(docs))
	stats := make(map[string]*termStat)
	var order []*termStat

	// 1. Count corpus and document occurrences
	for _, doc := range docs {
		seenInDoc := make(map[string]bool)
		for _, term := range Analyze(doc) {
			st, ok := stats[term]
			if !ok {
				st = &termStat{term: term, firstSeen: len(order)}
				stats[term] = st
				order = append(order, st)
			}
			st.count++
			if !seenInDoc[term] {
				st.docs++
				seenInDoc[term] = true
			}
		}
	}
	if len(order) == 0 {
		return ErrEmptyVocabulary
	}

	// 2. Select the most frequent terms
	selected := order
	if v.MaxFeatures > 0 && len(order) > v.MaxFeatures {
		ranked := append([]*termStat(nil), order...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].count > ranked[j].count
		})
		selected = ranked[:v.MaxFeatures]
	}
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].term < selected[j].term
	})

	// 3. Index terms and calculate IDF
	v.Vocabulary = make(map[string]int, len(selected))
	v.IDF = make([]float64, len(selected))
	v.terms = make([]string, len(selected))
	for i, st := range selected {
		v.Vocabulary[st.term] = i
		v.terms[i] = st.term
		// idf = ln((1 + n) / (1 + df)) + 1
		v.IDF[i] = math.Log((1+docCount)/(1+float64(st.docs))) + 1
	}
	return nil
}

// Transform converts tokens to an L2-normalized vector over the fitted vocabulary
func (v *TFIDFVectorizer) Transform(tokens []string) ([]float64, error) {
	if v.terms == nil {
		return nil, ErrNotFitted
	}
	vector := make([]float64, len(v.terms))

	// Calculate Term Frequency (TF)
	for _, term := range Analyze(tokens) {
		if idx, exists := v.Vocabulary[term]; exists {
			vector[idx]++
		}
	}

	// Calculate TF-IDF
	var sum float64
	for i, tf := range vector {
		if tf == 0 {
			continue
		}
		vector[i] = tf * v.IDF[i]
		sum += vector[i] * vector[i]
	}
	if sum > 0 {
		norm := math.Sqrt(sum)
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector, nil
}

// FitTransform fits the corpus and transforms every document against the single fitted vocabulary.
func (v *TFIDFVectorizer) FitTransform(docs [][]string) ([][]float64, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	out := make([][]float64, len(docs))
	for i, doc := range docs {
		vec, err := v.Transform(doc)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Size returns the vocabulary size.
func (v *TFIDFVectorizer) Size() int {
	return len(v.terms)
}

// Terms returns the vocabulary in index order.
func (v *TFIDFVectorizer) Terms() []string {
	return append([]string(nil), v.terms...)
}
