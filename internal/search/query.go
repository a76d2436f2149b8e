package search

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/syllabus-engine/backend/internal/sparse"
)

// QuerySpace is a one-off weighting space fitted over a course set plus a
// single query. It is never persisted and never shared between queries.
type QuerySpace struct {
	Docs  [][]float64
	Query []float64
	size  int
}

// NewQuerySpace fits a fresh vectorizer over corpus ∪ {query}.
func NewQuerySpace(corpus [][]string, query []string, maxFeatures int) (*QuerySpace, error) {
	all := make([][]string, 0, len(corpus)+1)
	all = append(all, corpus...)
	all = append(all, query)

	v := NewTFIDFVectorizer(maxFeatures)
	vectors, err := v.FitTransform(all)
	if err != nil {
		return nil, fmt.Errorf("fit query space: %w", err)
	}
	return &QuerySpace{
		Docs:  vectors[:len(corpus)],
		Query: vectors[len(corpus)],
		size:  v.Size(),
	}, nil
}

// Size returns the vocabulary size of the space.
func (qs *QuerySpace) Size() int {
	return qs.size
}

// Rank scores every document against the query and returns the topK hits
// with a positive score, best first, ties by document order.
func (qs *QuerySpace) Rank(ids []string, topK int) []SearchResult {
	results := make([]SearchResult, 0, len(qs.Docs))
	for i, doc := range qs.Docs {
		score := CosineSimilarity(qs.Query, doc)
		if score > 0 {
			results = append(results, SearchResult{
				Document: &Document{ID: ids[i]},
				Score:    score,
			})
		}
	}
	return rankResults(results, topK)
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}

// rankResults sorts by descending score (stable, so ties keep input order),
// truncates to topK and rounds the scores.
func rankResults(results []SearchResult, topK int) []SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	out := results[:0]
	for _, r := range results {
		r.Score = sparse.Round(r.Score)
		if r.Score > 0 {
			out = append(out, r)
		}
	}
	return out
}
