package search

import (
	"fmt"
)

// SearchResult holds a matching document and its score
type SearchResult struct {
	Document *Document
	Score    float64
}

// Index is the long-lived query state: a fitted vocabulary and the corpus
// vectors. It is never mutated after construction, so any number of
// goroutines may search it; each search builds its own query vector.
type Index struct {
	vectorizer *TFIDFVectorizer
	documents  []*Document
	norms      []float64
	byID       map[string]int
}

// NewIndex validates the documents against the vocabulary and builds the index.
func NewIndex(vectorizer *TFIDFVectorizer, docs []*Document) (*Index, error) {
	idx := &Index{
		vectorizer: vectorizer,
		documents:  make([]*Document, len(docs)),
		norms:      make([]float64, len(docs)),
		byID:       make(map[string]int, len(docs)),
	}
	size := vectorizer.Size()
	for i, d := range docs {
		if err := d.Vector.Validate(); err != nil {
			return nil, fmt.Errorf("document %s: %w", d.ID, err)
		}
		if n := d.Vector.Nnz(); n > 0 && d.Vector.Indices[n-1] >= size {
			return nil, fmt.Errorf("document %s: index %d beyond vocabulary of %d", d.ID, d.Vector.Indices[n-1], size)
		}
		if _, dup := idx.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate document id %s", d.ID)
		}
		idx.documents[i] = d
		idx.norms[i] = d.Vector.Norm()
		idx.byID[d.ID] = i
	}
	return idx, nil
}

// Size returns the number of indexed documents.
func (idx *Index) Size() int {
	return len(idx.documents)
}

// VocabularySize returns the number of terms in the fitted vocabulary.
func (idx *Index) VocabularySize() int {
	return idx.vectorizer.Size()
}

// Lookup returns the document with the given id.
func (idx *Index) Lookup(id string) (*Document, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return idx.documents[i], true
}

// Search finds the most similar documents to the query tokens
func (idx *Index) Search(tokens []string, topK int) ([]SearchResult, error) {
	query, err := idx.vectorizer.Transform(tokens)
	if err != nil {
		return nil, err
	}
	var results []SearchResult

	for i, doc := range idx.documents {
		if idx.norms[i] == 0 {
			continue
		}
		// query is unit length or all zero
		score := doc.Vector.Dot(query) / idx.norms[i]
		if score > 0 {
			results = append(results, SearchResult{
				Document: doc,
				Score:    score,
			})
		}
	}

	return rankResults(results, topK), nil
}
