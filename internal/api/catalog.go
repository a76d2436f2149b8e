package api

import (
	"fmt"
	"time"

	"github.com/syllabus-engine/backend/internal/search"
	"github.com/syllabus-engine/backend/internal/storage"
)

// Catalog is the read-only state served by the API. It is built once from
// published artifacts and shared by every request.
type Catalog struct {
	Index           *search.Index
	Metadata        storage.Metadata
	Recommendations storage.Recommendations
	LoadedAt        time.Time
}

// NewCatalog indexes a loaded artifact set.
func NewCatalog(set *storage.ArtifactSet) (*Catalog, error) {
	v := set.Vectors
	if err := v.Validate(); err != nil {
		return nil, err
	}
	vectorizer, err := search.NewFittedVectorizer(v.Vocabulary, v.IDF)
	if err != nil {
		return nil, fmt.Errorf("restore vocabulary: %w", err)
	}

	docs := make([]*search.Document, len(v.IDs))
	for i, id := range v.IDs {
		docs[i] = &search.Document{
			ID:     id,
			Title:  set.Metadata[id].Name,
			Skills: v.Skills[i],
			Vector: v.Vectors[i],
		}
	}
	idx, err := search.NewIndex(vectorizer, docs)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		Index:           idx,
		Metadata:        set.Metadata,
		Recommendations: set.Recommendations,
		LoadedAt:        time.Now(),
	}, nil
}

// LoadCatalog reads the artifacts in store and indexes them.
func LoadCatalog(store *storage.ArtifactStore) (*Catalog, error) {
	set, err := store.Load()
	if err != nil {
		return nil, err
	}
	return NewCatalog(set)
}
