package engine

import (
	"context"
	"fmt"

	"github.com/syllabus-engine/backend/internal/search"
	"github.com/syllabus-engine/backend/internal/storage"
	"github.com/syllabus-engine/backend/internal/textnorm"
)

// Hit is one course matching an ad hoc query.
type Hit struct {
	ID    string
	Title string
	Score float64
}

// Query ranks the input courses against free text. The weighting space is
// fitted over the courses plus the query and discarded afterwards.
func (e *Engine) Query(ctx context.Context, text string, topK int) ([]Hit, error) {
	records, err := storage.LoadRecords(e.Config.Pipeline.InputPath)
	if err != nil {
		return nil, err
	}
	courses := prepareAll(records.Records)

	query := &prepared{}
	query.Course.ID = "query"
	query.Course.Text = textnorm.Normalize(text)

	if err := e.tokenizeAll(ctx, append(courses, query)); err != nil {
		return nil, err
	}
	if len(query.Terms) == 0 {
		return []Hit{}, nil
	}

	kept := keepWithTerms(courses)
	if len(kept) == 0 {
		return nil, ErrNoCourses
	}
	corpus := make([][]string, len(kept))
	ids := make([]string, len(kept))
	titles := make(map[string]string, len(kept))
	for i, p := range kept {
		corpus[i] = p.Terms
		ids[i] = p.Course.ID
		titles[p.Course.ID] = p.Course.Title
	}

	space, err := search.NewQuerySpace(corpus, query.Terms, e.Config.Pipeline.MaxFeatures)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	results := space.Rank(ids, topK)
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{ID: r.Document.ID, Title: titles[r.Document.ID], Score: r.Score}
	}
	return hits, nil
}
