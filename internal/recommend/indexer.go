// Package recommend precomputes the nearest neighbors of every course.
package recommend

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/syllabus-engine/backend/internal/sparse"
)

// selfScore excludes a course from its own ranking.
const selfScore = -1.0

// Neighbor is one recommended course and its rounded similarity.
type Neighbor struct {
	ID    string
	Score float64
}

// MarshalJSON writes the neighbor as a two-element array [id, score].
func (n Neighbor) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{n.ID, n.Score})
}

// UnmarshalJSON reads the [id, score] form.
func (n *Neighbor) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("neighbor: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &n.ID); err != nil {
		return fmt.Errorf("neighbor id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &n.Score); err != nil {
		return fmt.Errorf("neighbor score: %w", err)
	}
	return nil
}

// Indexer builds the neighbor table from dense row vectors.
type Indexer struct {
	TopK    int
	Workers int
}

// NewIndexer returns an Indexer; non-positive workers means GOMAXPROCS.
func NewIndexer(topK, workers int) *Indexer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Indexer{TopK: topK, Workers: workers}
}

// Build computes, for each row, up to TopK other rows ranked by cosine
// similarity. Scores are rounded and only positive ones are kept; equal
// scores keep the lower row index first. Every id gets an entry, possibly
// empty.
func (ix *Indexer) Build(ctx context.Context, ids []string, vectors [][]float64) (map[string][]Neighbor, error) {
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("recommend: %d ids for %d vectors", len(ids), len(vectors))
	}
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		if i > 0 && len(v) != len(vectors[0]) {
			return nil, fmt.Errorf("recommend: row %d has %d columns, want %d", i, len(v), len(vectors[0]))
		}
		norms[i] = floats.Norm(v, 2)
	}

	rows := make([][]Neighbor, len(vectors))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(ix.Workers, 1))
	for i := range vectors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows[i] = ix.row(i, ids, vectors, norms)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]Neighbor, len(ids))
	for i, id := range ids {
		out[id] = rows[i]
	}
	return out, nil
}

type scored struct {
	index int
	score float64
}

func (ix *Indexer) row(i int, ids []string, vectors [][]float64, norms []float64) []Neighbor {
	sims := make([]scored, len(vectors))
	for j := range vectors {
		sims[j] = scored{index: j, score: cosine(vectors[i], vectors[j], norms[i], norms[j])}
	}
	sims[i].score = selfScore

	sort.SliceStable(sims, func(a, b int) bool {
		return sims[a].score > sims[b].score
	})
	if ix.TopK >= 0 && len(sims) > ix.TopK {
		sims = sims[:ix.TopK]
	}

	neighbors := make([]Neighbor, 0, len(sims))
	for _, s := range sims {
		score := sparse.Round(s.score)
		if score <= 0 {
			continue
		}
		neighbors = append(neighbors, Neighbor{ID: ids[s.index], Score: score})
	}
	return neighbors
}

func cosine(a, b []float64, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
