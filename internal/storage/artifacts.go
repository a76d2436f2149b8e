// Package storage reads the upstream course source and publishes the
// pipeline artifacts to the local file system.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/syllabus-engine/backend/internal/course"
	"github.com/syllabus-engine/backend/internal/recommend"
	"github.com/syllabus-engine/backend/internal/sparse"
)

// Artifact file names inside a store directory.
const (
	VectorsFile         = "syllabus_vectors.json"
	MetadataFile        = "course_metadata.json"
	RecommendationsFile = "recommendations.json"
)

// VectorArtifact is the vector store. Vectors and Skills are aligned with IDs.
type VectorArtifact struct {
	Vocabulary map[string]int  `json:"v"`
	Vectors    []sparse.Vector `json:"d"`
	IDs        []string        `json:"i"`
	Skills     [][]string      `json:"skills"`
	IDF        []float64       `json:"idf,omitempty"`
}

// Validate checks the alignment and index range of the artifact.
func (a *VectorArtifact) Validate() error {
	if len(a.IDs) != len(a.Vectors) || len(a.IDs) != len(a.Skills) {
		return fmt.Errorf("misaligned vector store: %d ids, %d vectors, %d tag sets",
			len(a.IDs), len(a.Vectors), len(a.Skills))
	}
	if a.IDF != nil && len(a.IDF) != len(a.Vocabulary) {
		return fmt.Errorf("idf has %d weights for %d terms", len(a.IDF), len(a.Vocabulary))
	}
	size := len(a.Vocabulary)
	for i, v := range a.Vectors {
		if _, err := sparse.Decode(v, size); err != nil {
			return fmt.Errorf("vector %s: %w", a.IDs[i], err)
		}
	}
	return nil
}

// Metadata maps course ids to their display fields.
type Metadata map[string]course.Metadata

// Recommendations maps course ids to their ranked neighbors.
type Recommendations map[string][]recommend.Neighbor

// ArtifactSet is everything one pipeline run publishes.
type ArtifactSet struct {
	Vectors         *VectorArtifact
	Metadata        Metadata
	Recommendations Recommendations
}

// ArtifactStore publishes and loads artifacts in one directory.
type ArtifactStore struct {
	baseDir string
	mu      sync.RWMutex
}

// NewArtifactStore creates the directory if needed.
func NewArtifactStore(baseDir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &ArtifactStore{baseDir: baseDir}, nil
}

// Dir returns the store directory.
func (s *ArtifactStore) Dir() string {
	return s.baseDir
}

// Publish writes every artifact to a temporary file first and renames them
// into place only after all of them were written. A failure before the
// renames leaves the previous artifacts untouched.
func (s *ArtifactStore) Publish(set *ArtifactSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set.Vectors == nil {
		return fmt.Errorf("publish: no vector store")
	}
	payloads := []struct {
		name  string
		value any
	}{
		{VectorsFile, set.Vectors},
		{MetadataFile, nonNilMetadata(set.Metadata)},
		{RecommendationsFile, nonNilRecommendations(set.Recommendations)},
	}

	staged := make([]string, 0, len(payloads))
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}
	for _, p := range payloads {
		tmp, err := s.stage(p.name, p.value)
		if err != nil {
			cleanup()
			return err
		}
		staged = append(staged, tmp)
	}

	for i, p := range payloads {
		if err := os.Rename(staged[i], filepath.Join(s.baseDir, p.name)); err != nil {
			cleanup()
			return fmt.Errorf("failed to publish %s: %w", p.name, err)
		}
	}
	return nil
}

func (s *ArtifactStore) stage(name string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	f, err := os.CreateTemp(s.baseDir, "."+name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	return f.Name(), nil
}

// LoadVectors reads and validates the vector store.
func (s *ArtifactStore) LoadVectors() (*VectorArtifact, error) {
	var a VectorArtifact
	if err := s.read(VectorsFile, &a); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// LoadMetadata reads the metadata store.
func (s *ArtifactStore) LoadMetadata() (Metadata, error) {
	var m Metadata
	if err := s.read(MetadataFile, &m); err != nil {
		return nil, err
	}
	return nonNilMetadata(m), nil
}

// LoadRecommendations reads the recommendation store.
func (s *ArtifactStore) LoadRecommendations() (Recommendations, error) {
	var r Recommendations
	if err := s.read(RecommendationsFile, &r); err != nil {
		return nil, err
	}
	return nonNilRecommendations(r), nil
}

// Load reads all three artifacts.
func (s *ArtifactStore) Load() (*ArtifactSet, error) {
	vectors, err := s.LoadVectors()
	if err != nil {
		return nil, err
	}
	meta, err := s.LoadMetadata()
	if err != nil {
		return nil, err
	}
	recs, err := s.LoadRecommendations()
	if err != nil {
		return nil, err
	}
	return &ArtifactSet{Vectors: vectors, Metadata: meta, Recommendations: recs}, nil
}

func (s *ArtifactStore) read(name string, into any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.baseDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrInputMissing, name)
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return nil
}

func nonNilMetadata(m Metadata) Metadata {
	if m == nil {
		return Metadata{}
	}
	return m
}

func nonNilRecommendations(r Recommendations) Recommendations {
	if r == nil {
		return Recommendations{}
	}
	for id, list := range r {
		if list == nil {
			r[id] = []recommend.Neighbor{}
		}
	}
	return r
}
