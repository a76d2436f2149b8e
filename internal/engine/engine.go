package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/syllabus-engine/backend/internal/config"
	"github.com/syllabus-engine/backend/internal/metrics"
	"github.com/syllabus-engine/backend/internal/recommend"
	"github.com/syllabus-engine/backend/internal/search"
	"github.com/syllabus-engine/backend/internal/skills"
	"github.com/syllabus-engine/backend/internal/sparse"
	"github.com/syllabus-engine/backend/internal/storage"
	"github.com/syllabus-engine/backend/internal/tokenizer"
)

// ErrNoCourses is returned when no record survives tokenization.
var ErrNoCourses = errors.New("no course produced any terms")

// Publisher receives the artifacts of a successful run.
type Publisher interface {
	Publish(set *storage.ArtifactSet) error
}

// Engine orchestrates the indexing pipeline
type Engine struct {
	Config    *config.Config
	Logger    *logrus.Entry
	Tokenizer tokenizer.Tokenizer
	Publisher Publisher
	Extractor *skills.Extractor
	Indexer   *recommend.Indexer

	mu    sync.RWMutex
	Stats EngineStats
}

type EngineStats struct {
	RecordsLoaded  int
	RecordsIndexed int
	Dropped        map[string]int
	VocabularySize int
	LastError      string
	StartTime      time.Time
	Duration       time.Duration
}

func NewEngine(cfg *config.Config, logger *logrus.Entry, tok tokenizer.Tokenizer, pub Publisher) (*Engine, error) {
	policy, err := skills.ParseWelcomePolicy(cfg.Pipeline.WelcomePolicy)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Config:    cfg,
		Logger:    logger,
		Tokenizer: tok,
		Publisher: pub,
		Extractor: skills.NewExtractor(policy),
		Indexer:   recommend.NewIndexer(cfg.Pipeline.TopK, cfg.Pipeline.Workers),
	}, nil
}

// Run reads the configured input, builds every artifact and publishes them.
// Nothing is published unless every stage succeeds.
func (e *Engine) Run(ctx context.Context) (*storage.ArtifactSet, error) {
	start := time.Now()
	set, stats, err := e.build(ctx)
	stats.StartTime = start
	stats.Duration = time.Since(start)
	if err == nil {
		publishStart := time.Now()
		if err = e.Publisher.Publish(set); err != nil {
			err = fmt.Errorf("publish artifacts: %w", err)
		}
		metrics.ObserveStage("publish", publishStart)
	}
	if err != nil {
		stats.LastError = err.Error()
	}

	e.mu.Lock()
	e.Stats = stats
	e.mu.Unlock()

	if err != nil {
		return nil, err
	}
	e.Logger.WithFields(logrus.Fields{
		"courses":    stats.RecordsIndexed,
		"vocabulary": stats.VocabularySize,
		"duration":   stats.Duration,
	}).Info("Artifacts published")
	return set, nil
}

// Snapshot returns a copy of the stats of the last run.
func (e *Engine) Snapshot() EngineStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := e.Stats
	s.Dropped = make(map[string]int, len(e.Stats.Dropped))
	for k, v := range e.Stats.Dropped {
		s.Dropped[k] = v
	}
	return s
}

func (e *Engine) build(ctx context.Context) (*storage.ArtifactSet, EngineStats, error) {
	stats := EngineStats{Dropped: map[string]int{}}

	loadStart := time.Now()
	records, err := storage.LoadRecords(e.Config.Pipeline.InputPath)
	if err != nil {
		return nil, stats, err
	}
	metrics.ObserveStage("load", loadStart)
	stats.RecordsLoaded = len(records.Records) + len(records.Skipped)
	metrics.RecordsLoaded.Add(float64(stats.RecordsLoaded))
	for _, id := range records.Skipped {
		e.Logger.WithField("course", id).Warn("Skipping record that is not an object")
	}
	stats.Dropped[metrics.DropMalformed] = len(records.Skipped)
	metrics.RecordsDropped.WithLabelValues(metrics.DropMalformed).Add(float64(len(records.Skipped)))
	e.Logger.WithField("records", stats.RecordsLoaded).Info("Records loaded")

	courses := prepareAll(records.Records)
	metadata := make(storage.Metadata, len(courses))
	for _, p := range courses {
		metadata[p.Course.ID] = p.Metadata
	}

	tokenizeStart := time.Now()
	if err := e.tokenizeAll(ctx, courses); err != nil {
		return nil, stats, err
	}
	metrics.ObserveStage("tokenize", tokenizeStart)

	kept := keepWithTerms(courses)
	if dropped := len(courses) - len(kept); dropped > 0 {
		stats.Dropped[metrics.DropNoTerms] = dropped
		metrics.RecordsDropped.WithLabelValues(metrics.DropNoTerms).Add(float64(dropped))
		e.Logger.WithField("count", dropped).Info("Dropped records without terms")
	}
	if len(kept) == 0 {
		return nil, stats, ErrNoCourses
	}

	fitStart := time.Now()
	corpus := make([][]string, len(kept))
	ids := make([]string, len(kept))
	for i, p := range kept {
		corpus[i] = p.Terms
		ids[i] = p.Course.ID
	}
	vectorizer := search.NewTFIDFVectorizer(e.Config.Pipeline.MaxFeatures)
	dense, err := vectorizer.FitTransform(corpus)
	if err != nil {
		return nil, stats, fmt.Errorf("fit vocabulary: %w", err)
	}
	metrics.ObserveStage("fit", fitStart)
	stats.VocabularySize = vectorizer.Size()
	metrics.VocabularySize.Set(float64(stats.VocabularySize))
	e.Logger.WithField("terms", stats.VocabularySize).Info("Vocabulary fitted")

	vectors := &storage.VectorArtifact{
		Vocabulary: vectorizer.Vocabulary,
		Vectors:    make([]sparse.Vector, len(kept)),
		IDs:        ids,
		Skills:     make([][]string, len(kept)),
		IDF:        vectorizer.IDF,
	}
	for i, p := range kept {
		vectors.Vectors[i] = sparse.Encode(dense[i])
		vectors.Skills[i] = e.Extractor.Extract(p.skillInput()).Sorted()
	}

	recStart := time.Now()
	recs, err := e.Indexer.Build(ctx, ids, dense)
	if err != nil {
		return nil, stats, fmt.Errorf("build recommendations: %w", err)
	}
	metrics.ObserveStage("recommend", recStart)

	stats.RecordsIndexed = len(kept)
	metrics.RecordsIndexed.Add(float64(len(kept)))
	return &storage.ArtifactSet{
		Vectors:         vectors,
		Metadata:        metadata,
		Recommendations: recs,
	}, stats, nil
}
