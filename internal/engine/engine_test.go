package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/syllabus-engine/backend/internal/config"
	"github.com/syllabus-engine/backend/internal/course"
	"github.com/syllabus-engine/backend/internal/recommend"
	"github.com/syllabus-engine/backend/internal/skills"
	"github.com/syllabus-engine/backend/internal/sparse"
	"github.com/syllabus-engine/backend/internal/storage"
	"github.com/syllabus-engine/backend/internal/tokenizer"
)

const sampleInput = `{
	"C1": {"授業科目名": "プログラミング入門[全学]", "授業の目標・概要等": "Pythonを用いてアルゴリズムを学ぶ。", "開設期": "2年次生 前期", "使用言語": "日本語"},
	"C2": {"授業科目名": "プログラミング入門", "授業の目標・概要等": "Pythonを用いてアルゴリズムを学ぶ。", "開設期": "2年次生 後期"},
	"C3": {"授業科目名": "統計学概論", "授業の目標・概要等": "<p>統計と確率の基礎</p>", "開設期": "1年次生 後期", "開講部局": "総合科学部"},
	"C4": "not a record",
	"C5": {"授業科目名": "あいう"}
}`

type mockTokenizer struct {
	mock.Mock
}

func (m *mockTokenizer) Tokenize(ctx context.Context, text string) ([]string, error) {
	args := m.Called(ctx, text)
	tokens, _ := args.Get(0).([]string)
	return tokens, args.Error(1)
}

func (m *mockTokenizer) Name() string {
	return "mock"
}

type capturePublisher struct {
	set   *storage.ArtifactSet
	err   error
	calls int
}

func (p *capturePublisher) Publish(set *storage.ArtifactSet) error {
	p.calls++
	if p.err != nil {
		return p.err
	}
	p.set = set
	return nil
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("service", "test")
}

func testConfig(t *testing.T, input string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Pipeline.InputPath = filepath.Join(t.TempDir(), "courses.json")
	cfg.Pipeline.Workers = 2
	require.NoError(t, os.WriteFile(cfg.Pipeline.InputPath, []byte(input), 0644))
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, tok tokenizer.Tokenizer, pub Publisher) *Engine {
	t.Helper()
	eng, err := NewEngine(cfg, testLogger(), tok, pub)
	require.NoError(t, err)
	return eng
}

func TestRun_BuildsAlignedArtifacts(t *testing.T) {
	pub := &capturePublisher{}
	eng := newTestEngine(t, testConfig(t, sampleInput), tokenizer.NewScriptTokenizer(), pub)

	set, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, pub.calls)
	assert.Same(t, set, pub.set)

	v := set.Vectors
	assert.Equal(t, []string{"C1", "C2", "C3"}, v.IDs)
	assert.Len(t, v.Vectors, len(v.IDs))
	assert.Len(t, v.Skills, len(v.IDs))
	assert.Len(t, v.IDF, len(v.Vocabulary))
	require.NoError(t, v.Validate())

	for term := range v.Vocabulary {
		assert.NotContains(t, term, "全学", "bracketed title suffix is removed")
	}
	for _, vec := range v.Vectors {
		assert.Positive(t, vec.Nnz())
	}

	assert.Contains(t, v.Skills[0], skills.TagProgramming)
	assert.Contains(t, v.Skills[0], skills.TagIntro)
	assert.Contains(t, v.Skills[0], skills.TagLangJapanese)
	assert.NotContains(t, v.Skills[2], skills.TagStats, "first-year course")
	assert.Contains(t, v.Skills[2], skills.TagIntro)

	assert.Equal(t, []recommend.Neighbor{{ID: "C2", Score: 1}}, set.Recommendations["C1"])
	assert.Equal(t, []recommend.Neighbor{{ID: "C1", Score: 1}}, set.Recommendations["C2"])
	assert.Empty(t, set.Recommendations["C3"])
	assert.NotContains(t, set.Recommendations, "C5")

	assert.Len(t, set.Metadata, 4, "metadata covers every well-formed record")
	assert.Equal(t, "プログラミング入門", set.Metadata["C1"].Name)
	assert.Equal(t, "総合科学部", set.Metadata["C3"].Department)
	assert.Equal(t, "あいう", set.Metadata["C5"].Name)

	stats := eng.Snapshot()
	assert.Equal(t, 5, stats.RecordsLoaded)
	assert.Equal(t, 3, stats.RecordsIndexed)
	assert.Equal(t, 1, stats.Dropped["malformed"])
	assert.Equal(t, 1, stats.Dropped["no_terms"])
	assert.Empty(t, stats.LastError)
}

func TestRun_TokenizerFailureDropsOnlyThatRecord(t *testing.T) {
	tok := &mockTokenizer{}
	tok.On("Tokenize", mock.Anything, mock.MatchedBy(func(s string) bool {
		return strings.HasPrefix(s, "統計学概論")
	})).Return(nil, errors.New("analyzer unavailable"))
	tok.On("Tokenize", mock.Anything, mock.Anything).Return([]string{"プログラミング", "Python"}, nil)

	pub := &capturePublisher{}
	eng := newTestEngine(t, testConfig(t, sampleInput), tok, pub)

	set, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C2", "C5"}, set.Vectors.IDs)
	assert.Len(t, set.Vectors.Skills, 3)
	assert.Contains(t, set.Metadata, "C3")

	tok.AssertNumberOfCalls(t, "Tokenize", 4)
}

func TestRun_MissingInput(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.InputPath = filepath.Join(t.TempDir(), "absent.json")
	pub := &capturePublisher{}
	eng := newTestEngine(t, cfg, tokenizer.NewScriptTokenizer(), pub)

	_, err := eng.Run(context.Background())
	assert.ErrorIs(t, err, storage.ErrInputMissing)
	assert.Zero(t, pub.calls)
	assert.NotEmpty(t, eng.Snapshot().LastError)
}

func TestRun_NoSurvivors(t *testing.T) {
	pub := &capturePublisher{}
	eng := newTestEngine(t, testConfig(t, `{"A": {"授業科目名": "あ"}, "B": 1}`), tokenizer.NewScriptTokenizer(), pub)

	_, err := eng.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoCourses)
	assert.Zero(t, pub.calls)
}

func TestRun_PublishFailure(t *testing.T) {
	pub := &capturePublisher{err: errors.New("disk full")}
	eng := newTestEngine(t, testConfig(t, sampleInput), tokenizer.NewScriptTokenizer(), pub)

	_, err := eng.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, eng.Snapshot().LastError, "disk full")
}

func TestRun_Cancelled(t *testing.T) {
	pub := &capturePublisher{}
	eng := newTestEngine(t, testConfig(t, sampleInput), tokenizer.NewScriptTokenizer(), pub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, pub.calls)
}

func TestRun_PublishesToArtifactStore(t *testing.T) {
	store, err := storage.NewArtifactStore(t.TempDir())
	require.NoError(t, err)
	eng := newTestEngine(t, testConfig(t, sampleInput), tokenizer.NewScriptTokenizer(), store)

	built, err := eng.Run(context.Background())
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, built.Vectors.IDs, loaded.Vectors.IDs)
	assert.Equal(t, built.Vectors.Skills, loaded.Vectors.Skills)
	for i, vec := range loaded.Vectors.Vectors {
		dense, err := sparse.Decode(vec, len(loaded.Vectors.Vocabulary))
		require.NoError(t, err)
		assert.Equal(t, sparse.Encode(dense), built.Vectors.Vectors[i])
	}
}

func TestRun_Deterministic(t *testing.T) {
	cfg := testConfig(t, sampleInput)
	first := &capturePublisher{}
	second := &capturePublisher{}

	_, err := newTestEngine(t, cfg, tokenizer.NewScriptTokenizer(), first).Run(context.Background())
	require.NoError(t, err)
	cfg.Pipeline.Workers = 7
	_, err = newTestEngine(t, cfg, tokenizer.NewScriptTokenizer(), second).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.set, second.set)
}

func TestNewEngine_RejectsPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.WelcomePolicy = "sometimes"
	_, err := NewEngine(cfg, testLogger(), tokenizer.NewScriptTokenizer(), &capturePublisher{})
	assert.Error(t, err)
}

func TestPrepareRecord(t *testing.T) {
	p := prepareRecord(courseRecord(map[string]string{
		"授業科目名":        "ｄａｔａ科学入門 [演習]",
		"授業の目標・概要等":    "　概要<br>【キーワード】データ, AI\n",
		"開設期":          "３年次生",
		"科目区分":         "専門教育科目",
		"曜日・時限・講義室":    "月1-2",
		"履修上の注意 受講条件等": "",
	}))

	assert.Equal(t, "data科学入門", p.Course.Title)
	assert.Equal(t, "data科学入門\n概要\n【キーワード】データ, AI\n\n", p.Course.Text)
	assert.Equal(t, 3, p.Course.Grade)
	assert.Equal(t, "専門教育科目", p.Course.Category)
	assert.Equal(t, "月1-2", p.Metadata.Schedule)
	assert.Equal(t, "data科学入門", p.Metadata.Name)
}

func courseRecord(fields map[string]string) course.Record {
	return course.Record{ID: "X", Fields: fields}
}
