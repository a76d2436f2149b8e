package engine

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/syllabus-engine/backend/internal/course"
	"github.com/syllabus-engine/backend/internal/metrics"
	"github.com/syllabus-engine/backend/internal/search"
	"github.com/syllabus-engine/backend/internal/skills"
	"github.com/syllabus-engine/backend/internal/textnorm"
)

// prepared is one record on its way through the pipeline.
type prepared struct {
	Course   course.Normalized
	Metadata course.Metadata
	Terms    []string
}

func (p *prepared) skillInput() skills.Input {
	return skills.Input{
		Text:           p.Course.Text,
		Title:          p.Course.Title,
		Grade:          p.Course.Grade,
		Language:       p.Course.Language,
		Classification: p.Course.Category,
	}
}

// field flattens markup and normalizes one record field.
func field(r course.Record, key string) string {
	return textnorm.Normalize(textnorm.StripMarkup(r.Field(key)))
}

// prepareRecord builds the normalized view and display metadata of r.
func prepareRecord(r course.Record) *prepared {
	title := textnorm.CleanTitle(field(r, course.FieldTitle))

	parts := make([]string, 0, len(course.AnalysisFields))
	parts = append(parts, title)
	for _, key := range course.AnalysisFields[1:] {
		parts = append(parts, field(r, key))
	}

	term := field(r, course.FieldTerm)
	return &prepared{
		Course: course.Normalized{
			ID:       r.ID,
			Title:    title,
			Text:     strings.Join(parts, "\n"),
			Grade:    skills.ParseGrade(term),
			Language: field(r, course.FieldLanguage),
			Category: field(r, course.FieldClassification),
		},
		Metadata: course.Metadata{
			Name:       title,
			Department: field(r, course.FieldDepartment),
			Term:       term,
			Schedule:   field(r, course.FieldSchedule),
			Instructor: field(r, course.FieldInstructor),
			Area:       field(r, course.FieldArea),
			Field:      field(r, course.FieldField),
		},
	}
}

func prepareAll(records []course.Record) []*prepared {
	out := make([]*prepared, len(records))
	for i, r := range records {
		out[i] = prepareRecord(r)
	}
	return out
}

// tokenizeAll fills Terms for every record in parallel. A tokenizer failure
// leaves that record without terms; only cancellation aborts.
func (e *Engine) tokenizeAll(ctx context.Context, records []*prepared) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Config.Pipeline.Workers, 1))
	for _, p := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tokens, err := e.Tokenizer.Tokenize(ctx, p.Course.Text)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				metrics.TokenizerFailures.WithLabelValues(e.Tokenizer.Name()).Inc()
				e.Logger.WithFields(logrus.Fields{
					"course":    p.Course.ID,
					"tokenizer": e.Tokenizer.Name(),
				}).WithError(err).Warn("Tokenization failed, treating text as empty")
				tokens = nil
			}
			p.Terms = search.Analyze(tokens)
			return nil
		})
	}
	return g.Wait()
}

// keepWithTerms drops records without terms, keeping source order.
func keepWithTerms(records []*prepared) []*prepared {
	kept := make([]*prepared, 0, len(records))
	for _, p := range records {
		if len(p.Terms) > 0 {
			kept = append(kept, p)
		}
	}
	return kept
}
