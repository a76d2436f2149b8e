package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syllabus-engine/backend/internal/skills"
	"github.com/syllabus-engine/backend/internal/storage"
)

// tagCount is one row of the verify report.
type tagCount struct {
	Tag   string
	Count int
}

// countTags tallies tags over all courses, most frequent first, ties by name.
// Keyword tags are folded into a single row unless withKeywords is set.
func countTags(sets [][]string, withKeywords bool) []tagCount {
	counts := map[string]int{}
	for _, set := range sets {
		for _, tag := range set {
			if !withKeywords && strings.HasPrefix(tag, skills.KeywordPrefix) {
				tag = skills.KeywordPrefix + "*"
			}
			counts[tag]++
		}
	}
	out := make([]tagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, tagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func writeReport(w io.Writer, set *storage.ArtifactSet, withKeywords bool) {
	v := set.Vectors
	untagged := 0
	for _, tags := range v.Skills {
		if len(tags) == 0 {
			untagged++
		}
	}
	fmt.Fprintf(w, "courses: %d\nvocabulary: %d\nmetadata entries: %d\nrecommendation lists: %d\nuntagged courses: %d\n",
		len(v.IDs), len(v.Vocabulary), len(set.Metadata), len(set.Recommendations), untagged)
	fmt.Fprintln(w, "tags:")
	for _, tc := range countTags(v.Skills, withKeywords) {
		fmt.Fprintf(w, "  %-20s %d\n", tc.Tag, tc.Count)
	}
}

// checkRecommendations enforces the neighbor list invariants.
func checkRecommendations(set *storage.ArtifactSet, topK int) error {
	known := make(map[string]bool, len(set.Vectors.IDs))
	for _, id := range set.Vectors.IDs {
		known[id] = true
	}
	for id, list := range set.Recommendations {
		if !known[id] {
			return fmt.Errorf("recommendations for unknown course %s", id)
		}
		if len(list) > topK {
			return fmt.Errorf("course %s has %d recommendations, limit %d", id, len(list), topK)
		}
		for i, n := range list {
			switch {
			case n.ID == id:
				return fmt.Errorf("course %s recommends itself", id)
			case n.Score <= 0:
				return fmt.Errorf("course %s has non-positive score for %s", id, n.ID)
			case i > 0 && n.Score > list[i-1].Score:
				return fmt.Errorf("course %s recommendations are not ordered", id)
			}
		}
	}
	return nil
}

// newVerifyCmd creates the "indexer verify" subcommand.
func newVerifyCmd() *cobra.Command {
	var (
		dir          string
		withKeywords bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check published artifacts and print tag counts",
		Long:  "Loads the artifacts, checks that ids, vectors and tag sets are aligned and\ndecodable against the vocabulary, validates recommendation lists and prints\nhow often each tag occurs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Pipeline.OutputDir
			}

			store, err := storage.NewArtifactStore(dir)
			if err != nil {
				return err
			}
			set, err := store.Load()
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			if err := checkRecommendations(set, cfg.Pipeline.TopK); err != nil {
				return fmt.Errorf("verify: %w", err)
			}

			writeReport(cmd.OutOrStdout(), set, withKeywords)
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "artifact directory (defaults to SYLLABUS_OUTPUT_DIR)")
	cmd.Flags().BoolVar(&withKeywords, "keywords", false, "list keyword tags individually")
	return cmd
}
