package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syllabus-engine/backend/internal/engine"
)

// formatHits formats query results for CLI output.
func formatHits(hits []engine.Hit) string {
	if len(hits) == 0 {
		return "No matching courses.\n"
	}

	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. %s %s (score: %.3f)\n", i+1, h.ID, h.Title, h.Score)
	}
	return b.String()
}

// newQueryCmd creates the "indexer query" subcommand.
func newQueryCmd() *cobra.Command {
	var (
		input string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Rank input courses against free text",
		Long:  "Fits a one-off weighting space over the input courses plus the query\nand prints the best matches. Nothing is written.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if input != "" {
				cfg.Pipeline.InputPath = input
			}

			tok, err := newTokenizer(cfg)
			if err != nil {
				return err
			}
			eng, err := engine.NewEngine(cfg, logger, tok, nil)
			if err != nil {
				return err
			}

			hits, err := eng.Query(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatHits(hits))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "upstream course source (overrides SYLLABUS_INPUT)")
	cmd.Flags().IntVarP(&limit, "limit", "k", 5, "number of results")
	return cmd
}
