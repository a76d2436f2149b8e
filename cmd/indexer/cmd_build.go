package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syllabus-engine/backend/internal/engine"
	"github.com/syllabus-engine/backend/internal/storage"
)

// newBuildCmd creates the "indexer build" subcommand.
func newBuildCmd() *cobra.Command {
	var (
		input       string
		output      string
		maxFeatures int
		policy      string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build and publish all artifacts",
		Long:  "Reads the upstream course source, fits the vocabulary, extracts tags,\ncomputes recommendations and atomically publishes the three artifacts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if input != "" {
				cfg.Pipeline.InputPath = input
			}
			if output != "" {
				cfg.Pipeline.OutputDir = output
			}
			if maxFeatures > 0 {
				cfg.Pipeline.MaxFeatures = maxFeatures
			}
			if policy != "" {
				cfg.Pipeline.WelcomePolicy = policy
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			tok, err := newTokenizer(cfg)
			if err != nil {
				return err
			}
			store, err := storage.NewArtifactStore(cfg.Pipeline.OutputDir)
			if err != nil {
				return err
			}
			eng, err := engine.NewEngine(cfg, logger, tok, store)
			if err != nil {
				return err
			}

			set, err := eng.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}

			stats := eng.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d of %d records, %d terms, artifacts in %s\n",
				len(set.Vectors.IDs), stats.RecordsLoaded, len(set.Vectors.Vocabulary), store.Dir())
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "upstream course source (overrides SYLLABUS_INPUT)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "artifact directory (overrides SYLLABUS_OUTPUT_DIR)")
	cmd.Flags().IntVar(&maxFeatures, "max-features", 0, "vocabulary size bound (overrides SYLLABUS_MAX_FEATURES)")
	cmd.Flags().StringVar(&policy, "welcome-policy", "", "tag or clear (overrides SYLLABUS_WELCOME_POLICY)")
	return cmd
}
