package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/syllabus-engine/backend/internal/config"
	"github.com/syllabus-engine/backend/internal/tokenizer"
)

// newRootCmd creates the root indexer command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "indexer",
		Short:         "Course syllabus indexing engine",
		Long:          "indexer turns upstream course records into vector, metadata and\nrecommendation artifacts, and inspects the published results.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newBuildCmd(),
		newQueryCmd(),
		newVerifyCmd(),
	)

	return cmd
}

// setup loads the configuration and a logger writing to w.
func setup(w io.Writer) (*config.Config, *logrus.Entry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Log.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	return cfg, logger.WithField("service", "syllabus-indexer"), nil
}

func newTokenizer(cfg *config.Config) (tokenizer.Tokenizer, error) {
	return tokenizer.New(tokenizer.Config{
		Provider: cfg.Tokenizer.Provider,
		BaseURL:  cfg.Tokenizer.BaseURL,
		Timeout:  cfg.Tokenizer.Timeout,
		POS:      cfg.Tokenizer.POS,
	})
}
