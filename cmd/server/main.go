package main

import (
	"github.com/sirupsen/logrus"

	"github.com/syllabus-engine/backend/internal/api"
	"github.com/syllabus-engine/backend/internal/config"
	"github.com/syllabus-engine/backend/internal/storage"
	"github.com/syllabus-engine/backend/internal/tokenizer"
)

func main() {
	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "syllabus-api")

	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		entry.Fatalf("Failed to load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Log.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	entry.Info("Starting Syllabus Query Service")

	// 2. Artifacts
	store, err := storage.NewArtifactStore(cfg.Server.ArtifactDir)
	if err != nil {
		entry.Fatalf("Failed to open artifact directory: %v", err)
	}
	catalog, err := api.LoadCatalog(store)
	if err != nil {
		entry.Fatalf("Failed to load artifacts: %v", err)
	}
	entry.WithFields(logrus.Fields{
		"courses":    catalog.Index.Size(),
		"vocabulary": catalog.Index.VocabularySize(),
	}).Info("Catalog loaded")

	// 3. Tokenizer
	tok, err := tokenizer.New(tokenizer.Config{
		Provider: cfg.Tokenizer.Provider,
		BaseURL:  cfg.Tokenizer.BaseURL,
		Timeout:  cfg.Tokenizer.Timeout,
		POS:      cfg.Tokenizer.POS,
	})
	if err != nil {
		entry.Fatalf("Failed to initialize tokenizer: %v", err)
	}

	// 4. API Server
	server := api.NewServer(catalog, tok, entry, cfg.Server.SearchLimit)
	if err := server.Start(cfg.Server.Addr); err != nil {
		entry.Fatal(err)
	}
}
