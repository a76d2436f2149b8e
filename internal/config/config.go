package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when SYLLABUS_CONFIG is unset.
const DefaultConfigFile = "config.yaml"

// Config holds the configuration for the indexer and the query server
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// PipelineConfig holds batch indexing configuration
type PipelineConfig struct {
	InputPath     string `yaml:"input_path"`
	OutputDir     string `yaml:"output_dir"`
	MaxFeatures   int    `yaml:"max_features"`
	TopK          int    `yaml:"top_k"`
	Workers       int    `yaml:"workers"`
	WelcomePolicy string `yaml:"welcome_policy"`
}

type TokenizerConfig struct {
	Provider string        `yaml:"provider"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	POS      string        `yaml:"pos"`
}

// ServerConfig holds live-query server configuration
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	ArtifactDir string `yaml:"artifact_dir"`
	SearchLimit int    `yaml:"search_limit"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputPath:     "integrated_arts_courses.json",
			OutputDir:     ".",
			MaxFeatures:   500,
			TopK:          5,
			Workers:       8,
			WelcomePolicy: "tag",
		},
		Tokenizer: TokenizerConfig{
			Provider: "script",
			Timeout:  10 * time.Second,
			POS:      "名詞",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			ArtifactDir: ".",
			SearchLimit: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by SYLLABUS_CONFIG and environment variables, in that order.
func Load() (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(GetStringEnv("SYLLABUS_CONFIG", DefaultConfigFile)); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Pipeline.InputPath = GetStringEnv("SYLLABUS_INPUT", c.Pipeline.InputPath)
	c.Pipeline.OutputDir = GetStringEnv("SYLLABUS_OUTPUT_DIR", c.Pipeline.OutputDir)
	c.Pipeline.MaxFeatures = GetIntEnv("SYLLABUS_MAX_FEATURES", c.Pipeline.MaxFeatures)
	c.Pipeline.TopK = GetIntEnv("SYLLABUS_TOP_K", c.Pipeline.TopK)
	c.Pipeline.Workers = GetIntEnv("SYLLABUS_WORKERS", c.Pipeline.Workers)
	c.Pipeline.WelcomePolicy = GetStringEnv("SYLLABUS_WELCOME_POLICY", c.Pipeline.WelcomePolicy)

	c.Tokenizer.Provider = GetStringEnv("TOKENIZER_PROVIDER", c.Tokenizer.Provider)
	c.Tokenizer.BaseURL = GetStringEnv("TOKENIZER_BASE_URL", c.Tokenizer.BaseURL)
	c.Tokenizer.Timeout = GetDurationEnv("TOKENIZER_TIMEOUT", c.Tokenizer.Timeout)
	c.Tokenizer.POS = GetStringEnv("TOKENIZER_POS", c.Tokenizer.POS)

	c.Server.Addr = GetStringEnv("SERVER_ADDR", c.Server.Addr)
	c.Server.ArtifactDir = GetStringEnv("SERVER_ARTIFACT_DIR", c.Server.ArtifactDir)
	c.Server.SearchLimit = GetIntEnv("SERVER_SEARCH_LIMIT", c.Server.SearchLimit)

	c.Log.Level = GetStringEnv("LOG_LEVEL", c.Log.Level)
	c.Log.JSON = GetBoolEnv("LOG_JSON", c.Log.JSON)
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Pipeline.InputPath == "" {
		errs = append(errs, errors.New("pipeline.input_path is empty"))
	}
	if c.Pipeline.MaxFeatures <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_features must be positive, got %d", c.Pipeline.MaxFeatures))
	}
	if c.Pipeline.TopK <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.top_k must be positive, got %d", c.Pipeline.TopK))
	}
	if c.Pipeline.Workers <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.workers must be positive, got %d", c.Pipeline.Workers))
	}
	switch strings.ToLower(c.Pipeline.WelcomePolicy) {
	case "tag", "clear":
	default:
		errs = append(errs, fmt.Errorf("unknown welcome policy %q", c.Pipeline.WelcomePolicy))
	}
	switch c.Tokenizer.Provider {
	case "", "script", "http":
	default:
		errs = append(errs, fmt.Errorf("unknown tokenizer provider %q", c.Tokenizer.Provider))
	}
	if c.Server.SearchLimit <= 0 {
		errs = append(errs, fmt.Errorf("server.search_limit must be positive, got %d", c.Server.SearchLimit))
	}
	return errors.Join(errs...)
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
