package tokenizer

import (
	"context"
	"fmt"
	"time"
)

// Tokenizer segments normalized text into base-form noun tokens in source order.
// Implementations must be safe for concurrent use and may return an empty slice.
type Tokenizer interface {
	Tokenize(ctx context.Context, text string) ([]string, error)
	Name() string
}

// Config selects and configures a Tokenizer.
type Config struct {
	Provider string
	BaseURL  string
	Timeout  time.Duration
	POS      string
}

// New builds the tokenizer named by cfg.Provider.
func New(cfg Config) (Tokenizer, error) {
	switch cfg.Provider {
	case "", "script":
		return NewScriptTokenizer(), nil
	case "http":
		return NewHTTPTokenizer(cfg.BaseURL, cfg.POS, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown tokenizer provider %q", cfg.Provider)
	}
}
