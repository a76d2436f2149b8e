package tokenizer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// HTTPTokenizer calls a morphological analysis service.
//
// Request:  POST {"text": "..."}
// Response: {"tokens": [{"surface": "...", "base_form": "...", "pos": "名詞,一般,*,*"}]}
//
// Only tokens whose leading POS category equals POS are kept; the base form is
// used unless the analyzer reports "*" or nothing.
type HTTPTokenizer struct {
	BaseURL string
	POS     string
	client  *http.Client
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Tokens []struct {
		Surface  string `json:"surface"`
		BaseForm string `json:"base_form"`
		POS      string `json:"pos"`
	} `json:"tokens"`
}

func NewHTTPTokenizer(baseURL, pos string, timeout time.Duration) *HTTPTokenizer {
	if baseURL == "" {
		baseURL = "http://localhost:8081/api/v1/analyze"
	}
	if pos == "" {
		pos = "名詞"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTokenizer{
		BaseURL: baseURL,
		POS:     pos,
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTokenizer) Name() string {
	return "http"
}

func (t *HTTPTokenizer) Tokenize(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyzer returned status: %d", resp.StatusCode)
	}

	var result analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode analyzer response: %w", err)
	}

	words := make([]string, 0, len(result.Tokens))
	for _, tok := range result.Tokens {
		category, _, _ := strings.Cut(tok.POS, ",")
		if category != t.POS {
			continue
		}
		word := tok.BaseForm
		if word == "" || word == "*" {
			word = tok.Surface
		}
		if word != "" {
			words = append(words, word)
		}
	}
	return words, nil
}
