// Package generator calls the external natural-language-to-SQL text
// generation service. Any OpenAI-compatible chat-completions endpoint
// works; the returned text is untrusted and is validated downstream by
// the gateway classifier.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no API key is set. The gateway
// surfaces it to the caller without attempting classification.
var ErrNotConfigured = errors.New("text generation is not configured: set STOCKSENSE_OPENAI_API_KEY")

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	maxTokens      = 256
)

// ClientConfig holds generator connection settings.
type ClientConfig struct {
	APIKey  string
	BaseURL string // empty = api.openai.com
	Model   string // empty = defaultModel
	Timeout time.Duration
}

// Client generates SQL via a chat-completions API.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client. A missing API key is not an error here;
// Generate reports ErrNotConfigured per request so the service can run
// with the NL endpoint degraded but the report endpoints healthy.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate asks the model to convert the question into a single SQL
// SELECT over the approved schema and returns the raw candidate text.
func (c *Client) Generate(ctx context.Context, question, schemaDDL string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: BuildPrompt(question, schemaDDL)}},
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("Generate: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("Generate: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation service unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("Generate: read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("Generate: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("generation service error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("generation service returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("generation service returned no choices")
	}

	c.logger.Debug("candidate query generated",
		zap.String("model", c.cfg.Model),
		zap.Duration("duration", time.Since(start)),
	)

	return StripCodeFence(parsed.Choices[0].Message.Content), nil
}

// StripCodeFence removes a surrounding markdown code fence from model
// output. Transport cleanup only: the text is still fully untrusted and
// is never repaired beyond this.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 && !strings.ContainsAny(s[:i], " ;") {
		s = s[i+1:] // drop the language tag line, e.g. ```sql
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
