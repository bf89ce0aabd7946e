// Package assist suggests LOM metadata values for a record using an LLM.
// Suggestions are advisory: editors review them before anything is stored.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultModel = "gpt-4o-mini"

// ErrDisabled indicates the assist client has no API key configured.
var ErrDisabled = errors.New("metadata assist is disabled (no API key configured)")

// Config holds configuration for the assist client.
type Config struct {
	APIKey     string
	Model      string        // "gpt-4o-mini" (default)
	MaxRetries int           // Retry attempts for failed suggestion calls
	Timeout    time.Duration // HTTP timeout
	BaseURL    string        // Optional (tests)
	HTTPClient *http.Client  // Optional (tests)
}

// Client calls the OpenAI chat API to produce metadata suggestions.
type Client struct {
	client     openai.Client
	model      string
	maxRetries int
	enabled    bool
}

// New creates a new assist client. A client without an API key is returned
// in disabled state and every Suggest call fails with ErrDisabled.
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		// retries are driven by our own loop, not the SDK transport
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		enabled:    cfg.APIKey != "",
	}
}

// Enabled reports whether the client can make suggestion calls.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// Request describes the record content the suggestions are based on.
type Request struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Media       []string `json:"media,omitempty"` // one line per attached file, e.g. "image: West facade"
}

// Suggestion is the model's proposed metadata values.
type Suggestion struct {
	Keywords         []string `json:"keywords"`
	Difficulty       string   `json:"difficulty"`
	HistoricalPeriod string   `json:"historical_period"`
	Description      string   `json:"description"`
}

const systemPrompt = `You help catalog heritage education content using IEEE LOM-style metadata.
Given a record's title, description, and attached media, respond with a single JSON object:
{
  "keywords": [up to 8 short lowercase keywords],
  "difficulty": one of "very easy", "easy", "medium", "difficult", "very difficult",
  "historical_period": a short period name such as "Gothic" or "Industrial Revolution", or "" if unclear,
  "description": a one-paragraph learner-facing summary
}
Respond with the JSON object only, no surrounding prose.`

// Suggest asks the model for metadata suggestions. Transient failures are
// retried up to the configured attempt count.
func (c *Client) Suggest(ctx context.Context, req Request) (*Suggestion, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("record has no title or description to work from")
	}

	userPrompt, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}

	var suggestion *Suggestion
	err = retry.Do(
		func() error {
			s, callErr := c.call(ctx, string(userPrompt))
			if callErr != nil {
				return callErr
			}
			suggestion = s
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("suggestion call failed: %w", err)
	}
	return suggestion, nil
}

func (c *Client) call(ctx context.Context, userPrompt string) (*Suggestion, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	var suggestion Suggestion
	content := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion: %w", err)
	}
	return &suggestion, nil
}

// stripCodeFence removes a surrounding markdown code fence from model output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("OpenAI error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("OpenAI error (status %d)", apiErr.StatusCode)
	}
	return err
}
