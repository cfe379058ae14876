package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sprintpoint/paperchase/internal/common"
	"github.com/sprintpoint/paperchase/internal/model"
)

const anthropicEndpoint = "https://api.anthropic.com/v1/messages"

// anthropicClient implements the Client interface for Anthropic API.
type anthropicClient struct {
	httpClient  *http.Client
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

// newAnthropicClient creates a new Anthropic API client.
func newAnthropicClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 300
	}

	return &anthropicClient{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		endpoint:    anthropicEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Classify sends one document's extracted text to Anthropic and parses the
// structured reply.
func (c *anthropicClient) Classify(ctx context.Context, text string) (model.ClassifiedDocument, error) {
	systemPrompt := "You are a financial document classifier. Respond only with the JSON object in the exact shape requested."

	requestBody := map[string]any{
		"model":       c.model,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"system":      systemPrompt,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": buildPrompt(text),
			},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return model.ClassifiedDocument{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(string(jsonBody)))
	if err != nil {
		return model.ClassifiedDocument{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.ClassifiedDocument{}, fmt.Errorf("%w: request failed: %v", common.ErrClassification, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ClassifiedDocument{}, fmt.Errorf("%w: failed to read response: %v", common.ErrClassification, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return model.ClassifiedDocument{}, common.ErrRateLimit
	}
	if resp.StatusCode != http.StatusOK {
		return model.ClassifiedDocument{}, fmt.Errorf("%w: anthropic API error (status %d): %s", common.ErrClassification, resp.StatusCode, string(body))
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return model.ClassifiedDocument{}, fmt.Errorf("%w: failed to parse response: %v", common.ErrClassification, err)
	}

	if len(response.Content) == 0 {
		return model.ClassifiedDocument{}, fmt.Errorf("%w: no content in response", common.ErrClassification)
	}

	return parseClassification(response.Content[0].Text)
}

// anthropicResponse represents the Anthropic API response structure.
type anthropicResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Role       string `json:"role"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
