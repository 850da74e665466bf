package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/service"
)

const (
	defaultTimeout = 2 * time.Minute
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"
)

// openAIClient implements the Client interface for the OpenAI API.
type openAIClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required: %w", common.ErrMissingConfig)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gpt-4-turbo-preview"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &openAIClient{
		apiKey:      cfg.APIKey,
		model:       modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// SuggestCategories sends a batch categorization request and validates the
// response strictly. Timeouts and transport failures degrade to a typed
// RequestError so callers can report them without crashing the run.
func (c *openAIClient) SuggestCategories(ctx context.Context, inputs []TransactionInput, categories []model.Category) (*BatchResponse, error) {
	if len(inputs) == 0 {
		return nil, &RequestError{Provider: "openai", Message: "no transactions in request"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt, err := buildPrompt(inputs, categories)
	if err != nil {
		return nil, &RequestError{Provider: "openai", Message: "failed to build prompt", Err: err}
	}

	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role": "system",
				"content": "You are a financial transaction categorizer. You MUST respond with ONLY a valid JSON object. " +
					"For every transaction return exactly three ranked suggestions, each with category_id, confidence in [0,1], and reasoning. " +
					"Start your response directly with { and end with }.",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, &RequestError{Provider: "openai", Message: "failed to marshal request", Err: err}
	}

	var body []byte
	err = common.WithRetry(ctx, func() error {
		var postErr error
		body, postErr = c.post(ctx, jsonBody)
		return postErr
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second})
	if err != nil {
		return nil, &RequestError{
			Provider: "openai",
			Message:  "request failed",
			Err:      err,
			Timeout:  errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded),
		}
	}

	content, err := extractChatContent(body)
	if err != nil {
		return nil, &RequestError{Provider: "openai", Message: "unexpected completion envelope", Err: err}
	}

	return parseBatchResponse("openai", []byte(content), idSet(inputs), categorySet(categories))
}

// post performs one completion request. Transient failures (transport
// errors, rate limits, 5xx) come back retryable; other API rejections do not.
func (c *openAIClient) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &common.RetryableError{Err: err, Retryable: false}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", common.ErrRateLimit, truncate(string(body), 200))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	case resp.StatusCode != http.StatusOK:
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 200)),
			Retryable: false,
		}
	}

	return body, nil
}

// buildPrompt renders the transactions and category tree as JSON for the model.
func buildPrompt(inputs []TransactionInput, categories []model.Category) (string, error) {
	type promptCategory struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		ID       int    `json:"id"`
		ParentID *int   `json:"parent_id,omitempty"`
	}

	promptCategories := make([]promptCategory, 0, len(categories))
	for _, c := range categories {
		promptCategories = append(promptCategories, promptCategory{
			ID:       c.ID,
			Name:     c.Name,
			Type:     string(c.Type),
			ParentID: c.ParentID,
		})
	}

	payload := map[string]any{
		"transactions": inputs,
		"categories":   promptCategories,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Categorize these transactions using only the listed category ids:\n%s", data), nil
}

// extractChatContent pulls the assistant message out of a chat completion.
func extractChatContent(body []byte) (string, error) {
	var envelope struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", err
	}
	if len(envelope.Choices) == 0 {
		return "", fmt.Errorf("completion has no choices")
	}
	return envelope.Choices[0].Message.Content, nil
}

func idSet(inputs []TransactionInput) map[string]struct{} {
	set := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		set[in.ID] = struct{}{}
	}
	return set
}

func categorySet(categories []model.Category) map[int]struct{} {
	set := make(map[int]struct{}, len(categories))
	for _, c := range categories {
		set[c.ID] = struct{}{}
	}
	return set
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
