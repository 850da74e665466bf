// Package llm provides the remote categorization capability: an injected
// interface over a language-model provider that returns ranked category
// suggestions for a batch of transactions.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/digaomatias/mymascada/internal/model"
)

// SuggestionsPerTransaction is the exact number of ranked suggestions a
// provider must return for every transaction.
const SuggestionsPerTransaction = 3

// Config holds provider configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// TransactionInput is the transaction-shaped payload sent to the provider.
type TransactionInput struct {
	Date        time.Time `json:"date"`
	ID          string    `json:"id"`
	Description string    `json:"description"`
	AccountName string    `json:"account_name,omitempty"`
	Currency    string    `json:"currency"`
	Amount      float64   `json:"amount"`
}

// CategorySuggestion is one ranked suggestion for a transaction.
type CategorySuggestion struct {
	Reasoning  string  `json:"reasoning"`
	CategoryID int     `json:"category_id"`
	Confidence float64 `json:"confidence"`
}

// TransactionSuggestions holds the ranked suggestions for one transaction.
type TransactionSuggestions struct {
	TransactionID string               `json:"transaction_id"`
	Suggestions   []CategorySuggestion `json:"suggestions"`
}

// Summary aggregates a batch by confidence bucket of each transaction's top
// suggestion: high >= 0.8, medium >= 0.5, low below.
type Summary struct {
	HighConfidence   int `json:"high_confidence"`
	MediumConfidence int `json:"medium_confidence"`
	LowConfidence    int `json:"low_confidence"`
}

// BatchResponse is a provider's validated answer for a batch.
type BatchResponse struct {
	Results []TransactionSuggestions
	Summary Summary
}

// Client is the remote categorization capability. Implementations must honor
// context cancellation; a provider call may take minutes.
type Client interface {
	SuggestCategories(ctx context.Context, inputs []TransactionInput, categories []model.Category) (*BatchResponse, error)
}

// RequestError is the typed failure result for provider problems: timeouts,
// transport errors, and malformed payloads. It never wraps a panic and is
// never silently treated as zero suggestions.
type RequestError struct {
	Err      error
	Provider string
	Message  string
	Timeout  bool
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s categorization failed: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s categorization failed: %s", e.Provider, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// BuildCandidates converts a validated provider response into pending
// categorization candidates carrying the LLM method tag.
func BuildCandidates(resp *BatchResponse, processedBy string, newID func() string) []model.CategorizationCandidate {
	now := time.Now().UTC()
	var candidates []model.CategorizationCandidate
	for _, result := range resp.Results {
		for _, suggestion := range result.Suggestions {
			candidates = append(candidates, model.CategorizationCandidate{
				ID:              newID(),
				TransactionID:   result.TransactionID,
				CategoryID:      suggestion.CategoryID,
				Method:          model.MethodLLM,
				ConfidenceScore: suggestion.Confidence,
				Reasoning:       suggestion.Reasoning,
				Status:          model.CandidatePending,
				ProcessedBy:     processedBy,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
		}
	}
	return candidates
}
