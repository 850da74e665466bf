package llm

import (
	"context"
	"fmt"

	"github.com/digaomatias/mymascada/internal/model"
)

// MockClient is a deterministic offline Client used in tests and dry runs.
// It cycles through the available categories, ranking three per transaction
// with descending confidence.
type MockClient struct {
	// Err, when set, is returned from every call.
	Err error
}

// NewMockClient creates a mock categorization client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// SuggestCategories returns synthetic ranked suggestions.
func (c *MockClient) SuggestCategories(ctx context.Context, inputs []TransactionInput, categories []model.Category) (*BatchResponse, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, &RequestError{Provider: "mock", Message: "context cancelled", Err: err}
	}
	if len(categories) < SuggestionsPerTransaction {
		return nil, &RequestError{
			Provider: "mock",
			Message:  fmt.Sprintf("need at least %d categories", SuggestionsPerTransaction),
		}
	}

	confidences := []float64{0.9, 0.6, 0.3}

	resp := &BatchResponse{}
	for i, input := range inputs {
		suggestions := make([]CategorySuggestion, SuggestionsPerTransaction)
		for rank := 0; rank < SuggestionsPerTransaction; rank++ {
			cat := categories[(i+rank)%len(categories)]
			suggestions[rank] = CategorySuggestion{
				CategoryID: cat.ID,
				Confidence: confidences[rank],
				Reasoning:  fmt.Sprintf("mock rank %d for %q", rank+1, input.Description),
			}
		}
		resp.Results = append(resp.Results, TransactionSuggestions{
			TransactionID: input.ID,
			Suggestions:   suggestions,
		})
		bucketTopSuggestion(&resp.Summary, suggestions)
	}

	return resp, nil
}
