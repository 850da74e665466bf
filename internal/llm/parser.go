package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// rawBatchResponse mirrors the JSON contract providers must answer with.
type rawBatchResponse struct {
	Results []TransactionSuggestions `json:"results"`
}

// parseBatchResponse validates a provider payload. A malformed payload is a
// hard failure: a corrupted response is never partially trusted. Returned
// transaction ids are checked against the requested set; unknown ids are
// logged and dropped rather than failing the whole batch.
func parseBatchResponse(provider string, data []byte, requested map[string]struct{}, validCategories map[int]struct{}) (*BatchResponse, error) {
	var raw rawBatchResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &RequestError{
			Provider: provider,
			Message:  "malformed response payload",
			Err:      err,
		}
	}

	if len(raw.Results) == 0 {
		return nil, &RequestError{
			Provider: provider,
			Message:  "response contains no results",
		}
	}

	resp := &BatchResponse{}
	for _, result := range raw.Results {
		if _, ok := requested[result.TransactionID]; !ok {
			slog.Warn("Provider returned unknown transaction id, dropping",
				"provider", provider,
				"transaction_id", result.TransactionID)
			continue
		}

		if len(result.Suggestions) != SuggestionsPerTransaction {
			return nil, &RequestError{
				Provider: provider,
				Message: fmt.Sprintf("transaction %s has %d suggestions, want exactly %d",
					result.TransactionID, len(result.Suggestions), SuggestionsPerTransaction),
			}
		}

		for i, suggestion := range result.Suggestions {
			if _, ok := validCategories[suggestion.CategoryID]; !ok {
				return nil, &RequestError{
					Provider: provider,
					Message: fmt.Sprintf("transaction %s suggestion %d references unknown category %d",
						result.TransactionID, i, suggestion.CategoryID),
				}
			}
			if suggestion.Confidence < 0 || suggestion.Confidence > 1 {
				return nil, &RequestError{
					Provider: provider,
					Message: fmt.Sprintf("transaction %s suggestion %d has confidence %.3f outside [0,1]",
						result.TransactionID, i, suggestion.Confidence),
				}
			}
		}

		resp.Results = append(resp.Results, result)
		bucketTopSuggestion(&resp.Summary, result.Suggestions)
	}

	if len(resp.Results) == 0 {
		return nil, &RequestError{
			Provider: provider,
			Message:  "no result matched a requested transaction id",
		}
	}

	return resp, nil
}

// bucketTopSuggestion tallies the first (highest-ranked) suggestion into the
// batch summary.
func bucketTopSuggestion(summary *Summary, suggestions []CategorySuggestion) {
	top := suggestions[0].Confidence
	switch {
	case top >= 0.8:
		summary.HighConfidence++
	case top >= 0.5:
		summary.MediumConfidence++
	default:
		summary.LowConfidence++
	}
}
