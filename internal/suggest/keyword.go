package suggest

import (
	"context"
	"fmt"
	"sort"

	"github.com/digaomatias/mymascada/internal/model"
)

const (
	keywordMinOccurrences  = 3
	keywordMinConfidence   = 0.6
	keywordMinDominantSize = 3
)

// KeywordAnalyzer groups transactions sharing a significant description token
// and proposes the dominant existing category of each group.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer creates a keyword frequency analyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

// Kind returns the analyzer kind.
func (a *KeywordAnalyzer) Kind() AnalyzerKind {
	return KindKeywordFrequency
}

// Analyze emits one suggestion per token whose dominant category share meets
// the confidence floor.
func (a *KeywordAnalyzer) Analyze(_ context.Context, input Input) ([]model.PatternSuggestion, error) {
	categories := input.CategoryByID()

	groups := make(map[string][]model.Transaction)
	for _, txn := range input.Transactions {
		for _, tok := range tokenize(txn.EffectiveDescription()) {
			groups[tok] = append(groups[tok], txn)
		}
	}

	tokens := make([]string, 0, len(groups))
	for tok := range groups {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	var suggestions []model.PatternSuggestion
	for _, tok := range tokens {
		txns := groups[tok]
		if len(txns) < keywordMinOccurrences {
			continue
		}

		categoryCounts := make(map[int]int)
		for _, txn := range txns {
			if txn.CategoryID != nil {
				categoryCounts[*txn.CategoryID]++
			}
		}

		dominantID, dominantCount := 0, 0
		for id, count := range categoryCounts {
			if count > dominantCount || (count == dominantCount && id < dominantID) {
				dominantID, dominantCount = id, count
			}
		}
		if dominantCount < keywordMinDominantSize {
			continue
		}

		confidence := float64(dominantCount) / float64(len(txns))
		if confidence < keywordMinConfidence {
			continue
		}

		cat, ok := categories[dominantID]
		if !ok {
			continue
		}

		ids := make([]string, 0, len(txns))
		for _, txn := range txns {
			ids = append(ids, txn.ID)
		}

		suggestions = append(suggestions, model.PatternSuggestion{
			CategoryID:     dominantID,
			CategoryName:   cat.Name,
			Pattern:        tok,
			Method:         model.MethodRule,
			Confidence:     confidence,
			TransactionIDs: ids,
			Reasoning: fmt.Sprintf("%d of %d transactions containing %q are categorized as %s",
				dominantCount, len(txns), tok, cat.Name),
		})
	}

	return suggestions, nil
}
