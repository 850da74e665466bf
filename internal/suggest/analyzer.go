// Package suggest implements the categorization candidate pipeline: a set of
// independent analyzers that mine a transaction pool for category evidence,
// plus ranking and de-duplication over their pooled output.
package suggest

import (
	"context"

	"github.com/digaomatias/mymascada/internal/model"
)

// AnalyzerKind identifies one analyzer in the pipeline.
type AnalyzerKind string

// Analyzer kinds.
const (
	KindKeywordFrequency AnalyzerKind = "keyword_frequency"
	KindMerchantPattern  AnalyzerKind = "merchant_pattern"
	KindAmountRecurrence AnalyzerKind = "amount_recurrence"
	KindDateRecurrence   AnalyzerKind = "date_recurrence"
)

// Input is the immutable snapshot every analyzer runs over. Analyzers never
// see each other's output during generation.
type Input struct {
	Transactions []model.Transaction
	Categories   []model.Category
	Rules        []model.CategoryRule
}

// CategoryByID returns a lookup map over the snapshot's categories.
func (in *Input) CategoryByID() map[int]model.Category {
	m := make(map[int]model.Category, len(in.Categories))
	for _, c := range in.Categories {
		m[c.ID] = c
	}
	return m
}

// CategoryByName returns a lookup map keyed by lowercased category name.
func (in *Input) CategoryByName() map[string]model.Category {
	m := make(map[string]model.Category, len(in.Categories))
	for _, c := range in.Categories {
		m[normalizeKey(c.Name)] = c
	}
	return m
}

// Analyzer is the uniform capability all evidence sources implement.
type Analyzer interface {
	Kind() AnalyzerKind
	Analyze(ctx context.Context, input Input) ([]model.PatternSuggestion, error)
}
