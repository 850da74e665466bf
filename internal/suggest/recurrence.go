package suggest

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/digaomatias/mymascada/internal/model"
)

const (
	recurrenceMinGroup      = 3
	amountMinAgreement      = 0.8
	dateMinAgreement        = 0.75
	dateRecurrenceScale     = 0.8
	minCategorizedAgreement = 2
)

// AmountRecurrenceAnalyzer finds charges recurring at an exact absolute
// amount under a consistent description and proposes their common category.
type AmountRecurrenceAnalyzer struct{}

// NewAmountRecurrenceAnalyzer creates an amount recurrence analyzer.
func NewAmountRecurrenceAnalyzer() *AmountRecurrenceAnalyzer {
	return &AmountRecurrenceAnalyzer{}
}

// Kind returns the analyzer kind.
func (a *AmountRecurrenceAnalyzer) Kind() AnalyzerKind {
	return KindAmountRecurrence
}

// Analyze groups by exact absolute amount, sub-groups by normalized
// description, and emits a suggestion when the sub-group's existing
// categories agree at 80% or better.
func (a *AmountRecurrenceAnalyzer) Analyze(_ context.Context, input Input) ([]model.PatternSuggestion, error) {
	categories := input.CategoryByID()

	// Key amounts in cents to avoid float map keys.
	amountGroups := make(map[int64][]model.Transaction)
	for _, txn := range input.Transactions {
		cents := int64(math.Round(math.Abs(txn.Amount) * 100))
		amountGroups[cents] = append(amountGroups[cents], txn)
	}

	amounts := make([]int64, 0, len(amountGroups))
	for cents := range amountGroups {
		amounts = append(amounts, cents)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })

	var suggestions []model.PatternSuggestion
	for _, cents := range amounts {
		txns := amountGroups[cents]
		if len(txns) < recurrenceMinGroup {
			continue
		}

		for _, sub := range groupByNormalizedDescription(txns, recurrenceMinGroup) {
			categoryID, agreement, agreeing := dominantCategory(sub.txns)
			if agreeing < minCategorizedAgreement || agreement < amountMinAgreement {
				continue
			}
			cat, ok := categories[categoryID]
			if !ok {
				continue
			}

			suggestions = append(suggestions, model.PatternSuggestion{
				CategoryID:     categoryID,
				CategoryName:   cat.Name,
				Pattern:        sub.key,
				Method:         model.MethodAmountRecurrence,
				Confidence:     agreement,
				TransactionIDs: transactionIDs(sub.txns),
				Reasoning: fmt.Sprintf("recurring $%.2f charge %q is consistently categorized as %s",
					float64(cents)/100, sub.key, cat.Name),
			})
		}
	}

	return suggestions, nil
}

// DateRecurrenceAnalyzer finds monthly or weekly cadences in normalized
// description groups and proposes their agreed category.
type DateRecurrenceAnalyzer struct{}

// NewDateRecurrenceAnalyzer creates a date recurrence analyzer.
func NewDateRecurrenceAnalyzer() *DateRecurrenceAnalyzer {
	return &DateRecurrenceAnalyzer{}
}

// Kind returns the analyzer kind.
func (a *DateRecurrenceAnalyzer) Kind() AnalyzerKind {
	return KindDateRecurrence
}

// Analyze classifies each description group's cadence as monthly
// (|avg-30| <= 5) or weekly (|avg-7| <= 2) and emits a suggestion scaled by
// 0.8 when at least two categorized members agree at 75% or better.
func (a *DateRecurrenceAnalyzer) Analyze(_ context.Context, input Input) ([]model.PatternSuggestion, error) {
	categories := input.CategoryByID()

	var suggestions []model.PatternSuggestion
	for _, sub := range groupByNormalizedDescription(input.Transactions, recurrenceMinGroup) {
		cadence := classifyCadence(sub.txns)
		if cadence == "" {
			continue
		}

		categoryID, agreement, agreeing := dominantCategory(sub.txns)
		if agreeing < minCategorizedAgreement || agreement < dateMinAgreement {
			continue
		}
		cat, ok := categories[categoryID]
		if !ok {
			continue
		}

		suggestions = append(suggestions, model.PatternSuggestion{
			CategoryID:     categoryID,
			CategoryName:   cat.Name,
			Pattern:        sub.key,
			Method:         model.MethodDateRecurrence,
			Confidence:     agreement * dateRecurrenceScale,
			TransactionIDs: transactionIDs(sub.txns),
			Reasoning: fmt.Sprintf("%s recurring charge %q is consistently categorized as %s",
				cadence, sub.key, cat.Name),
		})
	}

	return suggestions, nil
}

// classifyCadence returns "monthly", "weekly", or "" from the average gap
// between consecutive transactions.
func classifyCadence(txns []model.Transaction) string {
	if len(txns) < recurrenceMinGroup {
		return ""
	}

	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var totalDays float64
	for i := 1; i < len(sorted); i++ {
		totalDays += sorted[i].Date.Sub(sorted[i-1].Date).Hours() / 24
	}
	avg := totalDays / float64(len(sorted)-1)

	switch {
	case math.Abs(avg-30) <= 5:
		return "monthly"
	case math.Abs(avg-7) <= 2:
		return "weekly"
	default:
		return ""
	}
}

type descriptionGroup struct {
	key  string
	txns []model.Transaction
}

// groupByNormalizedDescription buckets transactions by digit-normalized
// description, dropping buckets smaller than minSize, in deterministic order.
func groupByNormalizedDescription(txns []model.Transaction, minSize int) []descriptionGroup {
	buckets := make(map[string][]model.Transaction)
	for _, txn := range txns {
		key := normalizeDescription(txn.EffectiveDescription())
		if key == "" {
			continue
		}
		buckets[key] = append(buckets[key], txn)
	}

	keys := make([]string, 0, len(buckets))
	for key, members := range buckets {
		if len(members) >= minSize {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	groups := make([]descriptionGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, descriptionGroup{key: key, txns: buckets[key]})
	}
	return groups
}

// dominantCategory returns the most common existing category in a group, the
// share of categorized members that agree with it, and how many agree.
func dominantCategory(txns []model.Transaction) (categoryID int, agreement float64, agreeing int) {
	counts := make(map[int]int)
	categorized := 0
	for _, txn := range txns {
		if txn.CategoryID != nil {
			counts[*txn.CategoryID]++
			categorized++
		}
	}
	if categorized == 0 {
		return 0, 0, 0
	}

	for id, count := range counts {
		if count > agreeing || (count == agreeing && id < categoryID) {
			categoryID, agreeing = id, count
		}
	}
	return categoryID, float64(agreeing) / float64(categorized), agreeing
}

func transactionIDs(txns []model.Transaction) []string {
	ids := make([]string, 0, len(txns))
	for _, txn := range txns {
		ids = append(ids, txn.ID)
	}
	return ids
}
