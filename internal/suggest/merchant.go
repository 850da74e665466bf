package suggest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
)

const (
	merchantMinMatches = 2
	merchantConfidence = 0.85
)

// merchantRule maps a description regex to a category name.
type merchantRule struct {
	Name     string
	Regex    string
	Category string
}

// defaultMerchantRules is the fixed table of well-known merchant patterns.
func defaultMerchantRules() []merchantRule {
	return []merchantRule{
		{Name: "ATM Withdrawal", Regex: `\b(ATM|CASH\s*WITHDRAWAL)\b`, Category: "Cash"},
		{Name: "Fuel", Regex: `\b(SHELL|CALTEX|BP|MOBIL|GULL|FUEL|PETROL)\b`, Category: "Transport"},
		{Name: "Grocery Chain", Regex: `\b(COUNTDOWN|WOOLWORTHS|PAK\s*N\s*SAVE|NEW\s*WORLD|ALDI|COLES|SAFEWAY|KROGER)\b`, Category: "Groceries"},
		{Name: "Streaming", Regex: `\b(NETFLIX|SPOTIFY|DISNEY|HULU|YOUTUBE\s*PREMIUM)\b`, Category: "Entertainment"},
		{Name: "Rideshare", Regex: `\b(UBER|LYFT|OLA)\b`, Category: "Transport"},
		{Name: "Coffee", Regex: `\b(STARBUCKS|COFFEE|ESPRESSO|CAFE)\b`, Category: "Dining"},
		{Name: "Pharmacy", Regex: `\b(PHARMACY|CHEMIST|WALGREENS|CVS)\b`, Category: "Health"},
		{Name: "Fast Food", Regex: `\b(MCDONALD|BURGER\s*KING|KFC|SUBWAY|DOMINO)\b`, Category: "Dining"},
		{Name: "Utilities", Regex: `\b(POWER|ELECTRIC|WATER\s*BILL|GAS\s*BILL|BROADBAND|VODAFONE|SPARK)\b`, Category: "Utilities"},
	}
}

// MerchantAnalyzer matches transactions against a fixed table of merchant
// regex rules and proposes high-confidence category suggestions.
type MerchantAnalyzer struct {
	rules    []merchantRule
	compiled []*regexp.Regexp
}

// NewMerchantAnalyzer creates a merchant pattern analyzer with the default
// rule table.
func NewMerchantAnalyzer() *MerchantAnalyzer {
	rules := defaultMerchantRules()
	compiled := make([]*regexp.Regexp, len(rules))
	for i, r := range rules {
		compiled[i] = regexp.MustCompile("(?i)" + r.Regex)
	}
	return &MerchantAnalyzer{rules: rules, compiled: compiled}
}

// Kind returns the analyzer kind.
func (a *MerchantAnalyzer) Kind() AnalyzerKind {
	return KindMerchantPattern
}

// Analyze emits a suggestion for every table rule matching at least two
// transactions that isn't already covered by a user-defined rule.
func (a *MerchantAnalyzer) Analyze(_ context.Context, input Input) ([]model.PatternSuggestion, error) {
	byName := input.CategoryByName()

	var suggestions []model.PatternSuggestion
	for i, rule := range a.rules {
		cat, ok := byName[normalizeKey(rule.Category)]
		if !ok {
			// The user has no matching category for this table entry.
			continue
		}

		var matched []string
		var sample string
		for _, txn := range input.Transactions {
			desc := txn.EffectiveDescription()
			if a.compiled[i].MatchString(desc) {
				matched = append(matched, txn.ID)
				if sample == "" {
					sample = desc
				}
			}
		}
		if len(matched) < merchantMinMatches {
			continue
		}

		if coveredByUserRule(input.Rules, cat.ID, sample) {
			continue
		}

		suggestions = append(suggestions, model.PatternSuggestion{
			CategoryID:     cat.ID,
			CategoryName:   cat.Name,
			Pattern:        rule.Regex,
			Method:         model.MethodMerchantPattern,
			Confidence:     merchantConfidence,
			TransactionIDs: matched,
			Reasoning: fmt.Sprintf("%d transactions match the %s pattern, usually categorized as %s",
				len(matched), rule.Name, cat.Name),
		})
	}

	return suggestions, nil
}

// coveredByUserRule reports whether an active user rule already maps a
// matching description to the same category.
func coveredByUserRule(rules []model.CategoryRule, categoryID int, description string) bool {
	desc := strings.ToLower(description)
	for _, rule := range rules {
		if !rule.IsActive || rule.CategoryID != categoryID {
			continue
		}
		if rule.IsRegex {
			if ok, err := common.MatchRegex("(?i)"+rule.Pattern, description); err == nil && ok {
				return true
			}
			continue
		}
		if strings.Contains(desc, strings.ToLower(rule.Pattern)) {
			return true
		}
	}
	return false
}
