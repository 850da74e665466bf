package scoring

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// transferKeywords indicate the description is talking about moving money
// between accounts.
var transferKeywords = []string{"transfer", "xfer", "internal", "between", "payment"}

// accountTypeKeywords are account descriptors that, when shared by both
// descriptions, suggest the two sides reference the same pair of accounts.
var accountTypeKeywords = []string{
	"visa", "savings", "checking", "chequing", "credit", "debit",
	"mastercard", "amex", "loan", "mortgage",
}

// DescriptionSimilarity rates two transaction descriptions in [0, 1] using a
// token-set Jaccard index, with a +0.3 bonus when either side mentions a
// transfer keyword and +0.2 when both sides share an account-type keyword.
func DescriptionSimilarity(a, b string) float64 {
	aTokens := tokenSet(a)
	bTokens := tokenSet(b)

	score := jaccard(aTokens, bTokens)

	aLower := strings.ToLower(a)
	bLower := strings.ToLower(b)

	if containsAny(aLower, transferKeywords) || containsAny(bLower, transferKeywords) {
		score += 0.3
	}

	if sharesKeyword(aLower, bLower, accountTypeKeywords) {
		score += 0.2
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// EditDistance returns the Levenshtein distance between two descriptions.
// Used for display-level diffing of bank vs. system descriptions, never
// for ranking.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func sharesKeyword(a, b string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(a, kw) && strings.Contains(b, kw) {
			return true
		}
	}
	return false
}
