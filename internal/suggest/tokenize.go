package suggest

import (
	"strings"
	"unicode"
)

// stopWords are high-frequency description words that carry no merchant signal.
var stopWords = map[string]struct{}{
	"THE": {}, "AND": {}, "FOR": {}, "FROM": {}, "WITH": {},
	"PAYMENT": {}, "PURCHASE": {}, "POS": {}, "DEBIT": {}, "CREDIT": {},
	"CARD": {}, "ONLINE": {}, "TRANSACTION": {}, "AUTH": {}, "PENDING": {},
	"DATE": {}, "REF": {}, "TRANSFER": {},
}

// maxTokensPerTransaction bounds how many distinct tokens one transaction
// contributes to keyword grouping.
const maxTokensPerTransaction = 5

// tokenize splits a description into significant uppercase tokens: punctuation
// stripped, stop words and tokens of three characters or fewer dropped, at
// most maxTokensPerTransaction distinct tokens kept in order of appearance.
func tokenize(description string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToUpper(description))

	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 3 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
		if len(tokens) == maxTokensPerTransaction {
			break
		}
	}
	return tokens
}

// normalizeDescription collapses digit runs to a placeholder so recurring
// charges with varying invoice numbers group together.
func normalizeDescription(description string) string {
	var b strings.Builder
	inDigits := false
	for _, r := range strings.ToUpper(strings.TrimSpace(description)) {
		if unicode.IsDigit(r) {
			if !inDigits {
				b.WriteRune('#')
				inDigits = true
			}
			continue
		}
		inDigits = false
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
