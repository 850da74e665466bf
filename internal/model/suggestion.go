package model

// PatternSuggestion is the output of a pattern analyzer: a category proposal
// covering one or more transactions, with the evidence that produced it.
type PatternSuggestion struct {
	CategoryName   string
	Pattern        string // Token, regex, or normalized description that matched
	Reasoning      string
	Method         CategorizationMethod
	TransactionIDs []string
	CategoryID     int
	Confidence     float64
}

// MatchedCount returns the number of transactions the suggestion covers.
func (s *PatternSuggestion) MatchedCount() int {
	return len(s.TransactionIDs)
}
