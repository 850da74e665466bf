package model

import "math"

// TransactionStats aggregates a set of transactions for display.
// Total sums absolute amounts so expenses and income don't cancel out.
type TransactionStats struct {
	Count   int
	Total   float64
	Average float64
}

// ComputeTransactionStats calculates summary statistics over a transaction set.
func ComputeTransactionStats(txns []Transaction) TransactionStats {
	stats := TransactionStats{Count: len(txns)}
	for _, t := range txns {
		stats.Total += math.Abs(t.Amount)
	}
	if stats.Count > 0 {
		stats.Average = stats.Total / float64(stats.Count)
	}
	return stats
}
