// Package scoring provides the pure similarity functions used by the
// transfer detector, the reconciliation matcher, and the suggestion pipeline.
package scoring

import "math"

// AmountScore rates how closely two absolute amounts agree, in [0, 1].
// Exact equality scores 1.0. Differences inside a tolerance of 0.5% of the
// larger amount (at least $1.00) decay exponentially but never below 0.8.
// Anything outside the tolerance scores 0.
func AmountScore(a, b float64) float64 {
	a = math.Abs(a)
	b = math.Abs(b)

	diff := math.Abs(a - b)
	if diff == 0 {
		return 1.0
	}

	tolerance := math.Max(math.Max(a, b)*0.005, 1.00)
	if diff > tolerance {
		return 0
	}

	score := math.Exp(-diff / (tolerance / 2))
	return math.Max(score, 0.8)
}

// AmountTolerance exposes the tolerance used by AmountScore so callers can
// report why a pair fell outside it.
func AmountTolerance(a, b float64) float64 {
	a = math.Abs(a)
	b = math.Abs(b)
	return math.Max(math.Max(a, b)*0.005, 1.00)
}
