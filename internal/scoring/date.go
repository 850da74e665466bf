package scoring

import (
	"math"
	"time"
)

// DateScore rates how plausibly two dates belong to the same event, in [0, 1].
// The acceptance window widens with the amount involved (larger transfers
// settle slower) and narrows when both sides are at the same institution:
// window = min(14, (3 or 5) + min(amount/1000, 9)) days. Same-day pairs score
// 1.0; pairs inside the window decay exponentially but never below 0.5.
func DateScore(d1, d2 time.Time, amount float64, sameInstitution bool) float64 {
	daysDiff := math.Abs(d1.Sub(d2).Hours() / 24)
	if daysDiff == 0 {
		return 1.0
	}

	base := 5.0
	if sameInstitution {
		base = 3.0
	}

	window := math.Min(14, base+math.Min(math.Abs(amount)/1000, 9))
	if daysDiff > window {
		return 0
	}

	score := math.Exp(-daysDiff / (window / 2))
	return math.Max(score, 0.5)
}

// DaysBetween returns the absolute calendar-day distance between two dates,
// ignoring time of day.
func DaysBetween(d1, d2 time.Time) int {
	t1 := time.Date(d1.Year(), d1.Month(), d1.Day(), 0, 0, 0, 0, time.UTC)
	t2 := time.Date(d2.Year(), d2.Month(), d2.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Abs(t1.Sub(t2).Hours() / 24))
}
