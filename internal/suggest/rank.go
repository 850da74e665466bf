package suggest

import (
	"sort"

	"github.com/digaomatias/mymascada/internal/model"
)

// maxOverlapRatio is the largest matched-transaction overlap (measured
// against the smaller set) two accepted suggestions may share.
const maxOverlapRatio = 0.7

// RankAndDedup orders pooled suggestions by (confidence, matched count)
// descending, then walks the list accepting each suggestion unless it
// overlaps an already-accepted one by more than 70% of the smaller set.
// Suggestions under minConfidence are dropped; at most max are returned.
func RankAndDedup(suggestions []model.PatternSuggestion, max int, minConfidence float64) []model.PatternSuggestion {
	ranked := make([]model.PatternSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if s.Confidence >= minConfidence {
			ranked = append(ranked, s)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].MatchedCount() > ranked[j].MatchedCount()
	})

	var accepted []model.PatternSuggestion
	acceptedSets := make([]map[string]struct{}, 0)

	for _, candidate := range ranked {
		if max > 0 && len(accepted) >= max {
			break
		}

		candidateSet := idSet(candidate.TransactionIDs)
		overlapping := false
		for _, existing := range acceptedSets {
			if overlapRatio(candidateSet, existing) > maxOverlapRatio {
				overlapping = true
				break
			}
		}
		if overlapping {
			continue
		}

		accepted = append(accepted, candidate)
		acceptedSets = append(acceptedSets, candidateSet)
	}

	return accepted
}

// overlapRatio returns |a ∩ b| divided by the size of the smaller set.
func overlapRatio(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}

	intersection := 0
	for id := range smaller {
		if _, ok := larger[id]; ok {
			intersection++
		}
	}
	return float64(intersection) / float64(len(smaller))
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
