package suggest

import (
	"context"
	"sort"
	"sync"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
)

// Runner fans the analyzer set out over one immutable input snapshot and
// pools their suggestions. A failing analyzer is isolated: its error is
// logged and the remaining analyzers' output is still used.
type Runner struct {
	analyzers []Analyzer
}

// NewRunner creates a runner over the given analyzers.
func NewRunner(analyzers ...Analyzer) *Runner {
	return &Runner{analyzers: analyzers}
}

// DefaultRunner creates a runner with the four standard pattern analyzers.
func DefaultRunner() *Runner {
	return NewRunner(
		NewKeywordAnalyzer(),
		NewMerchantAnalyzer(),
		NewAmountRecurrenceAnalyzer(),
		NewDateRecurrenceAnalyzer(),
	)
}

// GenerateCandidates runs every analyzer concurrently and returns the pooled
// suggestions in a deterministic order.
func (r *Runner) GenerateCandidates(ctx context.Context, input Input) []model.PatternSuggestion {
	type result struct {
		kind        AnalyzerKind
		suggestions []model.PatternSuggestion
		err         error
	}

	results := make(chan result, len(r.analyzers))
	var wg sync.WaitGroup

	for _, analyzer := range r.analyzers {
		wg.Add(1)
		go func(a Analyzer) {
			defer wg.Done()
			suggestions, err := a.Analyze(ctx, input)
			results <- result{kind: a.Kind(), suggestions: suggestions, err: err}
		}(analyzer)
	}

	wg.Wait()
	close(results)

	var pooled []model.PatternSuggestion
	for res := range results {
		if res.err != nil {
			common.LogError(res.err, "Analyzer failed, skipping its output",
				common.Fields{"analyzer": res.kind})
			continue
		}
		pooled = append(pooled, res.suggestions...)
	}

	// Channel drain order is nondeterministic; restore a stable order.
	sort.SliceStable(pooled, func(i, j int) bool {
		if pooled[i].Method != pooled[j].Method {
			return pooled[i].Method < pooled[j].Method
		}
		if pooled[i].Confidence != pooled[j].Confidence {
			return pooled[i].Confidence > pooled[j].Confidence
		}
		return pooled[i].Pattern < pooled[j].Pattern
	})

	return pooled
}
