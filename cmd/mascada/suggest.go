package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/service"
	"github.com/digaomatias/mymascada/internal/suggest"
)

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Mine transactions for category rule suggestions",
		Long: `Run the pattern analyzers over your transaction history and print ranked
category suggestions. Each suggestion names the pattern that matched, the
proposed category, and the transactions it covers.

Examples:
  # Suggest rules from the last 90 days
  mascada suggest --since 2026-06-01

  # Persist the suggestions as pending candidates for review
  mascada suggest --save`,
		RunE: runSuggest,
	}

	cmd.Flags().String("since", "", "only analyze transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("account", "", "restrict analysis to one account")
	cmd.Flags().Int("max", 20, "maximum suggestions to keep after ranking")
	cmd.Flags().Float64("min-confidence", 0.5, "drop suggestions below this confidence")
	cmd.Flags().Bool("save", false, "persist accepted suggestions as pending candidates")

	return cmd
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, err := currentUserID()
	if err != nil {
		return err
	}

	since, _ := cmd.Flags().GetString("since")
	startDate, err := parseDateFlag(since)
	if err != nil {
		return err
	}
	accountID, _ := cmd.Flags().GetString("account")
	maxSuggestions, _ := cmd.Flags().GetInt("max")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	save, _ := cmd.Flags().GetBool("save")

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	input, err := loadAnalyzerInput(ctx, store, userID, service.TransactionFilter{
		StartDate: startDate,
		AccountID: accountID,
	})
	if err != nil {
		return err
	}
	if len(input.Transactions) == 0 {
		fmt.Println("No transactions to analyze.")
		return nil
	}

	pooled := suggest.DefaultRunner().GenerateCandidates(ctx, input)
	accepted := suggest.RankAndDedup(pooled, maxSuggestions, minConfidence)

	if len(accepted) == 0 {
		fmt.Println("No suggestions met the confidence bar.")
		return nil
	}

	fmt.Printf("Found %d suggestion(s) from %d transactions:\n\n", len(accepted), len(input.Transactions))
	for i, s := range accepted {
		fmt.Printf("%2d. [%s] %s -> %s (%.0f%% confidence, %d transactions)\n",
			i+1, s.Method, s.Pattern, s.CategoryName, s.Confidence*100, s.MatchedCount())
		if s.Reasoning != "" {
			fmt.Printf("    %s\n", s.Reasoning)
		}
	}

	if !save {
		return nil
	}

	candidates := suggestionCandidates(accepted, userID)
	if err := store.CreateCandidates(ctx, candidates); err != nil {
		return fmt.Errorf("failed to save candidates: %w", err)
	}
	fmt.Printf("\nSaved %d pending candidate(s). Review with: mascada candidates list\n", len(candidates))

	return nil
}

// suggestionCandidates fans each suggestion out into one pending candidate
// per covered transaction.
func suggestionCandidates(suggestions []model.PatternSuggestion, processedBy string) []model.CategorizationCandidate {
	now := time.Now().UTC()
	var candidates []model.CategorizationCandidate
	for _, s := range suggestions {
		for _, txnID := range s.TransactionIDs {
			candidates = append(candidates, model.CategorizationCandidate{
				ID:              uuid.NewString(),
				TransactionID:   txnID,
				CategoryID:      s.CategoryID,
				Method:          s.Method,
				ConfidenceScore: s.Confidence,
				Reasoning:       s.Reasoning,
				Status:          model.CandidatePending,
				ProcessedBy:     processedBy,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
		}
	}
	return candidates
}
