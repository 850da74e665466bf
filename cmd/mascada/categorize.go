package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/digaomatias/mymascada/internal/candidate"
	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/llm"
	"github.com/digaomatias/mymascada/internal/service"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Ask the configured LLM provider to categorize transactions",
		Long: `Send uncategorized transactions to the configured provider and store its
ranked suggestions as pending candidates. With --auto-apply, candidates at
or above the confidence threshold are applied immediately; the rest stay
pending for review.

Provider settings come from config (llm.provider, llm.api_key, llm.model)
or the matching MASCADA_ environment variables.`,
		RunE: runCategorize,
	}

	cmd.Flags().Int("limit", 50, "maximum transactions to send in one batch")
	cmd.Flags().Bool("auto-apply", false, "apply high-confidence suggestions without review")
	cmd.Flags().Float64("threshold", candidate.DefaultAutoApplyThreshold, "auto-apply confidence threshold")

	return cmd
}

func runCategorize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, err := currentUserID()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	autoApply, _ := cmd.Flags().GetBool("auto-apply")
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	client, err := llm.NewClient(llm.Config{
		Provider: viper.GetString("llm.provider"),
		APIKey:   viper.GetString("llm.api_key"),
		Model:    viper.GetString("llm.model"),
		Timeout:  viper.GetDuration("llm.timeout"),
	})
	if err != nil {
		return err
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	transactions, err := store.GetTransactions(ctx, userID, service.TransactionFilter{
		OnlyUnreviewed: true,
		Limit:          limit,
	})
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(transactions) == 0 {
		fmt.Println("Nothing to categorize.")
		return nil
	}

	categories, err := store.GetCategories(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	inputs := make([]llm.TransactionInput, 0, len(transactions))
	for _, txn := range transactions {
		inputs = append(inputs, llm.TransactionInput{
			ID:          txn.ID,
			Date:        txn.Date,
			Description: txn.EffectiveDescription(),
			Amount:      txn.Amount,
			Currency:    "USD",
		})
	}

	resp, err := client.SuggestCategories(ctx, inputs, categories)
	if err != nil {
		if common.IsRetryable(err) {
			return common.NewUserError("categorization provider is unavailable, try again shortly", err)
		}
		return err
	}

	candidates := llm.BuildCandidates(resp, userID, uuid.NewString)
	if err := store.CreateCandidates(ctx, candidates); err != nil {
		return fmt.Errorf("failed to save candidates: %w", err)
	}

	fmt.Printf("Stored %d candidate(s) for %d transaction(s).\n", len(candidates), len(resp.Results))
	fmt.Printf("Confidence: %d high, %d medium, %d low.\n",
		resp.Summary.HighConfidence, resp.Summary.MediumConfidence, resp.Summary.LowConfidence)

	if !autoApply {
		return nil
	}

	result := candidate.NewManager(store).AutoApply(ctx, candidates, userID, threshold)
	fmt.Printf("Auto-applied %d candidate(s); %d left pending.\n",
		result.AppliedCount, result.RemainingCount)

	return nil
}
