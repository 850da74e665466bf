package main

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/digaomatias/mymascada/internal/candidate"
)

func candidatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Review pending categorization candidates",
	}

	cmd.AddCommand(candidatesListCmd())
	cmd.AddCommand(candidatesApplyCmd())
	cmd.AddCommand(candidatesRejectCmd())

	return cmd
}

func candidatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <transaction-id>",
		Short: "List a transaction's candidates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			candidates, err := store.GetCandidatesByTransaction(ctx, args[0])
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				fmt.Println("No candidates for this transaction.")
				return nil
			}

			for _, c := range candidates {
				fmt.Printf("%s  %-18s  category %d  %.0f%%  %s\n",
					c.ID, c.Method, c.CategoryID, c.ConfidenceScore*100, c.Status)
				if c.Reasoning != "" {
					fmt.Printf("  %s\n", c.Reasoning)
				}
			}
			return nil
		},
	}
}

func candidatesApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <candidate-id>...",
		Short: "Apply candidates to their transactions",
		Long: `Apply each candidate: the linked transaction receives the candidate's
category and the candidate is marked APPLIED. One candidate's failure never
stops the rest of the batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCandidateBatch(cmd.Context(), args, "apply")
		},
	}
}

func candidatesRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <candidate-id>...",
		Short: "Reject candidates, leaving their transactions untouched",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCandidateBatch(cmd.Context(), args, "reject")
		},
	}
}

func runCandidateBatch(ctx context.Context, candidateIDs []string, verb string) error {
	userID, err := currentUserID()
	if err != nil {
		return err
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	manager := candidate.NewManager(store)
	op := manager.Apply
	if verb == "reject" {
		op = manager.Reject
	}

	bar := batchProgressBar(len(candidateIDs), verb)

	result := &candidate.BatchResult{}
	for _, id := range candidateIDs {
		if err := op(ctx, id, userID); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, candidate.BatchError{CandidateID: id, Message: err.Error()})
		} else {
			result.SuccessfulCount++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Printf("\n%d succeeded, %d failed.\n", result.SuccessfulCount, result.FailedCount)
	for _, batchErr := range result.Errors {
		fmt.Printf("  ! %s: %s\n", batchErr.CandidateID, batchErr.Message)
	}

	return nil
}

func batchProgressBar(total int, verb string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("Processing %s batch...", verb)),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}
