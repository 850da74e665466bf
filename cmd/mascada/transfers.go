package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/digaomatias/mymascada/internal/service"
	"github.com/digaomatias/mymascada/internal/transfer"
)

func transfersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "Detect internal transfers between accounts",
		Long: `Scan transactions for pairs that are the two legs of a transfer between
your own accounts: exact amount, opposite signs, dates within three days.

Examples:
  # Preview detected transfer pairs
  mascada transfers

  # Link the detected pairs in the database
  mascada transfers --link`,
		RunE: runTransfers,
	}

	cmd.Flags().String("since", "", "only scan transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().Bool("link", false, "stamp each detected pair with a shared transfer id")

	return cmd
}

func runTransfers(cmd *cobra.Command, _ []string) error {
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
	link, _ := cmd.Flags().GetBool("link")

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	transactions, err := store.GetTransactions(ctx, userID, service.TransactionFilter{StartDate: startDate})
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	accounts, err := store.GetAccounts(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	result := transfer.NewDetector(accounts).Detect(transactions)

	if len(result.Groups) == 0 {
		fmt.Println("No transfer pairs detected.")
	} else {
		fmt.Printf("Detected %d transfer pair(s):\n\n", len(result.Groups))
		for i, group := range result.Groups {
			fmt.Printf("%2d. $%.2f  %s -> %s  (%.0f%% confidence)\n",
				i+1, group.Amount, group.Outgoing.AccountID, group.Incoming.AccountID,
				group.Confidence*100)
			fmt.Printf("    out: %s\n", describeTransaction(group.Outgoing))
			fmt.Printf("    in:  %s\n", describeTransaction(group.Incoming))
			for _, reason := range group.MatchReasons {
				fmt.Printf("    - %s\n", reason)
			}
		}
	}

	if len(result.Unmatched) > 0 {
		fmt.Printf("\n%d transaction(s) look transfer-like but have no counterpart:\n", len(result.Unmatched))
		for _, u := range result.Unmatched {
			fmt.Printf("  - %s (%s)\n", describeTransaction(u.Transaction), u.Reason)
			if u.SuggestedAccountID != "" {
				fmt.Printf("    possible destination: %s\n", u.SuggestedAccountID)
			}
		}
	}

	if !link || len(result.Groups) == 0 {
		return nil
	}

	linked := 0
	for _, group := range result.Groups {
		transferID := uuid.NewString()
		if err := store.SetTransferID(ctx, group.Outgoing.ID, transferID); err != nil {
			slog.Error("Failed to link outgoing leg",
				"transaction_id", group.Outgoing.ID,
				"error", err)
			continue
		}
		if err := store.SetTransferID(ctx, group.Incoming.ID, transferID); err != nil {
			slog.Error("Failed to link incoming leg",
				"transaction_id", group.Incoming.ID,
				"error", err)
			continue
		}
		linked++
	}

	fmt.Printf("\nLinked %d of %d pair(s).\n", linked, len(result.Groups))
	return nil
}
