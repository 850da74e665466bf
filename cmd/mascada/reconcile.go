package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/ofx"
	"github.com/digaomatias/mymascada/internal/reconcile"
	"github.com/digaomatias/mymascada/internal/scoring"
	"github.com/digaomatias/mymascada/internal/service"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile transactions against a bank statement",
	}

	cmd.AddCommand(reconcileImportCmd())
	cmd.AddCommand(reconcileApproveCmd())
	cmd.AddCommand(reconcileStatusCmd())

	return cmd
}

func reconcileImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <statement.ofx>",
		Short: "Start a reconciliation session from an OFX/QFX statement",
		Long: `Parse a bank statement and match its entries against your recorded
transactions, exactly by bank transaction id first and fuzzily by amount and
date otherwise. The result is a pending session you review and approve.

Example:
  mascada reconcile import ~/Downloads/statement.qfx --account chase-checking`,
		Args: cobra.ExactArgs(1),
		RunE: runReconcileImport,
	}

	cmd.Flags().String("account", "", "account the statement belongs to (required)")
	cmd.Flags().String("label", "", "session label (default: statement file name)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runReconcileImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	userID, err := currentUserID()
	if err != nil {
		return err
	}
	accountID, _ := cmd.Flags().GetString("account")
	label, _ := cmd.Flags().GetString("label")
	if label == "" {
		label = args[0]
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open statement: %w", err)
	}
	defer f.Close()

	records, err := ofx.NewParser().ParseStatement(f)
	if err != nil {
		return fmt.Errorf("failed to parse statement: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("statement %s: %w", args[0], common.ErrNoTransactions)
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	allowed, err := store.HasAccountAccess(ctx, userID, accountID)
	if err != nil {
		return fmt.Errorf("failed to check account access: %w", err)
	}
	if !allowed {
		return fmt.Errorf("user %s has no access to account %s", userID, accountID)
	}

	transactions, err := store.GetTransactions(ctx, userID, service.TransactionFilter{AccountID: accountID})
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	rec := &model.Reconciliation{
		ID:        uuid.NewString(),
		AccountID: accountID,
		UserID:    userID,
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}

	items, err := reconcile.NewMatcher().Match(rec.ID, records, transactions)
	if err != nil {
		return fmt.Errorf("failed to match statement: %w", err)
	}

	if err := store.CreateReconciliation(ctx, rec); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if err := store.CreateReconciliationItems(ctx, items); err != nil {
		return fmt.Errorf("failed to save session items: %w", err)
	}

	matched, unmatchedBank, unmatchedApp := countItems(items)
	fmt.Printf("Session %s created:\n", rec.ID)
	fmt.Printf("  matched:        %d\n", matched)
	fmt.Printf("  bank-only:      %d\n", unmatchedBank)
	fmt.Printf("  app-only:       %d\n", unmatchedApp)
	fmt.Printf("\nApprove with: mascada reconcile approve %s\n", rec.ID)

	return nil
}

func reconcileApproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <session-id>",
		Short: "Bulk-approve matched items in a reconciliation session",
		Long: `Approve matched items: each linked transaction is enriched with the bank's
metadata, moved to RECONCILED, and the item is stamped approved. Re-running
is safe; already-approved items are skipped.

Examples:
  # Approve every matched item
  mascada reconcile approve 4f1c...

  # Only approve high-confidence matches
  mascada reconcile approve 4f1c... --threshold 0.9

  # Approve specific items
  mascada reconcile approve 4f1c... --items a1,b2`,
		Args: cobra.ExactArgs(1),
		RunE: runReconcileApprove,
	}

	cmd.Flags().Float64("threshold", -1, "only approve items at or above this match confidence")
	cmd.Flags().StringSlice("items", nil, "approve only these item ids")

	return cmd
}

func runReconcileApprove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	userID, err := currentUserID()
	if err != nil {
		return err
	}

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	itemIDs, _ := cmd.Flags().GetStringSlice("items")

	opts := reconcile.BulkApproveOptions{ItemIDs: itemIDs}
	if threshold >= 0 {
		opts.Threshold = &threshold
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := reconcile.NewApprover(store).BulkApprove(ctx, args[0], opts, userID)
	if err != nil {
		return err
	}

	fmt.Printf("Approved %d item(s), enriched %d, skipped %d.\n",
		result.ApprovedCount, result.EnrichedCount, result.SkippedCount)
	for _, itemErr := range result.Errors {
		fmt.Printf("  ! %s: %s\n", itemErr.ItemID, itemErr.Message)
	}

	return nil
}

func reconcileStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show a reconciliation session's items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.GetReconciliation(ctx, args[0])
			if err != nil {
				return err
			}
			items, err := store.GetReconciliationItems(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Session %s (%s) on account %s\n\n", rec.ID, rec.Label, rec.AccountID)
			for _, item := range items {
				status := "pending"
				if item.IsApproved {
					status = "approved"
				}
				confidence := "-"
				if item.MatchConfidence != nil {
					confidence = fmt.Sprintf("%.0f%%", *item.MatchConfidence*100)
				}
				fmt.Printf("  %s  %-14s  %-8s  conf %s%s\n",
					item.ID, item.ItemType, status, confidence, descriptionDrift(ctx, store, item))
			}
			return nil
		},
	}
}

// descriptionDrift flags fuzzy matches whose bank description has drifted
// far from the recorded one, so a reviewer can eyeball them first.
func descriptionDrift(ctx context.Context, store service.Storage, item model.ReconciliationItem) string {
	if item.ItemType != model.ItemMatched || item.MatchMethod != model.MatchFuzzy || item.TransactionID == nil {
		return ""
	}
	ref, err := reconcile.ParseBankReference(item.BankReferenceData)
	if err != nil || ref.Description == "" {
		return ""
	}
	txn, err := store.GetTransactionByID(ctx, *item.TransactionID)
	if err != nil {
		return ""
	}

	desc := txn.EffectiveDescription()
	distance := scoring.EditDistance(strings.ToUpper(desc), strings.ToUpper(ref.Description))
	longer := len(desc)
	if len(ref.Description) > longer {
		longer = len(ref.Description)
	}
	if longer == 0 || float64(distance)/float64(longer) <= 0.5 {
		return ""
	}
	return fmt.Sprintf("  (bank: %q)", ref.Description)
}

func countItems(items []model.ReconciliationItem) (matched, unmatchedBank, unmatchedApp int) {
	for _, item := range items {
		switch item.ItemType {
		case model.ItemMatched:
			matched++
		case model.ItemUnmatchedBank:
			unmatchedBank++
		case model.ItemUnmatchedApp:
			unmatchedApp++
		}
	}
	return matched, unmatchedBank, unmatchedApp
}
