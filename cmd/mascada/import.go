package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/ofx"
	"github.com/digaomatias/mymascada/internal/reconcile"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX files exported from your bank.
Duplicate entries are detected by content hash and skipped.

Examples:
  mascada import ~/Downloads/statement.qfx --account chase-checking
  mascada import ~/Downloads/chase_*.qfx --account chase-checking`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("account", "", "account to import into (default: account id from the statement)")
	cmd.Flags().Bool("dry-run", false, "preview without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if _, err := currentUserID(); err != nil {
		return err
	}
	accountID, _ := cmd.Flags().GetString("account")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	parser := ofx.NewParser()
	var transactions []model.Transaction
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		records, err := parser.ParseStatement(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for _, record := range records {
			transactions = append(transactions, recordTransaction(record, accountID))
		}
		fmt.Printf("  %s: %d transaction(s)\n", filepath.Base(path), len(records))
	}

	if len(transactions) == 0 {
		return common.NewUserError("no transactions found in the given files", common.ErrNoTransactions)
	}

	stats := model.ComputeTransactionStats(transactions)
	fmt.Printf("Parsed %d transaction(s), total $%.2f, average $%.2f.\n",
		stats.Count, stats.Total, stats.Average)

	if dryRun {
		fmt.Println("Dry run, nothing saved.")
		return nil
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveTransactions(ctx, transactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	fmt.Println("Saved. Duplicates, if any, were skipped by hash.")
	return nil
}

// recordTransaction converts a statement entry into a new pending
// transaction. The explicit account flag wins over the statement's own
// account id.
func recordTransaction(record reconcile.BankRecord, accountID string) model.Transaction {
	if accountID == "" {
		accountID = record.AccountID
	}

	txn := model.Transaction{
		ID:              uuid.NewString(),
		AccountID:       accountID,
		Date:            record.Date,
		Amount:          record.Amount,
		Description:     record.Description,
		ExternalID:      record.ExternalID,
		ReferenceNumber: record.ReferenceNumber,
		BankCategory:    record.BankCategory,
		Status:          model.TransactionPending,
	}
	txn.Hash = txn.GenerateHash()
	return txn
}
