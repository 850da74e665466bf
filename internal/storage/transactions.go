package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/service"
)

const transactionColumns = `id, hash, date, description, COALESCE(user_description, ''),
	amount, account_id, category_id, status, is_reviewed, auto_categorized,
	transfer_id, COALESCE(external_id, ''), COALESCE(reference_number, ''), COALESCE(bank_category, '')`

// SaveTransactions inserts transactions, skipping duplicates by hash.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(transactions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			id, hash, date, description, user_description, amount, account_id,
			category_id, status, is_reviewed, auto_categorized, transfer_id,
			external_id, reference_number, bank_category
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		txn := &transactions[i]
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}
		if txn.Status == "" {
			txn.Status = model.TransactionPending
		}

		if _, err := stmt.ExecContext(ctx,
			txn.ID, txn.Hash, txn.Date, txn.Description, nullString(txn.UserDescription),
			txn.Amount, txn.AccountID, txn.CategoryID, string(txn.Status),
			txn.IsReviewed, txn.AutoCategorized, txn.TransferID,
			nullString(txn.ExternalID), nullString(txn.ReferenceNumber), nullString(txn.BankCategory),
		); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransactions returns a user's transactions matching the filter.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, userID string, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE account_id IN (SELECT id FROM accounts WHERE user_id = ?)`, transactionColumns)
	args := []any{userID}

	var conditions []string
	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.AccountID != "" {
		conditions = append(conditions, "account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.OnlyUnreviewed {
		conditions = append(conditions, "is_reviewed = 0")
	}
	if !filter.IncludeDeleted {
		conditions = append(conditions, "status != ?")
		args = append(args, string(model.TransactionCancelled))
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// GetTransactionByID returns one transaction by id.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM transactions WHERE id = ?`, transactionColumns), id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// UpdateTransactionCategory sets the transaction's category and the
// auto-categorized flag.
func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, id string, categoryID int, autoCategorized bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET category_id = ?, auto_categorized = ? WHERE id = ?`,
		categoryID, autoCategorized, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction category: %w", err)
	}
	return requireRow(result, id)
}

// UpdateTransactionStatus moves a transaction to a new lifecycle status.
func (s *SQLiteStorage) UpdateTransactionStatus(ctx context.Context, id string, status model.TransactionStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	return requireRow(result, id)
}

// EnrichTransaction writes bank-sourced metadata onto a transaction. The bank
// category is staged for later pipeline processing, not applied directly.
func (s *SQLiteStorage) EnrichTransaction(ctx context.Context, id, externalID, referenceNumber, bankCategory string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET external_id = ?, reference_number = ?, bank_category = ?
		WHERE id = ?`,
		nullString(externalID), nullString(referenceNumber), nullString(bankCategory), id)
	if err != nil {
		return fmt.Errorf("failed to enrich transaction: %w", err)
	}
	return requireRow(result, id)
}

// SetTransferID links a transaction to a transfer group.
func (s *SQLiteStorage) SetTransferID(ctx context.Context, id, transferID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET transfer_id = ? WHERE id = ?`, transferID, id)
	if err != nil {
		return fmt.Errorf("failed to set transfer id: %w", err)
	}
	return requireRow(result, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var txn model.Transaction
	var status string
	var categoryID sql.NullInt64
	var transferID sql.NullString
	var date time.Time

	err := row.Scan(
		&txn.ID, &txn.Hash, &date, &txn.Description, &txn.UserDescription,
		&txn.Amount, &txn.AccountID, &categoryID, &status, &txn.IsReviewed,
		&txn.AutoCategorized, &transferID, &txn.ExternalID, &txn.ReferenceNumber,
		&txn.BankCategory,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return txn, err
		}
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Date = date
	txn.Status = model.TransactionStatus(status)
	if categoryID.Valid {
		id := int(categoryID.Int64)
		txn.CategoryID = &id
	}
	if transferID.Valid {
		id := transferID.String
		txn.TransferID = &id
	}
	return txn, nil
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
