package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
)

// CreateReconciliation starts a reconciliation session.
func (s *SQLiteStorage) CreateReconciliation(ctx context.Context, rec *model.Reconciliation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(rec.ID, "reconciliation id"); err != nil {
		return err
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reconciliations (id, account_id, user_id, label, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.AccountID, rec.UserID, rec.Label, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reconciliation: %w", err)
	}
	return nil
}

// GetReconciliation returns one session by id.
func (s *SQLiteStorage) GetReconciliation(ctx context.Context, id string) (*model.Reconciliation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var rec model.Reconciliation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, user_id, COALESCE(label, ''), created_at
		FROM reconciliations WHERE id = ?`, id).
		Scan(&rec.ID, &rec.AccountID, &rec.UserID, &rec.Label, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reconciliation %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciliation: %w", err)
	}
	return &rec, nil
}

// CreateReconciliationItems inserts a session's items.
func (s *SQLiteStorage) CreateReconciliationItems(ctx context.Context, items []model.ReconciliationItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reconciliation_items (
			id, reconciliation_id, item_type, match_method, transaction_id,
			match_confidence, bank_reference_data, is_approved, approved_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range items {
		createdAt := item.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			item.ID, item.ReconciliationID, string(item.ItemType),
			nullString(string(item.MatchMethod)), item.TransactionID,
			item.MatchConfidence, nullString(item.BankReferenceData),
			item.IsApproved, item.ApprovedAt, createdAt,
		); err != nil {
			return fmt.Errorf("failed to save reconciliation item %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// GetReconciliationItems returns a session's items in creation order.
func (s *SQLiteStorage) GetReconciliationItems(ctx context.Context, reconciliationID string) ([]model.ReconciliationItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reconciliation_id, item_type, COALESCE(match_method, ''),
			transaction_id, match_confidence, COALESCE(bank_reference_data, ''),
			is_approved, approved_at, created_at
		FROM reconciliation_items
		WHERE reconciliation_id = ?
		ORDER BY created_at, id`, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.ReconciliationItem
	for rows.Next() {
		var item model.ReconciliationItem
		var itemType, matchMethod string
		var transactionID sql.NullString
		var confidence sql.NullFloat64
		var approvedAt sql.NullTime

		if err := rows.Scan(&item.ID, &item.ReconciliationID, &itemType, &matchMethod,
			&transactionID, &confidence, &item.BankReferenceData,
			&item.IsApproved, &approvedAt, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation item: %w", err)
		}

		item.ItemType = model.ReconciliationItemType(itemType)
		item.MatchMethod = model.MatchMethod(matchMethod)
		if transactionID.Valid {
			id := transactionID.String
			item.TransactionID = &id
		}
		if confidence.Valid {
			c := confidence.Float64
			item.MatchConfidence = &c
		}
		if approvedAt.Valid {
			t := approvedAt.Time
			item.ApprovedAt = &t
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// MarkItemApproved stamps an item approved. Items already approved are left
// untouched so approval is idempotent.
func (s *SQLiteStorage) MarkItemApproved(ctx context.Context, itemID string, approvedAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE reconciliation_items
		SET is_approved = 1, approved_at = ?
		WHERE id = ? AND is_approved = 0`, approvedAt, itemID)
	if err != nil {
		return fmt.Errorf("failed to mark item approved: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("reconciliation item %s: %w", itemID, common.ErrAlreadyProcessed)
	}
	return nil
}
