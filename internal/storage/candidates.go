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

// CreateCandidates inserts a batch of pending candidates.
func (s *SQLiteStorage) CreateCandidates(ctx context.Context, candidates []model.CategorizationCandidate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categorization_candidates (
			id, transaction_id, category_id, method, confidence_score,
			reasoning, status, processed_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, cand := range candidates {
		if cand.Status == "" {
			cand.Status = model.CandidatePending
		}
		createdAt := cand.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		if _, err := stmt.ExecContext(ctx,
			cand.ID, cand.TransactionID, cand.CategoryID, string(cand.Method),
			cand.ConfidenceScore, cand.Reasoning, string(cand.Status),
			cand.ProcessedBy, createdAt, createdAt,
		); err != nil {
			return fmt.Errorf("failed to save candidate %s: %w", cand.ID, err)
		}
	}

	return tx.Commit()
}

// GetCandidateByID returns one candidate by id.
func (s *SQLiteStorage) GetCandidateByID(ctx context.Context, id string) (*model.CategorizationCandidate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, transaction_id, category_id, method, confidence_score,
			COALESCE(reasoning, ''), status, COALESCE(processed_by, ''),
			created_at, updated_at
		FROM categorization_candidates WHERE id = ?`, id)

	cand, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("candidate %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &cand, nil
}

// GetCandidatesByTransaction returns every candidate ever proposed for a
// transaction, newest first.
func (s *SQLiteStorage) GetCandidatesByTransaction(ctx context.Context, transactionID string) ([]model.CategorizationCandidate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, category_id, method, confidence_score,
			COALESCE(reasoning, ''), status, COALESCE(processed_by, ''),
			created_at, updated_at
		FROM categorization_candidates
		WHERE transaction_id = ?
		ORDER BY created_at DESC, id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []model.CategorizationCandidate
	for rows.Next() {
		cand, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, cand)
	}

	return candidates, rows.Err()
}

// UpdateCandidateStatus transitions a candidate, enforcing the state machine
// in the same statement: the update only lands if the stored status may
// legally transition to the new one.
func (s *SQLiteStorage) UpdateCandidateStatus(ctx context.Context, id string, status model.CandidateStatus, processedBy string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categorization_candidates
		SET status = ?, processed_by = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(status), processedBy, time.Now().UTC(), id, string(model.CandidatePending))
	if err != nil {
		return fmt.Errorf("failed to update candidate status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		// Either the candidate doesn't exist or it already left Pending.
		if _, getErr := s.GetCandidateByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("candidate %s: %w", id, common.ErrAlreadyProcessed)
	}
	return nil
}

func scanCandidate(row rowScanner) (model.CategorizationCandidate, error) {
	var cand model.CategorizationCandidate
	var method, status string

	err := row.Scan(
		&cand.ID, &cand.TransactionID, &cand.CategoryID, &method,
		&cand.ConfidenceScore, &cand.Reasoning, &status, &cand.ProcessedBy,
		&cand.CreatedAt, &cand.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cand, err
		}
		return cand, fmt.Errorf("failed to scan candidate: %w", err)
	}

	cand.Method = model.CategorizationMethod(method)
	cand.Status = model.CandidateStatus(status)
	return cand, nil
}
