// Package candidate implements the categorization candidate lifecycle:
// applying or rejecting proposed pairings, singly or in batches, with
// per-item failure isolation and an append-only audit trail.
package candidate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/service"
)

// DefaultAutoApplyThreshold is the minimum confidence for unattended apply.
const DefaultAutoApplyThreshold = 0.95

// Store is the persistence capability the manager needs.
type Store interface {
	service.CandidateStore
	UpdateTransactionCategory(ctx context.Context, id string, categoryID int, autoCategorized bool) error
}

// Manager drives candidate status transitions. Candidates are mutated only
// through Apply/Reject; they are never deleted.
type Manager struct {
	store Store
}

// NewManager creates a lifecycle manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Apply commits a pending candidate: the linked transaction receives the
// candidate's category and the auto-categorized flag, then the candidate
// transitions to Applied. Applying a non-pending candidate fails without
// touching the transaction.
func (m *Manager) Apply(ctx context.Context, candidateID, actor string) error {
	cand, err := m.store.GetCandidateByID(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("failed to load candidate %s: %w", candidateID, err)
	}

	if err := model.ValidateTransition(cand.Status, model.CandidateApplied); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidState, err)
	}

	if err := m.store.UpdateTransactionCategory(ctx, cand.TransactionID, cand.CategoryID, true); err != nil {
		return fmt.Errorf("failed to categorize transaction %s: %w", cand.TransactionID, err)
	}

	if err := m.store.UpdateCandidateStatus(ctx, candidateID, model.CandidateApplied, actor); err != nil {
		return fmt.Errorf("failed to mark candidate applied: %w", err)
	}

	slog.Info("Applied categorization candidate",
		"candidate_id", candidateID,
		"transaction_id", cand.TransactionID,
		"category_id", cand.CategoryID,
		"method", cand.Method,
		"actor", actor)

	return nil
}

// Reject transitions a pending candidate to Rejected. The linked transaction
// is untouched.
func (m *Manager) Reject(ctx context.Context, candidateID, actor string) error {
	cand, err := m.store.GetCandidateByID(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("failed to load candidate %s: %w", candidateID, err)
	}

	if err := model.ValidateTransition(cand.Status, model.CandidateRejected); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidState, err)
	}

	if err := m.store.UpdateCandidateStatus(ctx, candidateID, model.CandidateRejected, actor); err != nil {
		return fmt.Errorf("failed to mark candidate rejected: %w", err)
	}

	return nil
}

// BatchError records one failed item inside a batch operation.
type BatchError struct {
	CandidateID string
	Message     string
}

// BatchResult reports per-item outcomes of a batch operation. One item's
// failure never aborts its siblings.
type BatchResult struct {
	Errors          []BatchError
	SuccessfulCount int
	FailedCount     int
}

// ApplyBatch applies each candidate independently, collecting failures.
func (m *Manager) ApplyBatch(ctx context.Context, candidateIDs []string, actor string) *BatchResult {
	return m.processBatch(ctx, candidateIDs, actor, m.Apply)
}

// RejectBatch rejects each candidate independently, collecting failures.
func (m *Manager) RejectBatch(ctx context.Context, candidateIDs []string, actor string) *BatchResult {
	return m.processBatch(ctx, candidateIDs, actor, m.Reject)
}

func (m *Manager) processBatch(ctx context.Context, candidateIDs []string, actor string, op func(context.Context, string, string) error) *BatchResult {
	result := &BatchResult{}
	for _, id := range candidateIDs {
		if err := op(ctx, id, actor); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, BatchError{CandidateID: id, Message: err.Error()})
			continue
		}
		result.SuccessfulCount++
	}
	return result
}

// AutoApplyResult reports the outcome of an unattended apply pass.
type AutoApplyResult struct {
	TransactionIDs []string
	AppliedCount   int
	RemainingCount int
}

// AutoApply applies only candidates whose confidence meets the threshold,
// intended for trusted high-precision sources. Candidates below the
// threshold are left pending; affected transaction ids are returned for
// downstream notification.
func (m *Manager) AutoApply(ctx context.Context, candidates []model.CategorizationCandidate, actor string, threshold float64) *AutoApplyResult {
	if threshold <= 0 {
		threshold = DefaultAutoApplyThreshold
	}

	result := &AutoApplyResult{}
	for _, cand := range candidates {
		if cand.ConfidenceScore < threshold {
			result.RemainingCount++
			continue
		}

		if err := m.Apply(ctx, cand.ID, actor); err != nil {
			slog.Warn("Auto-apply skipped candidate",
				"candidate_id", cand.ID,
				"error", err)
			result.RemainingCount++
			continue
		}

		result.AppliedCount++
		result.TransactionIDs = append(result.TransactionIDs, cand.TransactionID)
	}

	return result
}
