package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/service"
)

// Store is the persistence capability the approver needs.
type Store interface {
	service.ReconciliationStore
	EnrichTransaction(ctx context.Context, id, externalID, referenceNumber, bankCategory string) error
	UpdateTransactionStatus(ctx context.Context, id string, status model.TransactionStatus) error
	HasAccountAccess(ctx context.Context, userID, accountID string) (bool, error)
}

// Approver drives the bulk approval workflow over a reconciliation session.
type Approver struct {
	store Store
}

// NewApprover creates an approver over the given store.
func NewApprover(store Store) *Approver {
	return &Approver{store: store}
}

// BulkApproveOptions selects which matched items to approve: every item at
// or above Threshold, or an explicit id list. ItemIDs wins when both are set.
type BulkApproveOptions struct {
	Threshold *float64
	ItemIDs   []string
}

// ItemError records one failed item inside a bulk approval.
type ItemError struct {
	ItemID  string
	Message string
}

// BulkApproveResult reports the outcome of a bulk approval run.
type BulkApproveResult struct {
	Errors        []ItemError
	ApprovedCount int
	EnrichedCount int
	SkippedCount  int
}

// BulkApprove approves eligible matched items in a reconciliation session.
// For each item it parses the bank reference payload, enriches the linked
// transaction with bank metadata (the bank category is staged for later
// pipeline processing, not applied as the transaction's category), moves the
// transaction to Reconciled, and stamps the item approved.
//
// Already-approved and unmatched items are silently skipped so re-running is
// idempotent. Session-level validation happens before any mutation.
func (a *Approver) BulkApprove(ctx context.Context, reconciliationID string, opts BulkApproveOptions, actorUserID string) (*BulkApproveResult, error) {
	rec, err := a.store.GetReconciliation(ctx, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("reconciliation %s: %w", reconciliationID, err)
	}

	allowed, err := a.store.HasAccountAccess(ctx, actorUserID, rec.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to check account access: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: user %s cannot modify account %s",
			common.ErrAccessDenied, actorUserID, rec.AccountID)
	}

	items, err := a.store.GetReconciliationItems(ctx, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reconciliation items: %w", err)
	}

	eligible := selectItems(items, opts)

	result := &BulkApproveResult{}
	for _, item := range eligible {
		if !item.Approvable() {
			result.SkippedCount++
			continue
		}

		if err := a.approveItem(ctx, item, result); err != nil {
			result.Errors = append(result.Errors, ItemError{ItemID: item.ID, Message: err.Error()})
		}
	}

	common.LogInfo("Bulk approval finished", common.Fields{
		"reconciliation_id": reconciliationID,
		"approved":          result.ApprovedCount,
		"enriched":          result.EnrichedCount,
		"skipped":           result.SkippedCount,
		"errors":            len(result.Errors),
	})

	return result, nil
}

// approveItem mutates one item and its linked transaction. Parse failures on
// the bank reference payload skip enrichment for that item only.
func (a *Approver) approveItem(ctx context.Context, item model.ReconciliationItem, result *BulkApproveResult) error {
	txnID := *item.TransactionID

	ref, parseErr := ParseBankReference(item.BankReferenceData)
	if parseErr != nil {
		common.LogError(parseErr, "Skipping enrichment, bank reference unparseable",
			common.Fields{"item_id": item.ID})
	} else {
		if err := a.store.EnrichTransaction(ctx, txnID, ref.ExternalID, ref.ReferenceNumber, ref.BankCategory); err != nil {
			return fmt.Errorf("failed to enrich transaction %s: %w", txnID, err)
		}
		result.EnrichedCount++
	}

	if err := a.store.UpdateTransactionStatus(ctx, txnID, model.TransactionReconciled); err != nil {
		return fmt.Errorf("failed to reconcile transaction %s: %w", txnID, err)
	}

	if err := a.store.MarkItemApproved(ctx, item.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark item approved: %w", err)
	}

	result.ApprovedCount++
	return nil
}

// selectItems narrows the session's items per the options. With an explicit
// id list only those items are considered; otherwise every item at or above
// the threshold qualifies (no threshold means every matched item).
func selectItems(items []model.ReconciliationItem, opts BulkApproveOptions) []model.ReconciliationItem {
	if len(opts.ItemIDs) > 0 {
		wanted := make(map[string]struct{}, len(opts.ItemIDs))
		for _, id := range opts.ItemIDs {
			wanted[id] = struct{}{}
		}
		var selected []model.ReconciliationItem
		for _, item := range items {
			if _, ok := wanted[item.ID]; ok {
				selected = append(selected, item)
			}
		}
		return selected
	}

	if opts.Threshold == nil {
		return items
	}

	var selected []model.ReconciliationItem
	for _, item := range items {
		if item.MatchConfidence != nil && *item.MatchConfidence >= *opts.Threshold {
			selected = append(selected, item)
		}
	}
	return selected
}
