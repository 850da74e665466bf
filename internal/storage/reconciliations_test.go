package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/testutil"
)

func TestReconciliationRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedAccount("acct-1", "Checking")
	ctx := context.Background()

	rec := &model.Reconciliation{
		ID:        "rec-1",
		AccountID: "acct-1",
		UserID:    testutil.TestUserID,
		Label:     "June statement",
	}
	require.NoError(t, db.Storage.CreateReconciliation(ctx, rec))

	got, err := db.Storage.GetReconciliation(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "June statement", got.Label)
	assert.Equal(t, "acct-1", got.AccountID)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = db.Storage.GetReconciliation(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestReconciliationItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedAccount("acct-1", "Checking")
	db.SeedTransactions(testutil.Txn("t1", "acct-1", "COFFEE", -4.50, date(0)))
	ctx := context.Background()

	require.NoError(t, db.Storage.CreateReconciliation(ctx, &model.Reconciliation{
		ID:        "rec-1",
		AccountID: "acct-1",
		UserID:    testutil.TestUserID,
	}))

	txnID := "t1"
	confidence := 0.93
	items := []model.ReconciliationItem{
		{
			ID:                "item-1",
			ReconciliationID:  "rec-1",
			ItemType:          model.ItemMatched,
			MatchMethod:       model.MatchFuzzy,
			TransactionID:     &txnID,
			MatchConfidence:   &confidence,
			BankReferenceData: `{"external_id":"FIT1","amount":-4.5}`,
		},
		{
			ID:               "item-2",
			ReconciliationID: "rec-1",
			ItemType:         model.ItemUnmatchedBank,
			BankReferenceData: `{"external_id":"FIT2","amount":-9.99}`,
		},
	}
	require.NoError(t, db.Storage.CreateReconciliationItems(ctx, items))

	got, err := db.Storage.GetReconciliationItems(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	matched := got[0]
	assert.Equal(t, model.ItemMatched, matched.ItemType)
	assert.Equal(t, model.MatchFuzzy, matched.MatchMethod)
	require.NotNil(t, matched.TransactionID)
	assert.Equal(t, "t1", *matched.TransactionID)
	require.NotNil(t, matched.MatchConfidence)
	assert.InDelta(t, 0.93, *matched.MatchConfidence, 1e-9)
	assert.False(t, matched.IsApproved)
	assert.Nil(t, matched.ApprovedAt)

	unmatched := got[1]
	assert.Equal(t, model.ItemUnmatchedBank, unmatched.ItemType)
	assert.Nil(t, unmatched.TransactionID)
	assert.Nil(t, unmatched.MatchConfidence)
}

func TestMarkItemApproved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedAccount("acct-1", "Checking")
	ctx := context.Background()

	require.NoError(t, db.Storage.CreateReconciliation(ctx, &model.Reconciliation{
		ID:        "rec-1",
		AccountID: "acct-1",
		UserID:    testutil.TestUserID,
	}))
	require.NoError(t, db.Storage.CreateReconciliationItems(ctx, []model.ReconciliationItem{
		{ID: "item-1", ReconciliationID: "rec-1", ItemType: model.ItemMatched},
	}))

	approvedAt := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Storage.MarkItemApproved(ctx, "item-1", approvedAt))

	items, err := db.Storage.GetReconciliationItems(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsApproved)
	require.NotNil(t, items[0].ApprovedAt)

	// A second approval attempt reports the item as already processed.
	err = db.Storage.MarkItemApproved(ctx, "item-1", approvedAt.Add(time.Hour))
	assert.ErrorIs(t, err, common.ErrAlreadyProcessed)
}
