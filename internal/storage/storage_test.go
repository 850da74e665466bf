package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/service"
	"github.com/digaomatias/mymascada/internal/testutil"
)

func date(offset int) time.Time {
	return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestSaveAndGetTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedAccount("acct-1", "Checking")
	db.SeedTransactions(
		testutil.Txn("t1", "acct-1", "COFFEE SHOP", -4.50, date(0)),
		testutil.Txn("t2", "acct-1", "SALARY", 2500.00, date(1)),
	)

	ctx := context.Background()
	txns, err := db.Storage.GetTransactions(ctx, testutil.TestUserID, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txns, 2)

	// Ordered by date.
	assert.Equal(t, "t1", txns[0].ID)
	assert.Equal(t, "COFFEE SHOP", txns[0].Description)
	assert.Equal(t, model.TransactionPending, txns[0].Status)
	assert.NotEmpty(t, txns[0].Hash)
	assert.Nil(t, txns[0].CategoryID)
}

func TestSaveTransactions_DuplicateHashSkipped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedAccount("acct-1", "Checking")

	txn := testutil.Txn("t1", "acct-1", "COFFEE SHOP", -4.50, date(0))
	db.SeedTransactions(txn)

	// Same content under a different id hashes identically and is dropped.
	dup := txn
	dup.ID = "t1-again"
	db.SeedTransactions(dup)

	txns, err := db.Storage.GetTransactions(context.Background(), testutil.TestUserID, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestGetTransactions_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedAccount("acct-1", "Checking")
	db.SeedAccount("acct-2", "Savings")

	reviewed := testutil.Txn("t3", "acct-2", "OLD PURCHASE", -10.00, date(-5))
	reviewed.IsReviewed = true
	cancelled := testutil.Txn("t4", "acct-1", "VOIDED", -1.00, date(0))
	cancelled.Status = model.TransactionCancelled

	db.SeedTransactions(
		testutil.Txn("t1", "acct-1", "COFFEE SHOP", -4.50, date(0)),
		testutil.Txn("t2", "acct-2", "TRANSFER IN", 100.00, date(2)),
		reviewed,
		cancelled,
	)

	ctx := context.Background()

	byAccount, err := db.Storage.GetTransactions(ctx, testutil.TestUserID, service.TransactionFilter{AccountID: "acct-2"})
	require.NoError(t, err)
	assert.Len(t, byAccount, 2)

	start := date(1)
	byDate, err := db.Storage.GetTransactions(ctx, testutil.TestUserID, service.TransactionFilter{StartDate: &start})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, "t2", byDate[0].ID)

	unreviewed, err := db.Storage.GetTransactions(ctx, testutil.TestUserID, service.TransactionFilter{OnlyUnreviewed: true})
	require.NoError(t, err)
	for _, txn := range unreviewed {
		assert.False(t, txn.IsReviewed)
	}

	// Cancelled transactions are hidden unless explicitly included.
	all, err := db.Storage.GetTransactions(ctx, testutil.TestUserID, service.TransactionFilter{})
	require.NoError(t, err)
	for _, txn := range all {
		assert.NotEqual(t, model.TransactionCancelled, txn.Status)
	}

	withDeleted, err := db.Storage.GetTransactions(ctx, testutil.TestUserID, service.TransactionFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, withDeleted, len(all)+1)
}

func TestGetTransactions_ScopedToUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedAccount("acct-1", "Checking")

	other := model.Account{ID: "foreign", Name: "Not Yours"}
	require.NoError(t, db.Storage.SaveAccount(context.Background(), "someone-else", other))

	foreign := testutil.Txn("tf", "foreign", "PRIVATE", -5.00, date(0))
	foreign.Hash = foreign.GenerateHash()
	require.NoError(t, db.Storage.SaveTransactions(context.Background(), []model.Transaction{foreign}))

	txns, err := db.Storage.GetTransactions(context.Background(), testutil.TestUserID, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestUpdateTransactionCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedAccount("acct-1", "Checking")
	db.SeedCategories("Groceries")
	db.SeedTransactions(testutil.Txn("t1", "acct-1", "ACME MARKET", -30.00, date(0)))

	ctx := context.Background()
	catID := db.CategoryID("Groceries")
	require.NoError(t, db.Storage.UpdateTransactionCategory(ctx, "t1", catID, true))

	txn, err := db.Storage.GetTransactionByID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, txn.CategoryID)
	assert.Equal(t, catID, *txn.CategoryID)
	assert.True(t, txn.AutoCategorized)

	err = db.Storage.UpdateTransactionCategory(ctx, "missing", catID, false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEnrichTransactionAndStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedAccount("acct-1", "Checking")
	db.SeedTransactions(testutil.Txn("t1", "acct-1", "ACME MARKET", -30.00, date(0)))

	ctx := context.Background()
	require.NoError(t, db.Storage.EnrichTransaction(ctx, "t1", "FIT99", "REF7", "GROCERY"))
	require.NoError(t, db.Storage.UpdateTransactionStatus(ctx, "t1", model.TransactionReconciled))

	txn, err := db.Storage.GetTransactionByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "FIT99", txn.ExternalID)
	assert.Equal(t, "REF7", txn.ReferenceNumber)
	assert.Equal(t, "GROCERY", txn.BankCategory)
	assert.Equal(t, model.TransactionReconciled, txn.Status)
	// Enrichment never touches categorization.
	assert.Nil(t, txn.CategoryID)
}

func TestSetTransferID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedAccount("acct-1", "Checking")
	db.SeedAccount("acct-2", "Savings")
	db.SeedTransactions(
		testutil.Txn("out", "acct-1", "TRANSFER", -50.00, date(0)),
		testutil.Txn("in", "acct-2", "TRANSFER", 50.00, date(0)),
	)

	ctx := context.Background()
	require.NoError(t, db.Storage.SetTransferID(ctx, "out", "tr-1"))
	require.NoError(t, db.Storage.SetTransferID(ctx, "in", "tr-1"))

	out, err := db.Storage.GetTransactionByID(ctx, "out")
	require.NoError(t, err)
	require.NotNil(t, out.TransferID)
	assert.Equal(t, "tr-1", *out.TransferID)
}

func TestHasAccountAccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedAccount("acct-1", "Checking")

	ctx := context.Background()
	ok, err := db.Storage.HasAccountAccess(ctx, testutil.TestUserID, "acct-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.Storage.HasAccountAccess(ctx, "intruder", "acct-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCategoriesAndRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedCategories("Groceries", "Dining")

	ctx := context.Background()
	cats, err := db.Storage.GetCategories(ctx, testutil.TestUserID)
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	cat, err := db.Storage.GetCategoryByID(ctx, db.CategoryID("Dining"))
	require.NoError(t, err)
	assert.Equal(t, "Dining", cat.Name)
	assert.Equal(t, model.CategoryTypeExpense, cat.Type)

	_, err = db.Storage.GetCategoryByID(ctx, 9999)
	assert.ErrorIs(t, err, common.ErrNotFound)

	rules, err := db.Storage.GetCategoryRules(ctx, testutil.TestUserID)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedCategories("Groceries")

	ctx := context.Background()
	_, err := db.Storage.CreateCategory(ctx, testutil.TestUserID, "Groceries", model.CategoryTypeExpense)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	// Same name under another user is a distinct category.
	cat, err := db.Storage.CreateCategory(ctx, "other-user", "Groceries", model.CategoryTypeExpense)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", cat.Name)
}
