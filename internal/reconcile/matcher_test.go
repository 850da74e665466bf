package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digaomatias/mymascada/internal/model"
)

func statementDay(offset int) time.Time {
	return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func systemTxn(id string, amount float64, date time.Time, externalID string) model.Transaction {
	return model.Transaction{
		ID:         id,
		AccountID:  "acct-1",
		Amount:     amount,
		Date:       date,
		ExternalID: externalID,
		Status:     model.TransactionPending,
	}
}

func itemsByType(items []model.ReconciliationItem) map[model.ReconciliationItemType][]model.ReconciliationItem {
	out := make(map[model.ReconciliationItemType][]model.ReconciliationItem)
	for _, item := range items {
		out[item.ItemType] = append(out[item.ItemType], item)
	}
	return out
}

func TestMatcher_ExactMatchByExternalID(t *testing.T) {
	records := []BankRecord{
		{ExternalID: "FIT1", Amount: -20.00, Date: statementDay(0), Description: "COFFEE"},
	}
	txns := []model.Transaction{
		systemTxn("t1", -20.00, statementDay(0), "FIT1"),
	}

	items, err := NewMatcher().Match("rec-1", records, txns)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, model.ItemMatched, item.ItemType)
	assert.Equal(t, model.MatchExact, item.MatchMethod)
	require.NotNil(t, item.TransactionID)
	assert.Equal(t, "t1", *item.TransactionID)
	require.NotNil(t, item.MatchConfidence)
	assert.InDelta(t, 1.0, *item.MatchConfidence, 1e-9)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "rec-1", item.ReconciliationID)
}

func TestMatcher_FuzzyMatchByAmountAndDate(t *testing.T) {
	records := []BankRecord{
		{ExternalID: "FIT2", Amount: -55.00, Date: statementDay(1)},
	}
	txns := []model.Transaction{
		systemTxn("t1", -55.00, statementDay(0), ""),
	}

	items, err := NewMatcher().Match("rec-1", records, txns)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, model.ItemMatched, item.ItemType)
	assert.Equal(t, model.MatchFuzzy, item.MatchMethod)
	require.NotNil(t, item.MatchConfidence)
	assert.GreaterOrEqual(t, *item.MatchConfidence, fuzzyMatchThreshold)
	assert.Less(t, *item.MatchConfidence, 1.0)
}

func TestMatcher_FuzzyNeverCrossesSign(t *testing.T) {
	records := []BankRecord{
		{ExternalID: "FIT9", Amount: -55.00, Date: statementDay(0)},
	}
	txns := []model.Transaction{
		systemTxn("t1", 55.00, statementDay(0), ""),
	}

	items, err := NewMatcher().Match("rec-1", records, txns)
	require.NoError(t, err)

	byType := itemsByType(items)
	assert.Empty(t, byType[model.ItemMatched])
	assert.Len(t, byType[model.ItemUnmatchedBank], 1)
	assert.Len(t, byType[model.ItemUnmatchedApp], 1)
}

func TestMatcher_FuzzyPicksBestCandidate(t *testing.T) {
	records := []BankRecord{
		{ExternalID: "FIT3", Amount: -55.00, Date: statementDay(0)},
	}
	txns := []model.Transaction{
		systemTxn("far", -55.00, statementDay(3), ""),
		systemTxn("near", -55.00, statementDay(0), ""),
	}

	items, err := NewMatcher().Match("rec-1", records, txns)
	require.NoError(t, err)

	byType := itemsByType(items)
	require.Len(t, byType[model.ItemMatched], 1)
	assert.Equal(t, "near", *byType[model.ItemMatched][0].TransactionID)
}

func TestMatcher_EachTransactionConsumedOnce(t *testing.T) {
	records := []BankRecord{
		{ExternalID: "R1", Amount: -10.00, Date: statementDay(0)},
		{ExternalID: "R2", Amount: -10.00, Date: statementDay(0)},
	}
	txns := []model.Transaction{
		systemTxn("t1", -10.00, statementDay(0), ""),
	}

	items, err := NewMatcher().Match("rec-1", records, txns)
	require.NoError(t, err)

	byType := itemsByType(items)
	assert.Len(t, byType[model.ItemMatched], 1)
	assert.Len(t, byType[model.ItemUnmatchedBank], 1)
}

func TestMatcher_UnmatchedSides(t *testing.T) {
	records := []BankRecord{
		{ExternalID: "BANKONLY", Amount: -99.00, Date: statementDay(0), Description: "MYSTERY FEE"},
	}
	txns := []model.Transaction{
		systemTxn("apponly", -12.00, statementDay(0), ""),
	}

	items, err := NewMatcher().Match("rec-1", records, txns)
	require.NoError(t, err)

	byType := itemsByType(items)
	require.Len(t, byType[model.ItemUnmatchedBank], 1)
	require.Len(t, byType[model.ItemUnmatchedApp], 1)

	bankItem := byType[model.ItemUnmatchedBank][0]
	assert.Nil(t, bankItem.TransactionID)

	// The bank evidence survives on the unmatched item for later review.
	ref, err := ParseBankReference(bankItem.BankReferenceData)
	require.NoError(t, err)
	assert.Equal(t, "BANKONLY", ref.ExternalID)
	assert.Equal(t, "MYSTERY FEE", ref.Description)

	appItem := byType[model.ItemUnmatchedApp][0]
	require.NotNil(t, appItem.TransactionID)
	assert.Equal(t, "apponly", *appItem.TransactionID)
}

func TestMatcher_ReconciledTransactionsAreLeftAlone(t *testing.T) {
	done := systemTxn("done", -30.00, statementDay(0), "")
	done.Status = model.TransactionReconciled

	records := []BankRecord{
		{ExternalID: "R1", Amount: -30.00, Date: statementDay(0)},
	}

	items, err := NewMatcher().Match("rec-1", records, []model.Transaction{done})
	require.NoError(t, err)

	byType := itemsByType(items)
	// The reconciled transaction is neither fuzzy-matched nor reported as
	// an app-only leftover.
	assert.Empty(t, byType[model.ItemMatched])
	assert.Len(t, byType[model.ItemUnmatchedBank], 1)
	assert.Empty(t, byType[model.ItemUnmatchedApp])
}
