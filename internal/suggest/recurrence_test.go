package suggest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digaomatias/mymascada/internal/model"
)

func recurringTxn(id, description string, amount float64, date time.Time, categoryID *int) model.Transaction {
	return model.Transaction{
		ID:          id,
		Description: description,
		Amount:      amount,
		Date:        date,
		CategoryID:  categoryID,
	}
}

func TestAmountRecurrenceAnalyzer(t *testing.T) {
	entertainment := model.Category{ID: 3, Name: "Entertainment", Type: model.CategoryTypeExpense}
	catID := 3
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	input := Input{
		Categories: []model.Category{entertainment},
		Transactions: []model.Transaction{
			recurringTxn("t1", "STREAMCO INV 1001", -15.99, base, &catID),
			recurringTxn("t2", "STREAMCO INV 1002", -15.99, base.AddDate(0, 1, 0), &catID),
			recurringTxn("t3", "STREAMCO INV 1003", -15.99, base.AddDate(0, 2, 0), nil),
		},
	}

	suggestions, err := NewAmountRecurrenceAnalyzer().Analyze(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	s := suggestions[0]
	assert.Equal(t, 3, s.CategoryID)
	assert.Equal(t, "STREAMCO INV #", s.Pattern)
	assert.Equal(t, model.MethodAmountRecurrence, s.Method)
	assert.InDelta(t, 1.0, s.Confidence, 1e-9) // both categorized members agree
	assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, s.TransactionIDs)
}

func TestAmountRecurrenceAnalyzer_NeedsAgreement(t *testing.T) {
	catA, catB := 1, 2
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	input := Input{
		Categories: []model.Category{
			{ID: 1, Name: "Groceries", Type: model.CategoryTypeExpense},
			{ID: 2, Name: "Dining", Type: model.CategoryTypeExpense},
		},
		Transactions: []model.Transaction{
			recurringTxn("t1", "SPLITCO CHARGE", -20.00, base, &catA),
			recurringTxn("t2", "SPLITCO CHARGE", -20.00, base.AddDate(0, 0, 7), &catB),
			recurringTxn("t3", "SPLITCO CHARGE", -20.00, base.AddDate(0, 0, 14), &catA),
		},
	}

	// 2 of 3 categorized agree: 66% is under the 80% bar.
	suggestions, err := NewAmountRecurrenceAnalyzer().Analyze(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestAmountRecurrenceAnalyzer_DifferentDescriptionsDoNotGroup(t *testing.T) {
	catID := 1
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	input := Input{
		Categories: []model.Category{{ID: 1, Name: "Groceries", Type: model.CategoryTypeExpense}},
		Transactions: []model.Transaction{
			recurringTxn("t1", "ALPHA STORE", -20.00, base, &catID),
			recurringTxn("t2", "BETA STORE", -20.00, base.AddDate(0, 0, 7), &catID),
			recurringTxn("t3", "GAMMA STORE", -20.00, base.AddDate(0, 0, 14), &catID),
		},
	}

	suggestions, err := NewAmountRecurrenceAnalyzer().Analyze(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestDateRecurrenceAnalyzer_Monthly(t *testing.T) {
	utilities := model.Category{ID: 5, Name: "Utilities", Type: model.CategoryTypeExpense}
	catID := 5
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	input := Input{
		Categories: []model.Category{utilities},
		Transactions: []model.Transaction{
			recurringTxn("t1", "CITY POWER BILL 0126", -80.10, base, &catID),
			recurringTxn("t2", "CITY POWER BILL 0226", -82.55, base.AddDate(0, 0, 31), &catID),
			recurringTxn("t3", "CITY POWER BILL 0326", -79.90, base.AddDate(0, 0, 59), nil),
		},
	}

	suggestions, err := NewDateRecurrenceAnalyzer().Analyze(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	s := suggestions[0]
	assert.Equal(t, model.MethodDateRecurrence, s.Method)
	assert.Equal(t, "CITY POWER BILL #", s.Pattern)
	assert.InDelta(t, 0.8, s.Confidence, 1e-9) // full agreement scaled by 0.8
	assert.Contains(t, s.Reasoning, "monthly")
}

func TestDateRecurrenceAnalyzer_Weekly(t *testing.T) {
	groceries := model.Category{ID: 1, Name: "Groceries", Type: model.CategoryTypeExpense}
	catID := 1
	base := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	input := Input{
		Categories: []model.Category{groceries},
		Transactions: []model.Transaction{
			recurringTxn("t1", "FARM BOX DELIVERY", -35.00, base, &catID),
			recurringTxn("t2", "FARM BOX DELIVERY", -35.00, base.AddDate(0, 0, 7), &catID),
			recurringTxn("t3", "FARM BOX DELIVERY", -35.00, base.AddDate(0, 0, 15), nil),
		},
	}

	suggestions, err := NewDateRecurrenceAnalyzer().Analyze(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Contains(t, suggestions[0].Reasoning, "weekly")
}

func TestDateRecurrenceAnalyzer_IrregularCadence(t *testing.T) {
	groceries := model.Category{ID: 1, Name: "Groceries", Type: model.CategoryTypeExpense}
	catID := 1
	base := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	input := Input{
		Categories: []model.Category{groceries},
		Transactions: []model.Transaction{
			recurringTxn("t1", "ODD SHOP VISIT", -35.00, base, &catID),
			recurringTxn("t2", "ODD SHOP VISIT", -35.00, base.AddDate(0, 0, 3), &catID),
			recurringTxn("t3", "ODD SHOP VISIT", -35.00, base.AddDate(0, 0, 40), &catID),
		},
	}

	suggestions, err := NewDateRecurrenceAnalyzer().Analyze(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
