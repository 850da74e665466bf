package main

import (
	"context"
	"fmt"
	"time"

	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/service"
	"github.com/digaomatias/mymascada/internal/storage"
	"github.com/digaomatias/mymascada/internal/suggest"
)

// openStorage opens the configured database and runs pending migrations.
// Callers own the Close.
func openStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(databasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// loadAnalyzerInput gathers the snapshot the candidate pipeline runs over.
func loadAnalyzerInput(ctx context.Context, store service.Storage, userID string, filter service.TransactionFilter) (suggest.Input, error) {
	transactions, err := store.GetTransactions(ctx, userID, filter)
	if err != nil {
		return suggest.Input{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	categories, err := store.GetCategories(ctx, userID)
	if err != nil {
		return suggest.Input{}, fmt.Errorf("failed to load categories: %w", err)
	}

	rules, err := store.GetCategoryRules(ctx, userID)
	if err != nil {
		return suggest.Input{}, fmt.Errorf("failed to load category rules: %w", err)
	}

	return suggest.Input{
		Transactions: transactions,
		Categories:   categories,
		Rules:        rules,
	}, nil
}

// parseDateFlag parses an optional YYYY-MM-DD flag value.
func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return &t, nil
}

// describeTransaction renders a transaction for one-line display.
func describeTransaction(txn model.Transaction) string {
	return fmt.Sprintf("%s  $%9.2f  %s",
		txn.Date.Format("2006-01-02"),
		txn.Amount,
		txn.EffectiveDescription())
}
