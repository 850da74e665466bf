// Package testutil provides shared helpers for tests that need a real
// database: an in-memory SQLite store with migrations applied and seed
// helpers for the common fixtures.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/storage"
)

// TestUserID is the user every test fixture belongs to.
const TestUserID = "test-user"

// TestDB wraps an in-memory storage with fixture helpers. Categories are
// tracked by name so tests can refer to them without hardcoding row ids.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	categories map[string]model.Category
}

// SetupTestDB creates a migrated in-memory database. Cleanup is automatic.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage:    store,
		t:          t,
		categories: make(map[string]model.Category),
	}
}

// SeedAccount inserts an account owned by the test user.
func (db *TestDB) SeedAccount(id, name string) model.Account {
	db.t.Helper()

	acct := model.Account{ID: id, Name: name, Type: "checking"}
	if err := db.Storage.SaveAccount(context.Background(), TestUserID, acct); err != nil {
		db.t.Fatalf("failed to seed account %s: %v", id, err)
	}
	return acct
}

// SeedCategories inserts expense categories and remembers their ids.
func (db *TestDB) SeedCategories(names ...string) {
	db.t.Helper()

	for _, name := range names {
		cat, err := db.Storage.CreateCategory(context.Background(), TestUserID, name, model.CategoryTypeExpense)
		if err != nil {
			db.t.Fatalf("failed to seed category %q: %v", name, err)
		}
		db.categories[name] = *cat
	}
}

// CategoryID returns a seeded category's id or fails the test.
func (db *TestDB) CategoryID(name string) int {
	db.t.Helper()

	cat, ok := db.categories[name]
	if !ok {
		db.t.Fatalf("category %q was never seeded", name)
	}
	return cat.ID
}

// SeedTransactions saves transactions, filling in hashes where missing.
func (db *TestDB) SeedTransactions(txns ...model.Transaction) {
	db.t.Helper()

	for i := range txns {
		if txns[i].Hash == "" {
			txns[i].Hash = txns[i].GenerateHash()
		}
		if txns[i].Status == "" {
			txns[i].Status = model.TransactionPending
		}
	}
	if err := db.Storage.SaveTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
}

// Txn builds a transaction fixture on the given account.
func Txn(id, accountID, description string, amount float64, date time.Time) model.Transaction {
	return model.Transaction{
		ID:          id,
		AccountID:   accountID,
		Description: description,
		Amount:      amount,
		Date:        date,
		Status:      model.TransactionPending,
	}
}
