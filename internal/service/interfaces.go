// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/digaomatias/mymascada/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate      *time.Time
	EndDate        *time.Time
	AccountID      string
	OnlyUnreviewed bool
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// TransactionStore provides read/write access to transactions.
// All mutation of a transaction happens through the lifecycle managers,
// never directly by an analyzer.
type TransactionStore interface {
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	UpdateTransactionCategory(ctx context.Context, id string, categoryID int, autoCategorized bool) error
	UpdateTransactionStatus(ctx context.Context, id string, status model.TransactionStatus) error
	EnrichTransaction(ctx context.Context, id, externalID, referenceNumber, bankCategory string) error
	SetTransferID(ctx context.Context, id, transferID string) error
}

// CategoryStore provides read access to a user's category tree and rules.
type CategoryStore interface {
	GetCategories(ctx context.Context, userID string) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	GetCategoryRules(ctx context.Context, userID string) ([]model.CategoryRule, error)
}

// CandidateStore persists categorization candidates. Candidates are never
// deleted, only state-transitioned.
type CandidateStore interface {
	CreateCandidates(ctx context.Context, candidates []model.CategorizationCandidate) error
	GetCandidateByID(ctx context.Context, id string) (*model.CategorizationCandidate, error)
	GetCandidatesByTransaction(ctx context.Context, transactionID string) ([]model.CategorizationCandidate, error)
	UpdateCandidateStatus(ctx context.Context, id string, status model.CandidateStatus, processedBy string) error
}

// ReconciliationStore persists reconciliation sessions and their items.
type ReconciliationStore interface {
	CreateReconciliation(ctx context.Context, rec *model.Reconciliation) error
	GetReconciliation(ctx context.Context, id string) (*model.Reconciliation, error)
	CreateReconciliationItems(ctx context.Context, items []model.ReconciliationItem) error
	GetReconciliationItems(ctx context.Context, reconciliationID string) ([]model.ReconciliationItem, error)
	MarkItemApproved(ctx context.Context, itemID string, approvedAt time.Time) error
}

// AccountStore provides account lookup and access checks.
type AccountStore interface {
	GetAccounts(ctx context.Context, userID string) ([]model.Account, error)
	HasAccountAccess(ctx context.Context, userID, accountID string) (bool, error)
}

// Storage aggregates every persistence capability for wiring the CLI.
type Storage interface {
	TransactionStore
	CategoryStore
	CandidateStore
	ReconciliationStore
	AccountStore

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
