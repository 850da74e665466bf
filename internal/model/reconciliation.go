package model

import "time"

// ReconciliationItemType classifies a reconciliation item.
type ReconciliationItemType string

// Reconciliation item type constants.
const (
	ItemMatched       ReconciliationItemType = "MATCHED"
	ItemUnmatchedBank ReconciliationItemType = "UNMATCHED_BANK"
	ItemUnmatchedApp  ReconciliationItemType = "UNMATCHED_APP"
)

// MatchMethod records how a bank record was paired with a transaction.
type MatchMethod string

// Match method constants.
const (
	MatchExact MatchMethod = "EXACT"
	MatchFuzzy MatchMethod = "FUZZY"
)

// Reconciliation is one reconciliation session over an account.
type Reconciliation struct {
	CreatedAt time.Time
	ID        string
	AccountID string
	UserID    string
	Label     string
}

// ReconciliationItem associates a bank-reported record with zero or one
// system transaction. Once approved an item is never re-matched.
type ReconciliationItem struct {
	CreatedAt         time.Time
	ApprovedAt        *time.Time
	TransactionID     *string
	MatchConfidence   *float64 // Nil when unmatched
	ID                string
	ReconciliationID  string
	ItemType          ReconciliationItemType
	MatchMethod       MatchMethod
	BankReferenceData string // Serialized bank evidence (JSON)
	IsApproved        bool
}

// Approvable reports whether bulk approval may act on this item.
// Already-approved and unmatched items are skipped, not errors.
func (i *ReconciliationItem) Approvable() bool {
	return i.ItemType == ItemMatched && !i.IsApproved && i.TransactionID != nil
}
