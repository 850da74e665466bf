// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// TransactionStatus tracks where a transaction sits in its lifecycle.
type TransactionStatus string

// Transaction status constants.
const (
	TransactionPending    TransactionStatus = "PENDING"
	TransactionCleared    TransactionStatus = "CLEARED"
	TransactionReconciled TransactionStatus = "RECONCILED"
	TransactionCancelled  TransactionStatus = "CANCELLED"
)

// Transaction represents a single financial transaction from any source.
// Amount is signed: negative is outgoing (expense), positive is incoming (income).
type Transaction struct {
	Date            time.Time
	ID              string
	Description     string // Raw transaction description
	UserDescription string // Optional user-supplied override
	AccountID       string
	Hash            string
	Amount          float64
	Status          TransactionStatus

	// Optional bank-sourced metadata written during reconciliation enrichment
	ExternalID      string
	ReferenceNumber string
	BankCategory    string

	CategoryID      *int
	TransferID      *string // Links the two legs of an internal transfer
	IsReviewed      bool
	AutoCategorized bool
}

// EffectiveDescription returns the user description when present,
// falling back to the raw bank description.
func (t *Transaction) EffectiveDescription() string {
	if strings.TrimSpace(t.UserDescription) != "" {
		return t.UserDescription
	}
	return t.Description
}

// IsOutgoing reports whether the transaction is an expense leg.
func (t *Transaction) IsOutgoing() bool {
	return t.Amount < 0
}

// IsIncoming reports whether the transaction is an income leg.
func (t *Transaction) IsIncoming() bool {
	return t.Amount > 0
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Account represents a financial account owned by the user.
type Account struct {
	CreatedAt     time.Time
	ID            string
	Name          string
	InstitutionID string
	Type          string
}
