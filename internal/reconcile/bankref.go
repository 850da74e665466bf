// Package reconcile matches externally reported bank records against
// internally recorded transactions and drives the approval workflow that
// enriches and reconciles matched transactions.
package reconcile

import (
	"encoding/json"
	"fmt"
)

// BankReference is the serialized bank-side evidence attached to a
// reconciliation item.
type BankReference struct {
	ExternalID      string  `json:"external_id"`
	ReferenceNumber string  `json:"reference_number,omitempty"`
	BankCategory    string  `json:"bank_category,omitempty"`
	Description     string  `json:"description,omitempty"`
	Amount          float64 `json:"amount"`
}

// Marshal serializes the reference for storage on an item.
func (r *BankReference) Marshal() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal bank reference: %w", err)
	}
	return string(data), nil
}

// ParseBankReference deserializes an item's bank reference payload.
func ParseBankReference(data string) (*BankReference, error) {
	if data == "" {
		return nil, fmt.Errorf("empty bank reference payload")
	}
	var ref BankReference
	if err := json.Unmarshal([]byte(data), &ref); err != nil {
		return nil, fmt.Errorf("failed to parse bank reference: %w", err)
	}
	return &ref, nil
}
