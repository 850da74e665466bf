package reconcile

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/scoring"
)

// fuzzyMatchThreshold is the minimum combined score for a fuzzy pairing.
const fuzzyMatchThreshold = 0.75

// BankRecord is one bank-reported entry used to seed a reconciliation run.
type BankRecord struct {
	Date            time.Time
	ExternalID      string
	ReferenceNumber string
	BankCategory    string
	Description     string
	AccountID       string
	Amount          float64
}

// Matcher seeds a reconciliation session: it pairs bank records with system
// transactions, exactly by external id first, then fuzzily by amount and
// date score. Each transaction is consumed at most once.
type Matcher struct{}

// NewMatcher creates a reconciliation matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match produces the session's items: one Matched item per pairing, one
// UnmatchedBank item per leftover bank record, and one UnmatchedApp item per
// leftover unreconciled transaction.
func (m *Matcher) Match(reconciliationID string, records []BankRecord, transactions []model.Transaction) ([]model.ReconciliationItem, error) {
	now := time.Now().UTC()
	consumed := make(map[string]struct{}, len(transactions))

	byExternalID := make(map[string]*model.Transaction, len(transactions))
	for i := range transactions {
		if transactions[i].ExternalID != "" {
			byExternalID[transactions[i].ExternalID] = &transactions[i]
		}
	}

	var items []model.ReconciliationItem
	for _, record := range records {
		txn, method, confidence := m.findMatch(record, transactions, byExternalID, consumed)
		if txn == nil {
			item, err := unmatchedBankItem(reconciliationID, record, now)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			continue
		}

		consumed[txn.ID] = struct{}{}

		ref := BankReference{
			ExternalID:      record.ExternalID,
			ReferenceNumber: record.ReferenceNumber,
			BankCategory:    record.BankCategory,
			Description:     record.Description,
			Amount:          record.Amount,
		}
		payload, err := ref.Marshal()
		if err != nil {
			return nil, err
		}

		txnID := txn.ID
		conf := confidence
		items = append(items, model.ReconciliationItem{
			ID:                uuid.NewString(),
			ReconciliationID:  reconciliationID,
			ItemType:          model.ItemMatched,
			MatchMethod:       method,
			TransactionID:     &txnID,
			MatchConfidence:   &conf,
			BankReferenceData: payload,
			CreatedAt:         now,
		})
	}

	for _, txn := range transactions {
		if _, ok := consumed[txn.ID]; ok {
			continue
		}
		if txn.Status == model.TransactionReconciled || txn.Status == model.TransactionCancelled {
			continue
		}
		txnID := txn.ID
		items = append(items, model.ReconciliationItem{
			ID:               uuid.NewString(),
			ReconciliationID: reconciliationID,
			ItemType:         model.ItemUnmatchedApp,
			TransactionID:    &txnID,
			CreatedAt:        now,
		})
	}

	return items, nil
}

// findMatch tries exact external-id identity first, then the best fuzzy
// amount+date pairing above the threshold.
func (m *Matcher) findMatch(record BankRecord, transactions []model.Transaction, byExternalID map[string]*model.Transaction, consumed map[string]struct{}) (*model.Transaction, model.MatchMethod, float64) {
	if record.ExternalID != "" {
		if txn, ok := byExternalID[record.ExternalID]; ok {
			if _, done := consumed[txn.ID]; !done {
				return txn, model.MatchExact, 1.0
			}
		}
	}

	var best *model.Transaction
	bestScore := 0.0
	for i := range transactions {
		txn := &transactions[i]
		if _, done := consumed[txn.ID]; done {
			continue
		}
		if txn.Status == model.TransactionReconciled {
			continue
		}
		// A withdrawal never fuzzy-matches a deposit of the same magnitude.
		if (record.Amount < 0) != (txn.Amount < 0) {
			continue
		}

		amountScore := scoring.AmountScore(record.Amount, txn.Amount)
		if amountScore == 0 {
			continue
		}
		dateScore := scoring.DateScore(record.Date, txn.Date, record.Amount, true)
		if dateScore == 0 {
			continue
		}

		score := 0.6*amountScore + 0.4*dateScore
		if score > bestScore {
			best, bestScore = txn, score
		}
	}

	if best != nil && bestScore >= fuzzyMatchThreshold {
		return best, model.MatchFuzzy, bestScore
	}
	return nil, "", 0
}

func unmatchedBankItem(reconciliationID string, record BankRecord, now time.Time) (model.ReconciliationItem, error) {
	ref := BankReference{
		ExternalID:      record.ExternalID,
		ReferenceNumber: record.ReferenceNumber,
		BankCategory:    record.BankCategory,
		Description:     record.Description,
		Amount:          record.Amount,
	}
	payload, err := ref.Marshal()
	if err != nil {
		return model.ReconciliationItem{}, fmt.Errorf("bank record %s: %w", record.ExternalID, err)
	}

	return model.ReconciliationItem{
		ID:                uuid.NewString(),
		ReconciliationID:  reconciliationID,
		ItemType:          model.ItemUnmatchedBank,
		BankReferenceData: payload,
		CreatedAt:         now,
	}, nil
}
