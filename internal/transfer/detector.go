// Package transfer detects which pairs of transactions are the two legs of an
// internal transfer between accounts.
package transfer

import (
	"fmt"
	"math"
	"strings"

	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/scoring"
)

// maxPairingDays is the widest date gap automatic pairing will accept.
const maxPairingDays = 3

// DetectionResult holds the paired groups and the transactions that still
// need a manual decision.
type DetectionResult struct {
	Groups    []model.TransferGroup
	Unmatched []model.UnmatchedTransfer
}

// Detector pairs transfer legs using greedy first-fit matching.
//
// The pairing is intentionally order-dependent: the first candidate meeting
// the strict criteria wins, even when a later candidate would score higher.
// When three or more transactions share an amount inside the date window
// this can miss the globally best pairing; downstream behavior assumes
// first-fit semantics, so do not upgrade this to optimal matching.
type Detector struct {
	accountsByID map[string]model.Account
}

// NewDetector creates a detector. Accounts are optional; they enable the
// suggested-destination guess and institution-aware confidence display.
func NewDetector(accounts []model.Account) *Detector {
	byID := make(map[string]model.Account, len(accounts))
	for _, acct := range accounts {
		byID[acct.ID] = acct
	}
	return &Detector{accountsByID: byID}
}

// Detect scans the pool for transfer pairs. Automatic pairing only trusts
// exact amount equality plus a tight date window; the richer PairScore is
// computed for reviewer display, never to drive pairing.
func (d *Detector) Detect(transactions []model.Transaction) *DetectionResult {
	result := &DetectionResult{}
	processed := make(map[string]struct{}, len(transactions))

	for i, source := range transactions {
		if _, done := processed[source.ID]; done {
			continue
		}

		for j := i + 1; j < len(transactions); j++ {
			candidate := transactions[j]
			if _, done := processed[candidate.ID]; done {
				continue
			}
			if !d.validPair(source, candidate) {
				continue
			}

			group := d.buildGroup(source, candidate)
			result.Groups = append(result.Groups, group)
			processed[source.ID] = struct{}{}
			processed[candidate.ID] = struct{}{}
			break
		}
	}

	for _, txn := range transactions {
		if _, done := processed[txn.ID]; done {
			continue
		}
		if txn.IsReviewed {
			continue
		}
		result.Unmatched = append(result.Unmatched, model.UnmatchedTransfer{
			Transaction:        txn,
			SuggestedAccountID: d.suggestDestination(txn),
			Reason:             "no counterpart with matching amount within 3 days",
		})
	}

	return result
}

// validPair applies the strict automatic-pairing criteria: different
// accounts, exact amount magnitude equality (money out must equal money in),
// opposite signs, dates within three days.
func (d *Detector) validPair(a, b model.Transaction) bool {
	if a.AccountID == b.AccountID {
		return false
	}
	if math.Abs(a.Amount) != math.Abs(b.Amount) {
		return false
	}
	// Two withdrawals (or two deposits) of the same amount are ambiguous,
	// never auto-paired.
	if (a.Amount < 0) == (b.Amount < 0) {
		return false
	}
	if a.Amount == 0 || b.Amount == 0 {
		return false
	}
	return scoring.DaysBetween(a.Date, b.Date) <= maxPairingDays
}

func (d *Detector) buildGroup(a, b model.Transaction) model.TransferGroup {
	outgoing, incoming := a, b
	if a.Amount > 0 {
		outgoing, incoming = b, a
	}

	start, end := outgoing.Date, incoming.Date
	if end.Before(start) {
		start, end = end, start
	}

	reasons := []string{"exact amount match"}
	if days := scoring.DaysBetween(outgoing.Date, incoming.Date); days == 0 {
		reasons = append(reasons, "same day")
	} else {
		reasons = append(reasons, fmt.Sprintf("dates %d day(s) apart", days))
	}
	if scoring.DescriptionSimilarity(outgoing.EffectiveDescription(), incoming.EffectiveDescription()) > 0.3 {
		reasons = append(reasons, "similar descriptions")
	}

	return model.TransferGroup{
		Outgoing:     outgoing,
		Incoming:     incoming,
		Amount:       math.Abs(outgoing.Amount),
		Confidence:   d.PairScore(outgoing, incoming),
		DateStart:    start,
		DateEnd:      end,
		MatchReasons: reasons,
	}
}

// suggestDestination guesses a destination account by searching the
// description for another account's name.
func (d *Detector) suggestDestination(txn model.Transaction) string {
	desc := strings.ToLower(txn.EffectiveDescription())
	for id, acct := range d.accountsByID {
		if id == txn.AccountID || acct.Name == "" {
			continue
		}
		if strings.Contains(desc, strings.ToLower(acct.Name)) {
			return id
		}
	}
	return ""
}
