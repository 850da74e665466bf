package transfer

import (
	"github.com/digaomatias/mymascada/internal/model"
	"github.com/digaomatias/mymascada/internal/scoring"
)

// Component weights for the reviewer-facing pair score.
const (
	weightAmount      = 0.4
	weightDate        = 0.3
	weightDescription = 0.2
	weightInstitution = 0.1
)

// PairScore computes a weighted likelihood that two legs belong to the same
// transfer. It is surfaced to a human reviewer alongside a pairing; the
// automatic pairer never consults it.
func (d *Detector) PairScore(outgoing, incoming model.Transaction) float64 {
	sameInstitution := d.sameInstitution(outgoing.AccountID, incoming.AccountID)

	amountScore := scoring.AmountScore(outgoing.Amount, incoming.Amount)
	dateScore := scoring.DateScore(outgoing.Date, incoming.Date, outgoing.Amount, sameInstitution)
	descScore := scoring.DescriptionSimilarity(outgoing.EffectiveDescription(), incoming.EffectiveDescription())

	institutionScore := 0.0
	if sameInstitution {
		institutionScore = 1.0
	}

	return weightAmount*amountScore +
		weightDate*dateScore +
		weightDescription*descScore +
		weightInstitution*institutionScore
}

func (d *Detector) sameInstitution(accountA, accountB string) bool {
	a, okA := d.accountsByID[accountA]
	b, okB := d.accountsByID[accountB]
	return okA && okB && a.InstitutionID != "" && a.InstitutionID == b.InstitutionID
}
