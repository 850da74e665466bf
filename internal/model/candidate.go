package model

import (
	"fmt"
	"time"
)

// CandidateStatus tracks the lifecycle of a categorization candidate.
// Candidates are append-only: they transition state but are never deleted.
type CandidateStatus string

// Candidate status constants.
const (
	CandidatePending  CandidateStatus = "PENDING"
	CandidateApplied  CandidateStatus = "APPLIED"
	CandidateRejected CandidateStatus = "REJECTED"
)

// CategorizationMethod identifies which evidence source produced a candidate.
type CategorizationMethod string

// Categorization method constants.
const (
	MethodRule             CategorizationMethod = "RULE"
	MethodLLM              CategorizationMethod = "LLM"
	MethodML               CategorizationMethod = "ML"
	MethodMerchantPattern  CategorizationMethod = "MERCHANT_PATTERN"
	MethodAmountRecurrence CategorizationMethod = "AMOUNT_RECURRENCE"
	MethodDateRecurrence   CategorizationMethod = "DATE_RECURRENCE"
)

// CategorizationCandidate is a proposed (transaction, category) pairing.
// A transaction may hold multiple Pending candidates from different methods,
// but at most one of them may ever reach Applied.
type CategorizationCandidate struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ID              string
	TransactionID   string
	Method          CategorizationMethod
	Reasoning       string
	Status          CandidateStatus
	ProcessedBy     string
	CategoryID      int
	ConfidenceScore float64
}

// candidateTransitions is the set of legal status transitions.
var candidateTransitions = map[CandidateStatus][]CandidateStatus{
	CandidatePending:  {CandidateApplied, CandidateRejected},
	CandidateApplied:  {},
	CandidateRejected: {},
}

// CanTransition reports whether a candidate may move from one status to another.
func CanTransition(from, to CandidateStatus) bool {
	for _, allowed := range candidateTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an error describing why a transition is illegal,
// or nil when it is allowed.
func ValidateTransition(from, to CandidateStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("illegal candidate transition %s -> %s", from, to)
	}
	return nil
}
