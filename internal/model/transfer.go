package model

import "time"

// TransferGroup pairs the two legs of an internal transfer between accounts.
// The outgoing leg always carries a negative amount, the incoming leg a
// positive one, and the legs always belong to different accounts.
type TransferGroup struct {
	Outgoing     Transaction
	Incoming     Transaction
	MatchReasons []string
	Amount       float64 // Absolute transfer amount
	Confidence   float64
	DateStart    time.Time
	DateEnd      time.Time
}

// UnmatchedTransfer surfaces a transaction that looked like it needed a
// pairing decision but found no valid counterpart.
type UnmatchedTransfer struct {
	Transaction        Transaction
	SuggestedAccountID string // Guessed destination account, may be empty
	Reason             string
}
