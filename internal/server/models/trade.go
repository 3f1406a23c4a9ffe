package models

import "time"

// Trade is a pending offer: OffererID gives CollectibleName to ReceiverID
// for Amount currency. Nothing is reserved until confirmation.
type Trade struct {
	ID              int64
	OffererID       string
	CollectibleName string
	ReceiverID      string
	Amount          int64
	CreatedAt       time.Time
}

// TradeOutcome is the terminal state reached by a confirmation attempt.
type TradeOutcome string

const (
	TradeConfirmed TradeOutcome = "confirmed"
	TradeRejected  TradeOutcome = "rejected"
)

// RejectReason explains a rejected confirmation.
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectNotFound          RejectReason = "trade_not_found"
	RejectWrongReceiver     RejectReason = "wrong_receiver"
	RejectOwnershipChanged  RejectReason = "ownership_changed"
	RejectInsufficientFunds RejectReason = "insufficient_funds"
)

// TradeResult is what Confirm returns.
type TradeResult struct {
	Outcome TradeOutcome
	Reason  RejectReason
	Trade   *Trade
}
