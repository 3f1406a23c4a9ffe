package models

import "time"

// TicketState is the one-shot lifecycle of a presented contest target.
type TicketState string

const (
	TicketPresented TicketState = "presented"
	TicketResolved  TicketState = "resolved"
)

// ContestOutcome is the result of resolving a ticket.
type ContestOutcome string

const (
	ContestWon  ContestOutcome = "won"
	ContestLost ContestOutcome = "lost"
)

// ContestTicket records one presented collectible for one user. It can be
// resolved exactly once.
type ContestTicket struct {
	ID              string
	UserID          string
	CollectibleName string
	Image           string
	State           TicketState
	PresentedAt     time.Time
	ResolvedAt      *time.Time
	UserRoll        int
	OpponentRoll    int
	Outcome         ContestOutcome
}

// ContestResult is the outcome of Resolve. OpponentRoll already includes
// the collectible's advantage. Contested is set when the user won the roll
// but someone else claimed the collectible first.
type ContestResult struct {
	Ticket       *ContestTicket
	Outcome      ContestOutcome
	UserRoll     int
	OpponentRoll int
	Contested    bool
}
