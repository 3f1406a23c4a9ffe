// Package common defines shared sentinel errors used across the engine
// layers. Callers should use errors.Is to match these values and errors.As
// to extract a *CooldownError.
package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Catalog and ownership errors.
	ErrDuplicateName = errors.New("duplicate name")
	ErrInvalidName   = errors.New("invalid name")
	ErrNotOwner      = errors.New("not owner")
	ErrAlreadyOwned  = errors.New("already owned")

	// Exchange and ledger errors.
	ErrSelfTrade         = errors.New("self trade")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")

	// Contest errors.
	ErrEmptyPool      = errors.New("empty pool")
	ErrTicketResolved = errors.New("ticket already resolved")
	ErrCooldownActive = errors.New("cooldown active")
)

// Gate names one of the independent per-user timers.
type Gate string

const (
	GateAttempts Gate = "attempts"
	GateMarriage Gate = "marriage"
	GateCollect  Gate = "collect"
)

// CooldownError reports which gate blocked an action and for how long.
type CooldownError struct {
	Gate      Gate
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active: %s gate, %s remaining", e.Gate, e.Remaining.Round(time.Second))
}

// Is makes every CooldownError match ErrCooldownActive.
func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// NewCooldownError builds a CooldownError for gate g.
func NewCooldownError(g Gate, remaining time.Duration) error {
	return &CooldownError{Gate: g, Remaining: remaining}
}

// domain lists the expected, user-facing failures.
var domain = []error{
	ErrorNotFound, ErrorUnauthorized,
	ErrDuplicateName, ErrInvalidName, ErrNotOwner, ErrAlreadyOwned,
	ErrSelfTrade, ErrInsufficientFunds, ErrInvalidAmount,
	ErrEmptyPool, ErrTicketResolved, ErrCooldownActive,
}

// IsDomain reports whether err is an expected engine failure rather than an
// internal one.
func IsDomain(err error) bool {
	if err == nil || errors.Is(err, ErrorInternal) {
		return false
	}
	for _, d := range domain {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}
