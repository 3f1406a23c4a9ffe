package models

import "time"

// Cooldown is the per-user timer record shared by the three gates. Nil
// pointers mean "never stamped" (or cleared by an administrative reset).
type Cooldown struct {
	UserID         string
	Attempts       int
	AttemptsExpiry *time.Time
	LastMarriage   *time.Time
	LastCollect    *time.Time
}
