// Package models defines the typed records persisted by the engine, one per
// table, plus the read projections the engine hands back to callers.
package models

import "time"

// Collectible is a catalog entry. Name is unique ignoring case and never
// changes once created. Claimed caches "an ownership row exists".
type Collectible struct {
	ID        int64
	Name      string
	Image     string
	Claimed   bool
	CreatedAt time.Time
}

// Profile is a collectible together with its current owner, if any.
type Profile struct {
	Collectible *Collectible
	OwnerID     string
}

// Owned reports whether the profile has an owner.
func (p *Profile) Owned() bool {
	return p.OwnerID != ""
}
