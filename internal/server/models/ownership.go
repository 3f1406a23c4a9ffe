package models

import "time"

// Ownership ties one user to one collectible. CollectibleName is unique
// across all rows; rows are deleted and re-created, never updated.
type Ownership struct {
	ID              int64
	UserID          string
	CollectibleName string
	AcquiredAt      time.Time
}

// Page is one window of a user's owned collectibles.
type Page struct {
	Items      []string
	Page       int
	TotalPages int
	Total      int
}
