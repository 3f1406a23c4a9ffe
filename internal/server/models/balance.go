package models

import "time"

// Balance is a user's currency amount. It is created lazily on first credit.
type Balance struct {
	UserID    string
	Amount    int64
	CreatedAt time.Time
}

// RankEntry is one line of the richest-users ranking.
type RankEntry struct {
	Position int
	UserID   string
	Amount   int64
}
