package domain

import "time"

// Account represents a registered member of the board.
type Account struct {
	ID           string
	LoginID      string
	PasswordHash string
	Email        string
	Name         string
	Tel          string
	Birth        string
	Address      string
	Gender       string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountUpdate carries the mutable profile fields for an update.
// A nil pointer leaves the column untouched.
type AccountUpdate struct {
	PasswordHash *string
	Tel          *string
	Birth        *string
	Address      *string
	Gender       *string
}
