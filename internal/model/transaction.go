package model

import "time"

// Transaction is one append-only journal entry: the set of seat codes
// affected by a committed reservation and the acting user.  Entries are
// never mutated; they exist for audit and receipt purposes and are not
// part of the seat state machine.
type Transaction struct {
	ID        uint64    // transaction.id
	UserID    uint64    // transaction.user_id
	SeatCodes []string  // transaction.seats (JSON array column)
	CreatedAt time.Time // transaction.created_at
}
