// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published after a reservation batch has
// durably committed.  It carries enough information for downstream
// consumers (analytics, back-office tooling) without querying the
// primary database.
type ReservationConfirmedEvent struct {
	TransactionID uint64   `json:"transaction_id"`
	UserID        uint64   `json:"user_id"`
	UserName      string   `json:"user_name"`
	SeatCodes     []string `json:"seats"`
	TotalCents    uint32   `json:"total_cents"`
	ConfirmedAt   string   `json:"confirmed_at"`
}
