package model

import "time"

// SeatStatus enumerates the lifecycle states of a venue seat.  A seat
// starts as available, is pre-reserved while the user is choosing,
// becomes reserved once the user confirms with a proof of payment,
// moves to occupied after an administrator approves the payment, and
// finally to used when the ticket is validated at the door.
type SeatStatus string

const (
	StatusAvailable   SeatStatus = "available"
	StatusPreReserved SeatStatus = "pre-reserved"
	StatusReserved    SeatStatus = "reserved"
	StatusOccupied    SeatStatus = "occupied"
	StatusUsed        SeatStatus = "used"
)

// ValidSeatStatus reports whether s names one of the known lifecycle states.
func ValidSeatStatus(s string) bool {
	switch SeatStatus(s) {
	case StatusAvailable, StatusPreReserved, StatusReserved, StatusOccupied, StatusUsed:
		return true
	}
	return false
}

// Seat describes one seat of the fixed venue enumeration.  Exactly one
// row exists per code for the life of the system; rows are only ever
// mutated, never inserted or deleted after provisioning.
//
// Invariant: a seat with Status == available has UserID == nil; every
// other status carries a non-nil owner.  IsHalfPrice is meaningful only
// once the seat is owned.
type Seat struct {
	ID          uint64     // seat.id
	UserID      *uint64    // seat.user_id (nullable owner back-reference)
	Code        string     // seat.code, e.g. "A1", "R26"
	Status      SeatStatus // seat.status
	IsHalfPrice bool       // seat.is_half_price (ticket tier)
	CreatedAt   time.Time  // seat.created_at
	UpdatedAt   time.Time  // seat.updated_at
}

// OwnedBy reports whether the seat is currently owned by the given user.
func (s *Seat) OwnedBy(userID uint64) bool {
	return s.UserID != nil && *s.UserID == userID
}
