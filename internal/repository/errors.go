// Package repository defines the data access layer.  This file holds
// the error types shared across repositories.  Guard violations carry
// the specific offending seat codes so that handlers can tell clients
// exactly which seats were missing, taken or in the wrong state, and
// the client can re-render the seat map accurately.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ciaapp/seat-reservation/internal/model"
)

// ErrEntryCodeMismatch is returned by door validation when the
// presented code does not match the digest derived from the seat's
// current stored state.  It covers both tampered codes and codes
// minted for a different tier.
var ErrEntryCodeMismatch = errors.New("entry code mismatch")

// NotFoundError reports seat codes that do not exist in the venue
// enumeration.  The whole batch is rejected; Codes lists every code
// that failed the lookup, not just the first.
type NotFoundError struct {
	Codes []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("seat(s) not found: %s", strings.Join(e.Codes, ", "))
}

// SeatConflict describes one seat that violated a state-machine guard:
// the state the transition required versus the state actually stored.
type SeatConflict struct {
	Code     string           `json:"code"`
	Expected model.SeatStatus `json:"expected"`
	Actual   model.SeatStatus `json:"actual"`
}

// ConflictError aborts a batch transition.  Every offending seat of the
// batch is listed; no seat in the batch was mutated.  Conflicts are
// surfaced immediately and never retried, since they represent real
// business races (another user got there first).
type ConflictError struct {
	Seats []SeatConflict
}

func (e *ConflictError) Error() string {
	codes := make([]string, 0, len(e.Seats))
	for _, s := range e.Seats {
		codes = append(codes, s.Code)
	}
	return fmt.Sprintf("seat(s) not available: %s", strings.Join(codes, ", "))
}
