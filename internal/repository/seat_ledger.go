package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/ciaapp/seat-reservation/internal/model"
)

// SeatLedger is the sole authority over seat status, ownership and tier.
// Every mutation goes through one of its batch-transition methods, all
// of which share the same discipline: begin a transaction, lock exactly
// the referenced seat rows with SELECT ... FOR UPDATE in a fixed sort
// order, evaluate every guard over the whole batch, then either apply
// all transitions and commit or roll back with a typed error.  Locks are
// held for the transaction lifetime only; a pre-reservation is a
// persisted status, not a held lock.
type SeatLedger struct {
	db      *sql.DB
	journal *TransactionRepo
}

// NewSeatLedger constructs a SeatLedger.  The journal is written inside
// the same transaction as the reserve mutation it documents, so the
// ledger owns the reference.
func NewSeatLedger(db *sql.DB, journal *TransactionRepo) *SeatLedger {
	return &SeatLedger{db: db, journal: journal}
}

// DB exposes the underlying handle for callers that need to compose
// transactions (tests, provisioning).
func (l *SeatLedger) DB() *sql.DB { return l.db }

// SeatSelection names one seat of a reserve batch together with the
// ticket tier the user picked for it.
type SeatSelection struct {
	Code        string
	IsHalfPrice bool
}

// withTx runs fn inside a transaction, committing on nil error and
// rolling back otherwise.  Guard failures inside fn therefore abort the
// whole batch with no partial mutation observable externally.
func (l *SeatLedger) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// lockSeatsTx acquires exclusive row locks on the seats named by codes,
// in ascending code order so that two concurrent batches touching an
// overlapping set always acquire in the same order and cannot deadlock.
// Every requested code must exist; missing codes abort with a
// *NotFoundError listing all of them.
func lockSeatsTx(ctx context.Context, tx *sql.Tx, codes []string) (map[string]*model.Seat, error) {
	sorted := append([]string(nil), codes...)
	sort.Strings(sorted)

	placeholders := strings.Repeat("?,", len(sorted))
	placeholders = placeholders[:len(placeholders)-1]
	query := `SELECT id, user_id, code, status, is_half_price FROM seat
	          WHERE code IN (` + placeholders + `) ORDER BY code FOR UPDATE`
	args := make([]interface{}, len(sorted))
	for i, c := range sorted {
		args[i] = c
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make(map[string]*model.Seat, len(sorted))
	for rows.Next() {
		var s model.Seat
		var owner sql.NullInt64
		if err := rows.Scan(&s.ID, &owner, &s.Code, &s.Status, &s.IsHalfPrice); err != nil {
			return nil, err
		}
		if owner.Valid {
			uid := uint64(owner.Int64)
			s.UserID = &uid
		}
		seats[s.Code] = &s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seats) != len(sorted) {
		missing := make([]string, 0, len(sorted)-len(seats))
		for _, c := range sorted {
			if _, ok := seats[c]; !ok {
				missing = append(missing, c)
			}
		}
		return nil, &NotFoundError{Codes: missing}
	}
	return seats, nil
}

// PreReserve atomically claims the requested seats for the user and
// releases the user's previously pre-reserved seats that are absent
// from the new selection.  Guards: every requested seat must exist and
// be either available or already pre-reserved by the same user.  Any
// violation aborts the whole batch.
func (l *SeatLedger) PreReserve(ctx context.Context, userID uint64, codes []string) error {
	return l.withTx(ctx, func(tx *sql.Tx) error {
		// Lock the union of the requested seats and the user's current
		// pre-reservations in one statement, so the superseding release
		// and the new claims happen under the same holds.
		sorted := append([]string(nil), codes...)
		sort.Strings(sorted)
		placeholders := strings.Repeat("?,", len(sorted))
		placeholders = placeholders[:len(placeholders)-1]
		query := `SELECT id, user_id, code, status, is_half_price FROM seat
		          WHERE code IN (` + placeholders + `)
		             OR (user_id = ? AND status = ?)
		          ORDER BY code FOR UPDATE`
		args := make([]interface{}, 0, len(sorted)+2)
		for _, c := range sorted {
			args = append(args, c)
		}
		args = append(args, userID, string(model.StatusPreReserved))

		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		locked := make(map[string]*model.Seat)
		for rows.Next() {
			var s model.Seat
			var owner sql.NullInt64
			if err := rows.Scan(&s.ID, &owner, &s.Code, &s.Status, &s.IsHalfPrice); err != nil {
				rows.Close()
				return err
			}
			if owner.Valid {
				uid := uint64(owner.Int64)
				s.UserID = &uid
			}
			locked[s.Code] = &s
		}
		if err := rows.Close(); err != nil {
			return err
		}

		requested := make(map[string]bool, len(sorted))
		for _, c := range sorted {
			requested[c] = true
		}

		var missing []string
		var conflicts []SeatConflict
		var claimIDs []uint64
		var releaseIDs []uint64
		for _, c := range sorted {
			seat, ok := locked[c]
			if !ok {
				missing = append(missing, c)
				continue
			}
			switch {
			case seat.Status == model.StatusAvailable:
				claimIDs = append(claimIDs, seat.ID)
			case seat.Status == model.StatusPreReserved && seat.OwnedBy(userID):
				// Re-selecting an own pre-reservation is a no-op claim.
				claimIDs = append(claimIDs, seat.ID)
			default:
				conflicts = append(conflicts, SeatConflict{
					Code: c, Expected: model.StatusAvailable, Actual: seat.Status,
				})
			}
		}
		if len(missing) > 0 {
			return &NotFoundError{Codes: missing}
		}
		if len(conflicts) > 0 {
			return &ConflictError{Seats: conflicts}
		}

		// The user's pre-reserved seats that fell out of the selection
		// go back to available with the tier cleared.
		for code, seat := range locked {
			if !requested[code] && seat.Status == model.StatusPreReserved && seat.OwnedBy(userID) {
				releaseIDs = append(releaseIDs, seat.ID)
			}
		}
		if len(releaseIDs) > 0 {
			if err := bulkSetStatusTx(ctx, tx, releaseIDs,
				model.StatusAvailable, nil, false); err != nil {
				return err
			}
		}
		return bulkSetStatusTx(ctx, tx, claimIDs, model.StatusPreReserved, &userID, false)
	})
}

// Reserve atomically confirms a pre-reservation: every selected seat
// must currently be pre-reserved by the same user.  On success each
// seat moves to reserved with its tier stamped, and one journal entry
// covering the whole batch is appended within the same commit boundary.
func (l *SeatLedger) Reserve(ctx context.Context, userID uint64, picks []SeatSelection) (*model.Transaction, error) {
	codes := make([]string, len(picks))
	tier := make(map[string]bool, len(picks))
	for i, p := range picks {
		codes[i] = p.Code
		tier[p.Code] = p.IsHalfPrice
	}

	var entry *model.Transaction
	err := l.withTx(ctx, func(tx *sql.Tx) error {
		seats, err := lockSeatsTx(ctx, tx, codes)
		if err != nil {
			return err
		}
		var conflicts []SeatConflict
		for _, c := range codes {
			seat := seats[c]
			if seat.Status != model.StatusPreReserved || !seat.OwnedBy(userID) {
				conflicts = append(conflicts, SeatConflict{
					Code: c, Expected: model.StatusPreReserved, Actual: seat.Status,
				})
			}
		}
		if len(conflicts) > 0 {
			return &ConflictError{Seats: conflicts}
		}
		const upd = `UPDATE seat SET status = ?, is_half_price = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
		for _, c := range codes {
			if _, err := tx.ExecContext(ctx, upd, string(model.StatusReserved), tier[c], seats[c].ID); err != nil {
				return err
			}
		}
		entry, err = l.journal.RecordTx(ctx, tx, userID, codes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Approve moves a single reserved seat to occupied.  It is the admin
// acknowledgement that the payment proof checked out.
func (l *SeatLedger) Approve(ctx context.Context, code string) error {
	return l.transitionOne(ctx, code, model.StatusReserved, model.StatusOccupied, false)
}

// Reprove rejects an occupied seat: it returns to available and both
// the owner and the tier are cleared.
func (l *SeatLedger) Reprove(ctx context.Context, code string) error {
	return l.transitionOne(ctx, code, model.StatusOccupied, model.StatusAvailable, true)
}

// transitionOne is the single-seat guarded transition used by the admin
// operations.  clearOwner also resets the tier flag.
func (l *SeatLedger) transitionOne(ctx context.Context, code string, from, to model.SeatStatus, clearOwner bool) error {
	return l.withTx(ctx, func(tx *sql.Tx) error {
		seats, err := lockSeatsTx(ctx, tx, []string{code})
		if err != nil {
			return err
		}
		seat := seats[code]
		if seat.Status != from {
			return &ConflictError{Seats: []SeatConflict{{Code: code, Expected: from, Actual: seat.Status}}}
		}
		if clearOwner {
			return bulkSetStatusTx(ctx, tx, []uint64{seat.ID}, to, nil, false)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE seat SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`,
			string(to), seat.ID)
		return err
	})
}

// VerifyFunc checks a presented entry code against a seat's current
// stored state.  The ledger takes a function rather than the codec
// itself so that the digest scheme stays outside the storage layer.
type VerifyFunc func(seatCode string, status model.SeatStatus, isHalfPrice bool) bool

// DoorValidate admits a ticket holder: the seat must currently be
// occupied and the presented code must verify against the stored
// status and tier (never against caller-supplied values).  On success
// the seat transitions to used, which makes the code semantically
// stale — a second validation fails the occupied guard.
func (l *SeatLedger) DoorValidate(ctx context.Context, code string, verify VerifyFunc) (*model.Seat, error) {
	var validated *model.Seat
	err := l.withTx(ctx, func(tx *sql.Tx) error {
		seats, err := lockSeatsTx(ctx, tx, []string{code})
		if err != nil {
			return err
		}
		seat := seats[code]
		if seat.Status != model.StatusOccupied {
			return &ConflictError{Seats: []SeatConflict{{Code: code, Expected: model.StatusOccupied, Actual: seat.Status}}}
		}
		if !verify(seat.Code, seat.Status, seat.IsHalfPrice) {
			return ErrEntryCodeMismatch
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE seat SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`,
			string(model.StatusUsed), seat.ID); err != nil {
			return err
		}
		seat.Status = model.StatusUsed
		validated = seat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return validated, nil
}

// bulkSetStatusTx updates status, owner and tier for a set of seat IDs.
// A nil owner writes NULL.  Passing an empty ID set is a no-op.
func bulkSetStatusTx(ctx context.Context, tx *sql.Tx, ids []uint64, status model.SeatStatus, owner *uint64, isHalfPrice bool) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := `UPDATE seat SET status = ?, user_id = ?, is_half_price = ?, updated_at = UTC_TIMESTAMP()
	          WHERE id IN (` + placeholders + `)`
	args := make([]interface{}, 0, len(ids)+3)
	var ownerArg interface{}
	if owner != nil {
		ownerArg = *owner
	}
	args = append(args, string(status), ownerArg, isHalfPrice)
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListAll returns every seat of the venue ordered by code.  Used for
// the seat-map listing; no locks are taken.
func (l *SeatLedger) ListAll(ctx context.Context) ([]model.Seat, error) {
	return l.querySeats(ctx, `SELECT id, user_id, code, status, is_half_price, created_at, updated_at
	                          FROM seat ORDER BY code`)
}

// ListByUser returns the seats currently owned by the given user.
func (l *SeatLedger) ListByUser(ctx context.Context, userID uint64) ([]model.Seat, error) {
	return l.querySeats(ctx, `SELECT id, user_id, code, status, is_half_price, created_at, updated_at
	                          FROM seat WHERE user_id = ? ORDER BY code`, userID)
}

func (l *SeatLedger) querySeats(ctx context.Context, query string, args ...interface{}) ([]model.Seat, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		var owner sql.NullInt64
		if err := rows.Scan(&s.ID, &owner, &s.Code, &s.Status, &s.IsHalfPrice, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if owner.Valid {
			uid := uint64(owner.Int64)
			s.UserID = &uid
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// PendingSeat is one reserved seat awaiting admin review.
type PendingSeat struct {
	Code        string `json:"code"`
	IsHalfPrice bool   `json:"is_half_price"`
}

// PendingReservation groups a user's reserved seats for the admin
// review list.
type PendingReservation struct {
	UserName string        `json:"user_name"`
	Seats    []PendingSeat `json:"seats"`
}

// PendingReservations returns all seats in reserved status joined with
// their owners, grouped per user in a stable order.
func (l *SeatLedger) PendingReservations(ctx context.Context) ([]PendingReservation, error) {
	const q = `SELECT u.full_name, s.code, s.is_half_price
	           FROM seat s
	           JOIN user u ON u.id = s.user_id
	           WHERE s.status = ?
	           ORDER BY u.full_name, s.code`
	rows, err := l.db.QueryContext(ctx, q, string(model.StatusReserved))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]PendingReservation, 0)
	index := make(map[string]int)
	for rows.Next() {
		var name string
		var seat PendingSeat
		if err := rows.Scan(&name, &seat.Code, &seat.IsHalfPrice); err != nil {
			return nil, err
		}
		i, ok := index[name]
		if !ok {
			i = len(result)
			index[name] = i
			result = append(result, PendingReservation{UserName: name})
		}
		result[i].Seats = append(result[i].Seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
