package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ciaapp/seat-reservation/internal/model"
)

// TransactionRepo appends to and reads the transaction journal.  The
// journal is append-only: entries are never mutated, so concurrent
// appends need no ordering guarantee beyond per-row atomicity.
type TransactionRepo struct {
	db *sql.DB
}

// NewTransactionRepo returns a TransactionRepo bound to the given database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// RecordTx appends one journal entry covering a whole seat batch.  It
// must run inside the same transaction as the seat mutation it
// documents, so the journal never references a reservation that did
// not durably happen.
func (r *TransactionRepo) RecordTx(ctx context.Context, tx *sql.Tx, userID uint64, seatCodes []string) (*model.Transaction, error) {
	seats, err := json.Marshal(seatCodes)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO transaction (user_id, seats) VALUES (?, ?)`,
		userID, string(seats))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	entry := &model.Transaction{ID: uint64(id), UserID: userID, SeatCodes: seatCodes}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at FROM transaction WHERE id = ?`, entry.ID,
	).Scan(&entry.CreatedAt); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListByUser returns the user's journal entries, newest first.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, seats, created_at FROM transaction
		 WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.Transaction, 0)
	for rows.Next() {
		var t model.Transaction
		var seats []byte
		if err := rows.Scan(&t.ID, &t.UserID, &seats, &t.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(seats, &t.SeatCodes); err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
