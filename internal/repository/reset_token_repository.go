package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"
)

// resetTokenTTL is how long a password reset token stays redeemable.
const resetTokenTTL = time.Hour

// ResetTokenRepo persists and validates password reset tokens.  At most
// one live token exists per user: issuing a new one deletes the user's
// prior unused tokens first.
type ResetTokenRepo struct{ DB *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{DB: db} }

// Issue creates a fresh random token for the user, replacing any unused
// prior token, and returns the raw token with its expiry.
func (r *ResetTokenRepo) Issue(ctx context.Context, userID uint64) (string, time.Time, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	token := hex.EncodeToString(buf)
	exp := time.Now().UTC().Add(resetTokenTTL)

	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM password_reset_token WHERE user_id=? AND used=0", userID); err != nil {
		return "", time.Time{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_reset_token (user_id, token, expires_at, used) VALUES (?,?,?,0)",
		userID, token, exp); err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Validate returns the owning user ID when the token exists, is unused
// and has not expired; otherwise sql.ErrNoRows.
func (r *ResetTokenRepo) Validate(ctx context.Context, token string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		used      bool
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, used FROM password_reset_token WHERE token=? LIMIT 1",
		token).Scan(&userID, &expiresAt, &used)
	if err != nil {
		return 0, err
	}
	if used || time.Now().UTC().After(expiresAt) {
		return 0, sql.ErrNoRows
	}
	return userID, nil
}

// MarkUsed flags a redeemed token so it cannot be replayed.
func (r *ResetTokenRepo) MarkUsed(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE password_reset_token SET used=1 WHERE token=?", token)
	return err
}

// PurgeExpired deletes tokens past their expiry and returns how many
// rows were removed.
func (r *ResetTokenRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM password_reset_token WHERE expires_at < UTC_TIMESTAMP()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
