package database

import (
	"context"
	"database/sql"
	"fmt"
)

// VenueSeatCodes returns the full fixed venue enumeration: rows A
// through P with seats 1-36, row Q with 1-30 and row R with 1-26,
// 620 seats in total.  The set never changes after provisioning.
func VenueSeatCodes() []string {
	codes := make([]string, 0, 620)
	for row := 'A'; row <= 'P'; row++ {
		for n := 1; n <= 36; n++ {
			codes = append(codes, fmt.Sprintf("%c%d", row, n))
		}
	}
	for n := 1; n <= 30; n++ {
		codes = append(codes, fmt.Sprintf("Q%d", n))
	}
	for n := 1; n <= 26; n++ {
		codes = append(codes, fmt.Sprintf("R%d", n))
	}
	return codes
}

// SeedSeats inserts the venue enumeration into the seat table.  It is
// idempotent: codes that already exist are left untouched, so running
// it on every startup is safe and existing seat state is preserved.
func SeedSeats(ctx context.Context, db *sql.DB) error {
	codes := VenueSeatCodes()
	query := `INSERT IGNORE INTO seat (code, status) VALUES `
	args := make([]interface{}, 0, len(codes)*2)
	for i, code := range codes {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, code, "available")
	}
	_, err := db.ExecContext(ctx, query, args...)
	return err
}
