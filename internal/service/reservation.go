// Package service implements the reservation workflow: it translates
// batch requests into Seat Ledger calls, computes price totals from the
// fixed two-tier table, and triggers the post-commit side effects
// (receipt notification, confirmed-reservation event).
package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ciaapp/seat-reservation/internal/model"
	"github.com/ciaapp/seat-reservation/internal/notifier"
	"github.com/ciaapp/seat-reservation/internal/queue"
	"github.com/ciaapp/seat-reservation/internal/repository"
)

// Ledger is the slice of the Seat Ledger the workflow depends on.
type Ledger interface {
	PreReserve(ctx context.Context, userID uint64, codes []string) error
	Reserve(ctx context.Context, userID uint64, picks []repository.SeatSelection) (*model.Transaction, error)
}

// Publisher emits events for committed reservations.
type Publisher interface {
	PublishReservationConfirmed(ctx context.Context, event queue.ReservationConfirmedEvent) error
}

// PriceTable is the fixed two-tier ticket pricing.  Totals are computed
// exclusively from the confirmed tier assignment; a client-supplied
// price is never trusted.
type PriceTable struct {
	FullCents uint32
	HalfCents uint32
}

// Total sums the batch price for the given tier picks.
func (p PriceTable) Total(picks []repository.SeatSelection) uint32 {
	var total uint32
	for _, pick := range picks {
		if pick.IsHalfPrice {
			total += p.HalfCents
		} else {
			total += p.FullCents
		}
	}
	return total
}

// ValidationError reports a malformed batch request: empty selection,
// duplicate codes or a disallowed proof file.  Nothing was mutated.
type ValidationError struct {
	Reason string
	Codes  []string
}

func (e *ValidationError) Error() string {
	if len(e.Codes) > 0 {
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Codes, ", "))
	}
	return e.Reason
}

// NotificationError reports that the seat transition committed durably
// but the receipt notification failed.  Callers must surface this
// distinctly from seat-state failures: the reservation stands.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("reservation committed but notification failed: %v", e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// proofExtensions is the allow-list for proof-of-payment uploads.
var proofExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// CheckProofFilename validates a proof-of-payment filename against the
// extension allow-list before any seat state is touched.
func CheckProofFilename(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !proofExtensions[ext] {
		return &ValidationError{Reason: fmt.Sprintf("file type %q not allowed", ext)}
	}
	return nil
}

// ReservationService orchestrates pre-reserve and reserve requests.
type ReservationService struct {
	ledger    Ledger
	notifier  notifier.Notifier
	publisher Publisher
	prices    PriceTable
}

// NewReservationService constructs the workflow.  The publisher may be
// nil when no broker is configured; events are then skipped.
func NewReservationService(ledger Ledger, n notifier.Notifier, pub Publisher, prices PriceTable) *ReservationService {
	if ledger == nil || n == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{ledger: ledger, notifier: n, publisher: pub, prices: prices}
}

// normalizeCodes trims and uppercases seat codes and rejects empty or
// duplicated entries.
func normalizeCodes(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, &ValidationError{Reason: "seat selection is empty"}
	}
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	var dups []string
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			return nil, &ValidationError{Reason: "empty seat code in selection"}
		}
		if seen[c] {
			dups = append(dups, c)
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return nil, &ValidationError{Reason: "duplicate seat codes", Codes: dups}
	}
	return out, nil
}

// PreReserve validates the batch shape and forwards it to the ledger.
func (s *ReservationService) PreReserve(ctx context.Context, ident model.Identity, codes []string) error {
	normalized, err := normalizeCodes(codes)
	if err != nil {
		return err
	}
	return s.ledger.PreReserve(ctx, ident.UserID, normalized)
}

// ReserveResult is what a successful confirmation returns to the client.
type ReserveResult struct {
	Transaction *model.Transaction
	TotalCents  uint32
}

// Reserve confirms the user's pre-reserved seats with their tier picks
// and a proof-of-payment attachment.  After the ledger commit it emits
// the confirmed event (best-effort) and sends the receipt email; a
// notification failure is returned as *NotificationError alongside the
// non-nil result, because the reservation itself already stands.
func (s *ReservationService) Reserve(ctx context.Context, ident model.Identity, picks []repository.SeatSelection, proof *notifier.Attachment) (*ReserveResult, error) {
	codes := make([]string, len(picks))
	for i, p := range picks {
		codes[i] = p.Code
	}
	normalized, err := normalizeCodes(codes)
	if err != nil {
		return nil, err
	}
	if proof == nil {
		return nil, &ValidationError{Reason: "proof of payment is required"}
	}
	if err := CheckProofFilename(proof.Filename); err != nil {
		return nil, err
	}
	for i := range picks {
		picks[i].Code = normalized[i]
	}

	entry, err := s.ledger.Reserve(ctx, ident.UserID, picks)
	if err != nil {
		return nil, err
	}
	result := &ReserveResult{Transaction: entry, TotalCents: s.prices.Total(picks)}

	if s.publisher != nil {
		event := queue.ReservationConfirmedEvent{
			TransactionID: entry.ID,
			UserID:        ident.UserID,
			UserName:      ident.FullName,
			SeatCodes:     entry.SeatCodes,
			TotalCents:    result.TotalCents,
			ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.publisher.PublishReservationConfirmed(ctx, event); err != nil {
			log.Printf("reservation: event publish failed for tx %d: %v", entry.ID, err)
		}
	}

	subject := "Seat reservation received"
	body := receiptBody(ident.FullName, picks, result.TotalCents)
	if err := s.notifier.Notify(ctx, ident.Email, subject, body, proof); err != nil {
		return result, &NotificationError{Err: err}
	}
	return result, nil
}

// receiptBody renders the plain-text receipt summary.
func receiptBody(name string, picks []repository.SeatSelection, totalCents uint32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nYour seat reservation was received and is awaiting review:\n\n", name)
	for _, p := range picks {
		tier := "full price"
		if p.IsHalfPrice {
			tier = "half price"
		}
		fmt.Fprintf(&b, "  seat %s (%s)\n", p.Code, tier)
	}
	fmt.Fprintf(&b, "\nTotal: %d.%02d\n", totalCents/100, totalCents%100)
	b.WriteString("\nYou will be notified once an administrator approves the payment.\n")
	return b.String()
}
