package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciaapp/seat-reservation/internal/model"
	"github.com/ciaapp/seat-reservation/internal/notifier"
	"github.com/ciaapp/seat-reservation/internal/queue"
	"github.com/ciaapp/seat-reservation/internal/repository"
)

// Function-field fakes keep each test's behavior next to its assertions.

type fakeLedger struct {
	preReserveFn func(ctx context.Context, userID uint64, codes []string) error
	reserveFn    func(ctx context.Context, userID uint64, picks []repository.SeatSelection) (*model.Transaction, error)
}

func (f *fakeLedger) PreReserve(ctx context.Context, userID uint64, codes []string) error {
	return f.preReserveFn(ctx, userID, codes)
}

func (f *fakeLedger) Reserve(ctx context.Context, userID uint64, picks []repository.SeatSelection) (*model.Transaction, error) {
	return f.reserveFn(ctx, userID, picks)
}

type fakeNotifier struct {
	notifyFn func(ctx context.Context, recipient, subject, body string, attachment *notifier.Attachment) error
	calls    int
}

func (f *fakeNotifier) Notify(ctx context.Context, recipient, subject, body string, attachment *notifier.Attachment) error {
	f.calls++
	if f.notifyFn == nil {
		return nil
	}
	return f.notifyFn(ctx, recipient, subject, body, attachment)
}

type fakePublisher struct {
	publishFn func(ctx context.Context, event queue.ReservationConfirmedEvent) error
	events    []queue.ReservationConfirmedEvent
}

func (f *fakePublisher) PublishReservationConfirmed(ctx context.Context, event queue.ReservationConfirmedEvent) error {
	f.events = append(f.events, event)
	if f.publishFn == nil {
		return nil
	}
	return f.publishFn(ctx, event)
}

func testIdentity() model.Identity {
	return model.Identity{UserID: 7, FullName: "Ada Lovelace", Email: "ada@example.com"}
}

func testPrices() PriceTable {
	return PriceTable{FullCents: 2000, HalfCents: 1000}
}

func pdfProof() *notifier.Attachment {
	return &notifier.Attachment{Filename: "receipt.pdf", ContentType: "application/pdf", Data: []byte("%PDF-")}
}

func stubReserve(tx *model.Transaction) *fakeLedger {
	return &fakeLedger{
		reserveFn: func(_ context.Context, _ uint64, _ []repository.SeatSelection) (*model.Transaction, error) {
			return tx, nil
		},
	}
}

func TestPriceTableTotal(t *testing.T) {
	p := testPrices()
	picks := []repository.SeatSelection{
		{Code: "A1", IsHalfPrice: false},
		{Code: "A2", IsHalfPrice: true},
		{Code: "A3", IsHalfPrice: true},
	}
	assert.Equal(t, uint32(4000), p.Total(picks))
	assert.Equal(t, uint32(0), p.Total(nil))
}

func TestCheckProofFilename(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.jpg", "c.JPEG", "d.png", "e.gif", "dir/f.PNG"} {
		assert.NoError(t, CheckProofFilename(name), name)
	}
	for _, name := range []string{"a.exe", "b.svg", "c", "d.pdf.sh", "e.txt"} {
		err := CheckProofFilename(name)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, name)
	}
}

func TestPreReserveNormalizesCodes(t *testing.T) {
	var got []string
	ledger := &fakeLedger{
		preReserveFn: func(_ context.Context, userID uint64, codes []string) error {
			assert.Equal(t, uint64(7), userID)
			got = codes
			return nil
		},
	}
	svc := NewReservationService(ledger, &fakeNotifier{}, nil, testPrices())

	require.NoError(t, svc.PreReserve(context.Background(), testIdentity(), []string{" a1 ", "b2"}))
	assert.Equal(t, []string{"A1", "B2"}, got)
}

func TestPreReserveRejectsBadBatches(t *testing.T) {
	ledger := &fakeLedger{
		preReserveFn: func(context.Context, uint64, []string) error {
			t.Fatal("ledger must not be called for an invalid batch")
			return nil
		},
	}
	svc := NewReservationService(ledger, &fakeNotifier{}, nil, testPrices())

	var vErr *ValidationError

	err := svc.PreReserve(context.Background(), testIdentity(), nil)
	require.ErrorAs(t, err, &vErr)

	err = svc.PreReserve(context.Background(), testIdentity(), []string{"A1", ""})
	require.ErrorAs(t, err, &vErr)

	err = svc.PreReserve(context.Background(), testIdentity(), []string{"A1", "a1", "B2", "b2"})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"A1", "B2"}, vErr.Codes, "duplicates are named, sorted")
}

func TestReserveHappyPath(t *testing.T) {
	tx := &model.Transaction{ID: 11, UserID: 7, SeatCodes: []string{"A1", "A2"}, CreatedAt: time.Now()}
	ledger := stubReserve(tx)
	mail := &fakeNotifier{}
	pub := &fakePublisher{}
	svc := NewReservationService(ledger, mail, pub, testPrices())

	picks := []repository.SeatSelection{
		{Code: "a1", IsHalfPrice: false},
		{Code: "a2", IsHalfPrice: true},
	}
	result, err := svc.Reserve(context.Background(), testIdentity(), picks, pdfProof())
	require.NoError(t, err)
	assert.Equal(t, uint64(11), result.Transaction.ID)
	assert.Equal(t, uint32(3000), result.TotalCents)
	assert.Equal(t, 1, mail.calls)

	require.Len(t, pub.events, 1)
	assert.Equal(t, uint64(11), pub.events[0].TransactionID)
	assert.Equal(t, []string{"A1", "A2"}, pub.events[0].SeatCodes)
	assert.Equal(t, uint32(3000), pub.events[0].TotalCents)
}

func TestReserveRequiresProof(t *testing.T) {
	svc := NewReservationService(stubReserve(nil), &fakeNotifier{}, nil, testPrices())

	var vErr *ValidationError
	_, err := svc.Reserve(context.Background(), testIdentity(),
		[]repository.SeatSelection{{Code: "A1"}}, nil)
	require.ErrorAs(t, err, &vErr)

	_, err = svc.Reserve(context.Background(), testIdentity(),
		[]repository.SeatSelection{{Code: "A1"}},
		&notifier.Attachment{Filename: "proof.exe"})
	require.ErrorAs(t, err, &vErr)
}

func TestReservePropagatesLedgerErrors(t *testing.T) {
	conflict := &repository.ConflictError{Seats: []repository.SeatConflict{
		{Code: "A1", Expected: model.StatusPreReserved, Actual: model.StatusReserved},
	}}
	ledger := &fakeLedger{
		reserveFn: func(context.Context, uint64, []repository.SeatSelection) (*model.Transaction, error) {
			return nil, conflict
		},
	}
	mail := &fakeNotifier{}
	svc := NewReservationService(ledger, mail, nil, testPrices())

	result, err := svc.Reserve(context.Background(), testIdentity(),
		[]repository.SeatSelection{{Code: "A1"}}, pdfProof())
	assert.Nil(t, result)
	var cErr *repository.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, 0, mail.calls, "no receipt for a failed reservation")
}

func TestReserveNotificationFailureKeepsReservation(t *testing.T) {
	tx := &model.Transaction{ID: 5, UserID: 7, SeatCodes: []string{"A1"}}
	smtpDown := errors.New("smtp: connection refused")
	mail := &fakeNotifier{
		notifyFn: func(context.Context, string, string, string, *notifier.Attachment) error {
			return smtpDown
		},
	}
	svc := NewReservationService(stubReserve(tx), mail, nil, testPrices())

	result, err := svc.Reserve(context.Background(), testIdentity(),
		[]repository.SeatSelection{{Code: "A1"}}, pdfProof())

	// The reservation committed; the caller gets the result AND a typed
	// notification error, never a seat-state error.
	require.NotNil(t, result)
	assert.Equal(t, uint64(5), result.Transaction.ID)
	var nErr *NotificationError
	require.ErrorAs(t, err, &nErr)
	assert.ErrorIs(t, err, smtpDown)
}

func TestReservePublisherFailureIsBestEffort(t *testing.T) {
	tx := &model.Transaction{ID: 6, UserID: 7, SeatCodes: []string{"A1"}}
	pub := &fakePublisher{
		publishFn: func(context.Context, queue.ReservationConfirmedEvent) error {
			return errors.New("broker down")
		},
	}
	mail := &fakeNotifier{}
	svc := NewReservationService(stubReserve(tx), mail, pub, testPrices())

	result, err := svc.Reserve(context.Background(), testIdentity(),
		[]repository.SeatSelection{{Code: "A1"}}, pdfProof())
	require.NoError(t, err, "a broker outage never fails the request")
	require.NotNil(t, result)
	assert.Equal(t, 1, mail.calls)
}
