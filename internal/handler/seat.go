package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ciaapp/seat-reservation/internal/entrycode"
	"github.com/ciaapp/seat-reservation/internal/model"
	"github.com/ciaapp/seat-reservation/internal/notifier"
	"github.com/ciaapp/seat-reservation/internal/repository"
	"github.com/ciaapp/seat-reservation/internal/service"
)

// maxProofBytes caps proof-of-payment uploads at 10 MiB.
const maxProofBytes = 10 << 20

// SeatHandler serves the seat map and the user-facing reservation flow.
type SeatHandler struct {
	Svc     *service.ReservationService
	Ledger  *repository.SeatLedger
	Journal *repository.TransactionRepo
	Codec   *entrycode.Codec
}

func NewSeatHandler(svc *service.ReservationService, ledger *repository.SeatLedger, journal *repository.TransactionRepo, codec *entrycode.Codec) *SeatHandler {
	return &SeatHandler{Svc: svc, Ledger: ledger, Journal: journal, Codec: codec}
}

type seatItem struct {
	Code        string `json:"code"`
	Status      string `json:"status"`
	IsHalfPrice bool   `json:"is_half_price"`
	Mine        bool   `json:"mine,omitempty"`
	QRCode      string `json:"qr_code,omitempty"`
}

type preReserveReq struct {
	SeatCodes []string `json:"seat_codes"`
}

// seatPick mirrors one element of the multipart "seats" field on the
// reserve endpoint.
type seatPick struct {
	SeatCode    string `json:"seat_code"`
	IsHalfPrice bool   `json:"is_half_price"`
}

// ListSeats returns the full seat map.  Seats owned by the caller are
// flagged so the client can render them distinctly.
func (h *SeatHandler) ListSeats(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Ledger.ListAll(ctx)
	if err != nil {
		return seatError(c, err)
	}
	items := make([]seatItem, len(seats))
	for i, s := range seats {
		items[i] = seatItem{
			Code:        s.Code,
			Status:      string(s.Status),
			IsHalfPrice: s.IsHalfPrice,
			Mine:        s.OwnedBy(ident.UserID),
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": items})
}

// ListMySeats returns the caller's seats.  Approved (occupied) seats
// carry their admission QR code so the ticket can be re-displayed at
// any time; the code is deterministic, nothing is stored.
func (h *SeatHandler) ListMySeats(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Ledger.ListByUser(ctx, ident.UserID)
	if err != nil {
		return seatError(c, err)
	}
	items := make([]seatItem, len(seats))
	for i, s := range seats {
		items[i] = seatItem{
			Code:        s.Code,
			Status:      string(s.Status),
			IsHalfPrice: s.IsHalfPrice,
		}
		if s.Status == model.StatusOccupied {
			qr, err := h.Codec.QRCodePNG(s.Code, s.Status, s.IsHalfPrice)
			if err != nil {
				c.Logger().Errorf("qr render failed for seat %s: %v", s.Code, err)
				continue
			}
			items[i].QRCode = qr
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": items})
}

// PreReserve replaces the caller's held selection with the posted one.
func (h *SeatHandler) PreReserve(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req preReserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Svc.PreReserve(ctx, ident, req.SeatCodes); err != nil {
		return seatError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "seats pre-reserved"})
}

// Reserve confirms the caller's pre-reserved seats.  The request is
// multipart/form-data: a "seats" field holding a JSON array of
// {seat_code, is_half_price} picks and a "proof" file with the payment
// evidence.  A committed reservation whose receipt email failed still
// returns 201, with a warning attached.
func (h *SeatHandler) Reserve(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var rawPicks []seatPick
	if err := json.Unmarshal([]byte(c.FormValue("seats")), &rawPicks); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats must be a JSON array of {seat_code, is_half_price}"})
	}
	picks := make([]repository.SeatSelection, len(rawPicks))
	for i, p := range rawPicks {
		picks[i] = repository.SeatSelection{Code: p.SeatCode, IsHalfPrice: p.IsHalfPrice}
	}

	proof, err := readProof(c)
	if err != nil {
		return seatError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	result, err := h.Svc.Reserve(ctx, ident, picks, proof)
	if err != nil {
		var notifyErr *service.NotificationError
		if errors.As(err, &notifyErr) && result != nil {
			c.Logger().Errorf("receipt email failed for tx %d: %v", result.Transaction.ID, notifyErr.Err)
			return c.JSON(http.StatusCreated, echo.Map{
				"transaction_id": result.Transaction.ID,
				"seats":          result.Transaction.SeatCodes,
				"total_cents":    result.TotalCents,
				"warning":        "reservation confirmed but the receipt email could not be sent",
			})
		}
		return seatError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"transaction_id": result.Transaction.ID,
		"seats":          result.Transaction.SeatCodes,
		"total_cents":    result.TotalCents,
	})
}

type transactionItem struct {
	ID        uint64    `json:"id"`
	SeatCodes []string  `json:"seats"`
	CreatedAt time.Time `json:"created_at"`
}

// ListMyTransactions returns the caller's reservation journal entries,
// newest first.
func (h *SeatHandler) ListMyTransactions(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Journal.ListByUser(ctx, ident.UserID)
	if err != nil {
		return seatError(c, err)
	}
	items := make([]transactionItem, len(entries))
	for i, e := range entries {
		items[i] = transactionItem{ID: e.ID, SeatCodes: e.SeatCodes, CreatedAt: e.CreatedAt}
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": items})
}

// readProof extracts the uploaded proof-of-payment file, or nil when
// the part is absent (the service rejects a nil proof).
func readProof(c echo.Context) (*notifier.Attachment, error) {
	fh, err := c.FormFile("proof")
	if err != nil {
		return nil, nil
	}
	if fh.Size > maxProofBytes {
		return nil, &service.ValidationError{Reason: "proof file too large"}
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxProofBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxProofBytes {
		return nil, &service.ValidationError{Reason: "proof file too large"}
	}
	return &notifier.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
