package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ciaapp/seat-reservation/internal/entrycode"
	"github.com/ciaapp/seat-reservation/internal/model"
	"github.com/ciaapp/seat-reservation/internal/repository"
)

// AdminHandler serves the payment-review and door-validation endpoints.
// All routes are mounted behind RequireAdmin.
type AdminHandler struct {
	Ledger *repository.SeatLedger
	Codec  *entrycode.Codec
}

func NewAdminHandler(ledger *repository.SeatLedger, codec *entrycode.Codec) *AdminHandler {
	return &AdminHandler{Ledger: ledger, Codec: codec}
}

type seatCodeReq struct {
	SeatCode string `json:"seat_code"`
}

// validateEntryReq accepts either a full admission payload as scanned
// from the QR image, or the separated hash plus seat code typed in
// manually at the door.
type validateEntryReq struct {
	Payload  string `json:"payload"`
	Hash     string `json:"hash"`
	SeatCode string `json:"seat_code"`
}

// PendingSeats lists all reserved seats awaiting review, grouped per
// owner.
func (h *AdminHandler) PendingSeats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pending, err := h.Ledger.PendingReservations(ctx)
	if err != nil {
		return seatError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"pending": pending})
}

// ApproveSeat acknowledges a payment proof: the seat moves from
// reserved to occupied.
func (h *AdminHandler) ApproveSeat(c echo.Context) error {
	code, err := bindSeatCode(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_code required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Ledger.Approve(ctx, code); err != nil {
		return seatError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "seat approved", "seat_code": code})
}

// ReproveSeat rejects a previously approved seat: it returns to the
// open pool with owner and tier cleared.
func (h *AdminHandler) ReproveSeat(c echo.Context) error {
	code, err := bindSeatCode(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_code required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Ledger.Reprove(ctx, code); err != nil {
		return seatError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "seat reproved", "seat_code": code})
}

// ValidateEntry admits a ticket holder at the door.  The presented code
// is verified against the seat's stored status and tier, never against
// values carried in the payload; on success the seat is marked used and
// the same code can never admit again.
func (h *AdminHandler) ValidateEntry(c echo.Context) error {
	var req validateEntryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	hash, seatCode, err := entryCredential(req)
	if err != nil {
		return seatError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	seat, err := h.Ledger.DoorValidate(ctx, seatCode, func(code string, status model.SeatStatus, isHalfPrice bool) bool {
		return h.Codec.Verify(hash, code, status, isHalfPrice)
	})
	if err != nil {
		return seatError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "entry granted",
		"seat_code":     seat.Code,
		"is_half_price": seat.IsHalfPrice,
	})
}

// entryCredential extracts the (hash, seat code) pair from either form
// of a validation request.  A full payload goes through the strict
// decoder; the separated form just needs both fields present.
func entryCredential(req validateEntryReq) (hash, seatCode string, err error) {
	if req.Payload != "" {
		p, err := entrycode.DecodePayload([]byte(req.Payload))
		if err != nil {
			return "", "", err
		}
		return p.Hash, p.SeatCode, nil
	}
	hash = strings.TrimSpace(req.Hash)
	seatCode = strings.ToUpper(strings.TrimSpace(req.SeatCode))
	if hash == "" || seatCode == "" {
		return "", "", &entrycode.DecodeError{Reason: "missing hash or seat_code"}
	}
	return hash, seatCode, nil
}

func bindSeatCode(c echo.Context) (string, error) {
	var req seatCodeReq
	if err := c.Bind(&req); err != nil {
		return "", err
	}
	code := strings.ToUpper(strings.TrimSpace(req.SeatCode))
	if code == "" {
		return "", echo.ErrBadRequest
	}
	return code, nil
}
