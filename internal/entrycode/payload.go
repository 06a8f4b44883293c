package entrycode

import (
	"encoding/json"
	"fmt"

	"github.com/ciaapp/seat-reservation/internal/model"
)

// Payload is the wire format carried inside the scannable code: the
// seat code in cleartext, the status and tier the code was minted for,
// and the digest.  Status and tier are display hints only — door
// validation always re-derives the digest from the seat's stored state,
// never from the presented values.
type Payload struct {
	SeatCode    string `json:"seat_code"`
	Status      string `json:"status"`
	IsHalfPrice bool   `json:"is_half_price"`
	Hash        string `json:"hash"`
}

// DecodeError reports a malformed admission payload.  It is distinct
// from a digest mismatch: handlers map it to a validation failure at
// the transport boundary, before any seat state is consulted.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid entry payload: %s", e.Reason)
}

// wirePayload uses pointers so that absent fields are distinguishable
// from zero values during the strict decode.
type wirePayload struct {
	SeatCode    *string `json:"seat_code"`
	Status      *string `json:"status"`
	IsHalfPrice *bool   `json:"is_half_price"`
	Hash        *string `json:"hash"`
}

// DecodePayload strictly parses a JSON admission payload.  Every field
// is required and the status must name a known lifecycle state.  Any
// shortfall fails closed with a *DecodeError; there is no permissive
// fallback parsing for legacy encodings.
func DecodePayload(raw []byte) (*Payload, error) {
	var w wirePayload
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &DecodeError{Reason: "not valid JSON"}
	}
	switch {
	case w.SeatCode == nil || *w.SeatCode == "":
		return nil, &DecodeError{Reason: "missing seat_code"}
	case w.Status == nil || *w.Status == "":
		return nil, &DecodeError{Reason: "missing status"}
	case w.IsHalfPrice == nil:
		return nil, &DecodeError{Reason: "missing is_half_price"}
	case w.Hash == nil || *w.Hash == "":
		return nil, &DecodeError{Reason: "missing hash"}
	}
	if !model.ValidSeatStatus(*w.Status) {
		return nil, &DecodeError{Reason: "unknown status"}
	}
	return &Payload{
		SeatCode:    *w.SeatCode,
		Status:      *w.Status,
		IsHalfPrice: *w.IsHalfPrice,
		Hash:        *w.Hash,
	}, nil
}
