package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciaapp/seat-reservation/internal/entrycode"
)

func TestEntryCredentialFromPayload(t *testing.T) {
	req := validateEntryReq{
		Payload: `{"seat_code":"A1","status":"occupied","is_half_price":false,"hash":"0123456789abcdef"}`,
	}
	hash, code, err := entryCredential(req)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", hash)
	assert.Equal(t, "A1", code)
}

func TestEntryCredentialFromPair(t *testing.T) {
	hash, code, err := entryCredential(validateEntryReq{Hash: " 0123456789abcdef ", SeatCode: " a1 "})
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", hash)
	assert.Equal(t, "A1", code)
}

func TestEntryCredentialRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		req  validateEntryReq
	}{
		{"empty request", validateEntryReq{}},
		{"hash without seat", validateEntryReq{Hash: "abc"}},
		{"seat without hash", validateEntryReq{SeatCode: "A1"}},
		{"payload not json", validateEntryReq{Payload: "hash=abc"}},
		{"payload missing hash", validateEntryReq{Payload: `{"seat_code":"A1","status":"occupied","is_half_price":false}`}},
		{"payload unknown status", validateEntryReq{Payload: `{"seat_code":"A1","status":"parked","is_half_price":false,"hash":"abc"}`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := entryCredential(tc.req)
			var decodeErr *entrycode.DecodeError
			require.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestEntryCredentialPayloadWins(t *testing.T) {
	// When both forms are present the scanned payload is authoritative.
	req := validateEntryReq{
		Payload:  `{"seat_code":"B2","status":"occupied","is_half_price":true,"hash":"feedfacefeedface"}`,
		Hash:     "ignored",
		SeatCode: "Z9",
	}
	hash, code, err := entryCredential(req)
	require.NoError(t, err)
	assert.Equal(t, "feedfacefeedface", hash)
	assert.Equal(t, "B2", code)
}
