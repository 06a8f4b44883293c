// Package entrycode generates and verifies the tamper-evident admission
// codes that gate physical entry.  A code is a keyed digest over the
// seat code, the seat's lifecycle status and its ticket tier; because
// the status is part of the digest, a code minted while a seat was
// occupied stops verifying the moment the seat moves to used, which
// gives single-use semantics without a consumed flag or a codes table.
package entrycode

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"

	"github.com/ciaapp/seat-reservation/internal/model"
)

// HashLength is the number of hex characters kept from the digest.  The
// truncation keeps the code short enough for the physical QR medium.
const HashLength = 16

// Codec mints and checks entry codes using a shared secret.  Minting is
// deterministic: the same inputs always produce the same code, so a
// code can be re-displayed to the user without persisting anything.
type Codec struct {
	secret string
}

// NewCodec returns a Codec bound to the given shared secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: secret}
}

// Mint derives the truncated digest for a seat in the given state.
func (c *Codec) Mint(seatCode string, status model.SeatStatus, isHalfPrice bool) string {
	sum := sha256.Sum256([]byte(seatCode + string(status) + strconv.FormatBool(isHalfPrice) + c.secret))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// Verify recomputes the digest for the given seat state and compares it
// against the presented hash in constant time.  There is no partial or
// fuzzy matching; any mismatch, including one caused by a stale status
// or a wrong tier, yields false.
func (c *Codec) Verify(presented, seatCode string, status model.SeatStatus, isHalfPrice bool) bool {
	if presented == "" {
		return false
	}
	expected := c.Mint(seatCode, status, isHalfPrice)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}
