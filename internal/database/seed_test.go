package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVenueSeatCodes(t *testing.T) {
	codes := VenueSeatCodes()
	assert.Len(t, codes, 620)

	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}

	assert.Equal(t, "A1", codes[0])
	assert.True(t, seen["A36"])
	assert.True(t, seen["P36"])
	assert.True(t, seen["Q30"])
	assert.True(t, seen["R26"])
	assert.False(t, seen["Q31"], "row Q stops at 30")
	assert.False(t, seen["R27"], "row R stops at 26")
	assert.False(t, seen["S1"], "no row beyond R")
}
