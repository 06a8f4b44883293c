package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSeatStatus(t *testing.T) {
	for _, s := range []string{"available", "pre-reserved", "reserved", "occupied", "used"} {
		assert.True(t, ValidSeatStatus(s), s)
	}
	for _, s := range []string{"", "Available", "free", "held", "prereserved"} {
		assert.False(t, ValidSeatStatus(s), s)
	}
}

func TestRoleFromScopes(t *testing.T) {
	cases := []struct {
		scopes string
		want   Role
	}{
		{"default", RoleStandard},
		{"", RoleStandard},
		{"admin", RoleAdmin},
		{"default,admin", RoleAdmin},
		{"default, admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{"default\tadmin", RoleAdmin},
		// Substring matches must not grant the role.
		{"administrator", RoleStandard},
		{"default,administrator", RoleStandard},
		{"admins", RoleStandard},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RoleFromScopes(tc.scopes), "scopes=%q", tc.scopes)
	}
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "admin", RoleAdmin.String())
	assert.Equal(t, "standard", RoleStandard.String())
	assert.Equal(t, "standard", Role(42).String())
}

func TestSeatOwnedBy(t *testing.T) {
	var s Seat
	assert.False(t, s.OwnedBy(1), "unowned seat")

	owner := uint64(7)
	s.UserID = &owner
	assert.True(t, s.OwnedBy(7))
	assert.False(t, s.OwnedBy(8))
}
