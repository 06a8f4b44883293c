package model

import (
	"strings"
	"time"
)

// User mirrors the `user` table.  Seat ownership is a back-reference
// held on the seat row, not a collection here; handlers define their
// own response types with JSON tags.
type User struct {
	ID           uint64    // user.id
	FullName     string    // user.full_name
	Email        string    // user.email
	PhoneNumber  string    // user.phone_number
	PasswordHash string    // user.password_hash
	Scopes       string    // user.scopes (raw scope string, e.g. "default" or "default,admin")
	CreatedAt    time.Time // user.created_at
	UpdatedAt    time.Time // user.updated_at
}

// Role is the closed set of authorization levels the service knows
// about.  The raw scope string on the user row (and inside the access
// token) is normalized into a Role exactly once, at the credential
// verification boundary; core logic only ever compares Roles.
type Role int

const (
	RoleStandard Role = iota
	RoleAdmin
)

// String returns the canonical name of the role.
func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "standard"
}

// RoleFromScopes normalizes a raw scope string into a Role.  Scopes are
// separated by commas and/or whitespace; the "admin" scope must appear
// as a whole token, so a scope like "administrator" does not grant
// elevated access.
func RoleFromScopes(scopes string) Role {
	for _, tok := range strings.FieldsFunc(scopes, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		if strings.EqualFold(tok, "admin") {
			return RoleAdmin
		}
	}
	return RoleStandard
}

// Identity is the normalized result of verifying an access token.  It
// is what middleware stores in the request context and what handlers
// act on; the raw claim map never leaves the verification step.
type Identity struct {
	UserID      uint64
	FullName    string
	Email       string
	PhoneNumber string
	Role        Role
}
