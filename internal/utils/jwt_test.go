package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciaapp/seat-reservation/internal/model"
)

const testSecret = "test-secret"

func testUser() model.User {
	return model.User{
		ID:          42,
		FullName:    "Ada Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "+4912345",
		Scopes:      "default",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	access, err := NewAccessToken(testSecret, testUser(), 60)
	require.NoError(t, err)
	require.NotEmpty(t, access.Token)

	ident, err := ParseAccessToken(testSecret, access.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), ident.UserID)
	assert.Equal(t, "Ada Lovelace", ident.FullName)
	assert.Equal(t, "ada@example.com", ident.Email)
	assert.Equal(t, model.RoleStandard, ident.Role)
}

func TestAccessTokenAdminRole(t *testing.T) {
	u := testUser()
	u.Scopes = "default,admin"
	access, err := NewAccessToken(testSecret, u, 60)
	require.NoError(t, err)

	ident, err := ParseAccessToken(testSecret, access.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, ident.Role)
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	access, err := NewAccessToken(testSecret, testUser(), 60)
	require.NoError(t, err)

	_, err = ParseAccessToken("other-secret", access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenExpired(t *testing.T) {
	access, err := NewAccessToken(testSecret, testUser(), -1)
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenGarbage(t *testing.T) {
	_, err := ParseAccessToken(testSecret, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.MapClaims{
		"id":    float64(42),
		"email": "ada@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
