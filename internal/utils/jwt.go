package utils // package utils provides helpers for token creation and verification

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ciaapp/seat-reservation/internal/model"
)

// ErrInvalidToken is returned for any access token that fails parsing,
// signature verification or claim extraction, including expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed JWT together with its expiry.  Access tokens
// are sent in the Authorization header on protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT embedding the user's
// identity and raw scope string.  The scope string is normalized into a
// typed role only at verification time, on the receiving side.
func NewAccessToken(secret string, u model.User, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"id":           u.ID,
		"full_name":    u.FullName,
		"phone_number": u.PhoneNumber,
		"email":        u.Email,
		"scopes":       u.Scopes,
		"exp":          exp.Unix(),
		"iat":          time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of a raw token and
// normalizes its claims into a model.Identity.  This is the single
// place where the duck-typed claim map is turned into typed values;
// everything downstream works with the Identity.
func ParseAccessToken(secret, raw string) (model.Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return model.Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.Identity{}, ErrInvalidToken
	}
	id, ok := claims["id"].(float64)
	if !ok || id <= 0 {
		return model.Identity{}, ErrInvalidToken
	}
	scopes, _ := claims["scopes"].(string)
	ident := model.Identity{
		UserID: uint64(id),
		Role:   model.RoleFromScopes(scopes),
	}
	ident.FullName, _ = claims["full_name"].(string)
	ident.Email, _ = claims["email"].(string)
	ident.PhoneNumber, _ = claims["phone_number"].(string)
	if ident.Email == "" {
		return model.Identity{}, ErrInvalidToken
	}
	return ident, nil
}
