package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload is what the identity service knows when it mints a token.
// An empty JTI is replaced with a fresh uuid.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	IsAdmin bool
	JTI     string
}

// AccessTokenClaims is the JWT body. The subject mirrors user_id so generic
// JWT tooling can read the caller without knowing our claim names.
type AccessTokenClaims struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
	jwt.RegisteredClaims
}

var _ jwt.ClaimsValidator = (*AccessTokenClaims)(nil)

// Validate runs after the registered-claim checks in jwt.Parse.
func (c *AccessTokenClaims) Validate() error {
	switch {
	case c.UserID == uuid.Nil:
		return errors.New("missing user_id claim")
	case c.ID == "":
		return errors.New("missing jti claim")
	case c.Subject != c.UserID.String():
		return errors.New("sub does not match user_id")
	}
	return nil
}
