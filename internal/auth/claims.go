package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims carries the identity the API trusts from the IdP token.
// The subject is the stable user id; no workspace or permission data is
// taken from the token, authorization is always resolved from the database.
type CustomClaims struct {
	Username string `json:"preferred_username"`
	jwt.RegisteredClaims
}

// UserID returns the stable identifier for the authenticated user.
func (c *CustomClaims) UserID() string {
	return c.Subject
}

// Validate performs additional validation on custom claims
func (c *CustomClaims) Validate() error {
	if c.Subject == "" {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}
