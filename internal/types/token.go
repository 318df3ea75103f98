package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a session token. The subject is the
// profile email.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}
