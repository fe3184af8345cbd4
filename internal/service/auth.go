package service

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for token validation.
var (
	ErrInvalidToken     = errors.New("auth: invalid token")
	ErrJWTSecretMissing = errors.New("auth: JWT_SECRET not configured")
)

// AuthClaims are the JWT claims embedded in access tokens issued by the
// upstream auth service. Token issuing, refresh and revocation live there;
// this service only validates.
type AuthClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Plan   string `json:"plan"`
	Role   string `json:"role"`
}

// TokenValidator validates HS256 bearer tokens against a shared secret.
type TokenValidator struct {
	jwtSecret []byte
}

// NewTokenValidator creates a TokenValidator for the given signing secret.
func NewTokenValidator(jwtSecret string) *TokenValidator {
	return &TokenValidator{jwtSecret: []byte(jwtSecret)}
}

// ValidateAccessToken parses and validates an access token, returning the claims.
func (v *TokenValidator) ValidateAccessToken(tokenString string) (*AuthClaims, error) {
	if len(v.jwtSecret) == 0 {
		return nil, ErrJWTSecretMissing
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: parse access token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
