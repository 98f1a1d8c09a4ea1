// Package identity is the request-scoped session boundary: it authenticates bearer or
// query-parameter tokens and resolves the user record from a key-value store.
// The schema core never imports it; user records are ordinary model instances.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrUnauthorized missing or invalid token
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUserNotFound no user record stored for the id
	ErrUserNotFound = errors.New("user not found")
)

// TokenVerifier issues and verifies HS256 tokens whose subject is the user id
type TokenVerifier struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenVerifier creates a verifier signing with secret, issued tokens live for ttl
func NewTokenVerifier(secret string, ttl time.Duration) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for userID
func (v *TokenVerifier) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify checks signature and expiry and returns the user id
func (v *TokenVerifier) Verify(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		// Verify exact signing method to prevent algorithm confusion attacks
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	return claims.Subject, nil
}
