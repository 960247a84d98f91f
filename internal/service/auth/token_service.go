package auth

import (
	"context"
	"time"
)

// TokenService mints and checks the bearer credentials that bind a request
// to a username.
type TokenService interface {
	// GenerateToken creates a signed token whose subject is username.
	GenerateToken(ctx context.Context, username string) (string, error)

	// ValidateToken verifies the signature and time claims of tokenString and
	// returns its claims. It returns ErrExpiredToken, ErrTokenNotYetValid or
	// ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of a token.
type Claims struct {
	Username  string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
