package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps the JWT issued at login. Claims are read without verifying the
// signature; only the server holds the secret, the client just needs the
// identity and expiry baked into the token.
type Token struct {
	raw       string
	UserID    string
	Username  string
	ExpiresAt time.Time
}

func ParseToken(raw string) (*Token, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	t := &Token{raw: raw}

	switch id := claims["user_id"].(type) {
	case string:
		t.UserID = id
	case float64:
		t.UserID = strconv.FormatInt(int64(id), 10)
	}

	if username, ok := claims["username"].(string); ok {
		t.Username = username
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t.ExpiresAt = exp.Time
	}

	return t, nil
}

func (t *Token) Raw() string {
	return t.raw
}

// Expired reports whether the token's expiry has passed. Tokens without an
// exp claim never expire client-side.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}
