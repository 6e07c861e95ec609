package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestParseTokenClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, jwt.MapClaims{
		"user_id":  "u1",
		"username": "alice",
		"exp":      exp.Unix(),
	})

	tok, err := ParseToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)
	assert.Equal(t, "alice", tok.Username)
	assert.True(t, tok.ExpiresAt.Equal(exp))
	assert.Equal(t, raw, tok.Raw())
}

func TestParseTokenNumericUserID(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"user_id": 42})

	tok, err := ParseToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", tok.UserID)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not-a-jwt")
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Now()

	fresh := &Token{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, fresh.Expired(now))

	stale := &Token{ExpiresAt: now.Add(-time.Hour)}
	assert.True(t, stale.Expired(now))

	forever := &Token{}
	assert.False(t, forever.Expired(now))
}
