package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerateParseRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, exp, err := tm.Generate("alice")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.False(t, claims.Expired())
	assert.True(t, claims.ExpiresAt.After(time.Now()))
	assert.False(t, claims.IssuedAt.After(time.Now()))
}

func TestParseRejectsTamperedPayload(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, _, err := tm.Generate("alice")
	require.NoError(t, err)

	segments := strings.Split(token, ".")
	require.Len(t, segments, 3)

	// flip one character of the payload segment
	payload := []byte(segments[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	segments[1] = string(payload)

	_, err = tm.Parse(strings.Join(segments, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongKey(t *testing.T) {
	other := NewTokenManager("another-secret", time.Hour)
	token, _, err := other.Generate("alice")
	require.NoError(t, err)

	tm := NewTokenManager(testSecret, time.Hour)
	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongSigningMethod(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tm := NewTokenManager(testSecret, time.Hour)
	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseReportsExpiredToken(t *testing.T) {
	// authentic signature, elapsed TTL
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tm := NewTokenManager(testSecret, time.Hour)
	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseRejectsGarbage(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.Parse(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}

func TestClaimsExpiredBoundary(t *testing.T) {
	past := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Second)),
	}}
	assert.True(t, past.Expired())

	future := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	assert.False(t, future.Expired())

	missing := &Claims{}
	assert.True(t, missing.Expired())
}
