package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	s := NewService("secret", time.Hour)

	tok, err := s.GenerateToken("sid-1", "al")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	claims, err := s.ValidateToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, "al", claims.Username)
}

func TestValidateRejectsOtherSecret(t *testing.T) {
	tok, err := NewService("one", time.Hour).GenerateToken("sid", "")
	require.NoError(t, err)

	_, err = NewService("two", time.Hour).ValidateToken(tok.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	s := NewService("secret", time.Minute)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := s.GenerateToken("sid", "")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateToken(tok.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewService("secret", time.Hour).ValidateToken("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsNoneAlg(t *testing.T) {
	claims := &Claims{SessionID: "sid", RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewService("secret", time.Hour).ValidateToken(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNeedsRenewal(t *testing.T) {
	s := NewService("secret", time.Hour)
	start := time.Now()
	s.now = func() time.Time { return start }

	tok, err := s.GenerateToken("sid", "al")
	require.NoError(t, err)
	claims, err := s.ValidateToken(tok.Token)
	require.NoError(t, err)
	assert.False(t, s.NeedsRenewal(claims))

	s.now = func() time.Time { return start.Add(20 * time.Minute) }
	assert.False(t, s.NeedsRenewal(claims))

	s.now = func() time.Time { return start.Add(40 * time.Minute) }
	assert.True(t, s.NeedsRenewal(claims))
}
