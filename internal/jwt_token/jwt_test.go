package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
)

var (
	fixedNow  = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	userID    = id.NewUserID()
	sessionID = id.NewSessionID()
)

func newService(now time.Time) *JWTService {
	return NewJWTService("test-signing-key", "presale", 24*time.Hour, WithClock(func() time.Time { return now }))
}

func TestGenerateSessionToken(t *testing.T) {
	svc := newService(fixedNow)

	issued, err := svc.GenerateSessionToken(userID, sessionID)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.NotEmpty(t, issued.JTI)
	assert.Equal(t, fixedNow.Add(24*time.Hour), issued.ExpiresAt)

	claims, err := svc.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.JTI, claims.ID)

	gotUser, gotSession, err := claims.IDs()
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, sessionID, gotSession)
}

func TestValidateToken(t *testing.T) {
	svc := newService(fixedNow)
	issued, err := svc.GenerateSessionToken(userID, sessionID)
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		_, err := newService(fixedNow.Add(25 * time.Hour)).ValidateToken(issued.Token)
		require.Error(t, err)
		de, ok := dErrors.As(err)
		require.True(t, ok)
		assert.Equal(t, dErrors.CodeUnauthorized, de.Code)
		assert.Equal(t, "token has expired", de.Message)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewJWTService("another-key", "presale", time.Hour, WithClock(func() time.Time { return fixedNow }))
		_, err := other.ValidateToken(issued.Token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService("test-signing-key", "someone-else", time.Hour, WithClock(func() time.Time { return fixedNow }))
		_, err := other.ValidateToken(issued.Token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("alg none rejected", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			UserID:    userID.String(),
			SessionID: sessionID.String(),
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "presale",
				ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
			},
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateToken(raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestClaimsIDs(t *testing.T) {
	c := &Claims{UserID: "nope", SessionID: sessionID.String()}
	_, _, err := c.IDs()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
