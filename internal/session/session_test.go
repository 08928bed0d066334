package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-backend-secret"))
	require.NoError(t, err)
	return token
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("reads claims without the signing key", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"email":    "jane@acme.test",
			"username": "jane",
			"role":     "Finance Manager",
			"org_id":   42,
			"exp":      time.Now().Add(time.Hour).Unix(),
		})

		s, err := Parse(token)
		require.NoError(t, err)
		require.Equal(t, token, s.BearerToken())
		require.Equal(t, OrgID("42"), s.Claims.OrgID)
		require.Equal(t, "jane@acme.test", s.Subject())
		require.True(t, s.HasRole("admin", "finance manager"))
		require.False(t, s.HasRole("admin"))
		require.False(t, s.Expired(time.Now()))
	})

	t.Run("string org ids and subject", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"sub": "u-1", "org_id": "acme"})

		s, err := Parse(token)
		require.NoError(t, err)
		require.Equal(t, OrgID("acme"), s.Claims.OrgID)
		require.Equal(t, "u-1", s.Subject())
	})

	t.Run("expired tokens still parse", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"role": "admin", "exp": time.Now().Add(-time.Hour).Unix()})

		s, err := Parse(token)
		require.NoError(t, err)
		require.True(t, s.Expired(time.Now()))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := Parse("not-a-jwt")
		require.ErrorIs(t, err, ErrMalformedToken)

		_, err = Parse("   ")
		require.ErrorIs(t, err, ErrMalformedToken)
	})
}

func TestFromHeader(t *testing.T) {
	t.Parallel()

	token := signToken(t, jwt.MapClaims{"role": "admin"})

	s, err := FromHeader("Bearer " + token)
	require.NoError(t, err)
	require.True(t, s.HasRole("ADMIN"))

	_, err = FromHeader("Basic abc")
	require.ErrorIs(t, err, ErrMalformedToken)
}

func TestContext(t *testing.T) {
	t.Parallel()

	_, ok := FromContext(context.Background())
	require.False(t, ok)

	ctx := NewContext(context.Background(), Session{Token: "t"})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "t", s.Token)
}

func TestOwner(t *testing.T) {
	t.Parallel()

	withEmail, err := Parse(signToken(t, jwt.MapClaims{"email": "jane@acme.test"}))
	require.NoError(t, err)
	require.Equal(t, "jane@acme.test", withEmail.Owner())

	anonymous, err := Parse(signToken(t, jwt.MapClaims{"role": "admin"}))
	require.NoError(t, err)
	require.Equal(t, anonymous.Token, anonymous.Owner())
}
