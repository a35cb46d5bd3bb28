package jwt_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-crm-session/token"
	"github.com/jrsteele09/go-crm-session/token/jwt"
	"github.com/stretchr/testify/require"
)

func TestCreator_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c, err := jwt.NewCreator([]byte("secret"), 15*time.Minute, jwt.WithNowFunc(func() time.Time { return now }))
	require.NoError(t, err)

	raw, err := c.CreateAccessToken("user-1")
	require.NoError(t, err)

	sub, err := c.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", sub)

	exp, ok := token.ExpiresAt(raw)
	require.True(t, ok)
	require.True(t, exp.Equal(now.Add(15*time.Minute)))
}

func TestCreator_VerifyRejects(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c, err := jwt.NewCreator([]byte("secret"), time.Minute, jwt.WithNowFunc(clock))
	require.NoError(t, err)
	raw, err := c.CreateAccessToken("user-1")
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		other, err := jwt.NewCreator([]byte("other"), time.Minute)
		require.NoError(t, err)
		_, err = other.Verify(raw)
		require.Error(t, err)
	})

	t.Run("other issuer", func(t *testing.T) {
		other, err := jwt.NewCreator([]byte("secret"), time.Minute, jwt.WithIssuer("elsewhere"), jwt.WithNowFunc(clock))
		require.NoError(t, err)
		_, err = other.Verify(raw)
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		later, err := jwt.NewCreator([]byte("secret"), time.Minute, jwt.WithNowFunc(func() time.Time { return now.Add(time.Hour) }))
		require.NoError(t, err)
		_, err = later.Verify(raw)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := c.Verify("not-a-jwt")
		require.Error(t, err)
	})
}

func TestNewCreator_Validation(t *testing.T) {
	_, err := jwt.NewCreator(nil, time.Minute)
	require.Error(t, err)
	_, err = jwt.NewCreator([]byte("s"), 0)
	require.Error(t, err)
}
