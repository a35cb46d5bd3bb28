package fixture_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-crm-session/fixture"
	apperrors "github.com/jrsteele09/go-crm-session/internal/errors"
	"github.com/jrsteele09/go-crm-session/token"
	"github.com/jrsteele09/go-crm-session/users"
	"github.com/stretchr/testify/require"
)

func setupTestFixture(t *testing.T, options ...fixture.Option) *fixture.Backend {
	t.Helper()
	options = append([]fixture.Option{fixture.WithSecret([]byte("test-secret"))}, options...)
	b, err := fixture.New(options...)
	require.NoError(t, err)
	return b
}

func TestBackend_LoginAndProfile(t *testing.T) {
	b := setupTestFixture(t)
	ctx := context.Background()

	creds, err := b.Login(ctx, fixture.DefaultEmail, fixture.DefaultPassword)
	require.NoError(t, err)
	require.NotEmpty(t, creds.AccessToken)
	require.NotEmpty(t, creds.RefreshToken)

	_, ok := token.ExpiresAt(creds.AccessToken)
	require.True(t, ok)

	profile, err := b.Profile(ctx, creds.AccessToken)
	require.NoError(t, err)
	user, err := profile.User()
	require.NoError(t, err)
	require.Equal(t, "John Doe", user.Name)
	require.Equal(t, "Sales Manager", user.Role)
}

func TestBackend_LoginRejected(t *testing.T) {
	b := setupTestFixture(t)
	ctx := context.Background()

	_, err := b.Login(ctx, fixture.DefaultEmail, "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = b.Login(ctx, "nobody@company.com", fixture.DefaultPassword)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = b.Login(cancelled, fixture.DefaultEmail, fixture.DefaultPassword)
	require.ErrorIs(t, err, apperrors.ErrTransport)
}

func TestBackend_Refresh(t *testing.T) {
	now := time.Now()
	b := setupTestFixture(t, fixture.WithNowFunc(func() time.Time { return now }))
	ctx := context.Background()

	creds, err := b.Login(ctx, fixture.DefaultEmail, fixture.DefaultPassword)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	access, err := b.Refresh(ctx, creds.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, creds.AccessToken, access)

	// the refresh token stays valid after use
	_, err = b.Refresh(ctx, creds.RefreshToken)
	require.NoError(t, err)

	_, err = b.Refresh(ctx, "unknown")
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	_, err = b.Refresh(ctx, "")
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestBackend_ExpiredAccessToken(t *testing.T) {
	now := time.Now()
	b := setupTestFixture(t,
		fixture.WithNowFunc(func() time.Time { return now }),
		fixture.WithAccessTokenTTL(time.Minute),
	)
	ctx := context.Background()

	creds, err := b.Login(ctx, fixture.DefaultEmail, fixture.DefaultPassword)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = b.Profile(ctx, creds.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = b.Profile(ctx, "garbage")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestBackend_UpdateProfile(t *testing.T) {
	b := setupTestFixture(t)
	ctx := context.Background()

	creds, err := b.Login(ctx, fixture.DefaultEmail, fixture.DefaultPassword)
	require.NoError(t, err)

	updated, err := b.UpdateProfile(ctx, creds.AccessToken, map[string]any{
		"phone":     "555-0100",
		"job_title": "Head of Sales",
		"email":     "hijack@company.com",
		"_id":       "other",
	})
	require.NoError(t, err)

	user, err := updated.User()
	require.NoError(t, err)
	require.Equal(t, "555-0100", user.Phone)
	require.Equal(t, "Head of Sales", user.JobTitle)
	require.Equal(t, fixture.DefaultEmail, user.Email)
	require.Empty(t, user.MongoID)

	profile, err := b.Profile(ctx, creds.AccessToken)
	require.NoError(t, err)
	require.True(t, profile.Equal(updated))

	_, err = b.UpdateProfile(ctx, creds.AccessToken, map[string]any{"phone": 42})
	require.ErrorIs(t, err, apperrors.ErrUnexpected)
}

func TestBackend_CustomAccount(t *testing.T) {
	b := setupTestFixture(t, fixture.WithAccount(users.User{
		ID:        "42",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@company.com",
		Role:      "admin",
	}, "engine"))
	ctx := context.Background()

	_, err := b.Login(ctx, fixture.DefaultEmail, fixture.DefaultPassword)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	creds, err := b.Login(ctx, "ADA@company.com", "engine")
	require.NoError(t, err)

	claims, err := token.Inspect(creds.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
}
