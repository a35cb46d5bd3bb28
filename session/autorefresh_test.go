package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-crm-session/fixture"
	"github.com/jrsteele09/go-crm-session/session"
	"github.com/jrsteele09/go-crm-session/storage"
	storagefake "github.com/jrsteele09/go-crm-session/storage/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newFixtureManager(t *testing.T, store storage.Repo, options ...fixture.Option) *session.Manager {
	t.Helper()
	backend, err := fixture.New(append([]fixture.Option{fixture.WithSecret([]byte("secret"))}, options...)...)
	require.NoError(t, err)

	m, err := session.New(backend, store,
		session.WithLogger(zerolog.Nop()),
		session.WithRefreshLeeway(time.Second),
	)
	require.NoError(t, err)
	return m
}

func TestFixtureBackend_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := storagefake.NewFakeStorageRepo()
	backend, err := fixture.New(fixture.WithSecret([]byte("secret")))
	require.NoError(t, err)

	m, err := session.New(backend, store, session.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, m.Bootstrap(ctx))
	require.Equal(t, session.StatusUnauthenticated, m.Status())

	ok, err := m.Login(ctx, fixture.DefaultEmail, fixture.DefaultPassword)
	require.NoError(t, err)
	require.True(t, ok)

	user, err := m.User().User()
	require.NoError(t, err)
	require.Equal(t, "John Doe", user.Name)

	// a second manager over the same storage restores the session
	restored, err := session.New(backend, store, session.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, restored.Bootstrap(ctx))
	require.Equal(t, session.StatusAuthenticated, restored.Status())
	require.True(t, m.User().Equal(restored.User()))

	restored.Logout()
	require.Empty(t, store.Snapshot())
}

func TestRunAutoRefresh(t *testing.T) {
	store := storagefake.NewFakeStorageRepo()
	m := newFixtureManager(t, store, fixture.WithAccessTokenTTL(2*time.Second))

	ok, err := m.Login(context.Background(), fixture.DefaultEmail, fixture.DefaultPassword)
	require.NoError(t, err)
	require.True(t, ok)
	first := m.AccessToken()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.RunAutoRefresh(ctx)
	}()

	require.Eventually(t, func() bool {
		return m.AccessToken() != first
	}, 5*time.Second, 50*time.Millisecond)
	require.Equal(t, session.StatusAuthenticated, m.Status())
	require.Equal(t, m.AccessToken(), store.Snapshot()[storage.KeyAccessToken])

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestRunAutoRefresh_IdleWhileLoggedOut(t *testing.T) {
	m := newFixtureManager(t, storagefake.NewFakeStorageRepo())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, m.RunAutoRefresh(ctx), context.DeadlineExceeded)
	require.Equal(t, session.StatusUninitialized, m.Status())
}
