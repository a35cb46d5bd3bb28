package settings_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-crm-session/fixture"
	apperrors "github.com/jrsteele09/go-crm-session/internal/errors"
	"github.com/jrsteele09/go-crm-session/session"
	"github.com/jrsteele09/go-crm-session/settings"
	"github.com/jrsteele09/go-crm-session/storage"
	storagefake "github.com/jrsteele09/go-crm-session/storage/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	store   *storagefake.FakeStorageRepo
	manager *session.Manager
	editor  *settings.Editor
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend, err := fixture.New(fixture.WithSecret([]byte("secret")))
	require.NoError(t, err)
	store := storagefake.NewFakeStorageRepo()
	m, err := session.New(backend, store, session.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, m.Bootstrap(context.Background()))

	return &testFixture{
		store:   store,
		manager: m,
		editor:  settings.NewEditor(backend, m, settings.WithLogger(zerolog.Nop())),
	}
}

func TestEditor_SaveRequiresSession(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.editor.Save(context.Background(), map[string]any{"phone": "555"})
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestEditor_Save(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	ok, err := f.manager.Login(ctx, fixture.DefaultEmail, fixture.DefaultPassword)
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := f.editor.Save(ctx, map[string]any{
		"phone":      "555-0100",
		"department": "Sales",
		"email":      "ignored@company.com",
	})
	require.NoError(t, err)

	user, err := updated.User()
	require.NoError(t, err)
	require.Equal(t, "555-0100", user.Phone)
	require.Equal(t, fixture.DefaultEmail, user.Email)

	// the session and storage picked up the change
	require.True(t, updated.Equal(f.manager.User()))
	require.Equal(t, updated.String(), f.store.Snapshot()[storage.KeyUser])
}

func TestEditor_SaveNothing(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	_, err := f.manager.Login(ctx, fixture.DefaultEmail, fixture.DefaultPassword)
	require.NoError(t, err)

	profile, err := f.editor.Save(ctx, nil)
	require.NoError(t, err)
	require.True(t, profile.Equal(f.manager.User()))
}
