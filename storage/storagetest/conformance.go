// Package storagetest holds the behaviour every storage.Repo implementation must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-crm-session/storage"
	"github.com/stretchr/testify/require"
)

// RunRepoTests exercises get/set/remove semantics against a fresh, empty repo.
func RunRepoTests(t *testing.T, newRepo func(t *testing.T) storage.Repo) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		repo := newRepo(t)
		v, ok, err := repo.Get(ctx, storage.KeyAccessToken)
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Set(ctx, storage.KeyAccessToken, "A"))
		require.NoError(t, repo.Set(ctx, storage.KeyUser, `{"name":"X"}`))

		v, ok, err := repo.Get(ctx, storage.KeyAccessToken)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "A", v)

		v, ok, err = repo.Get(ctx, storage.KeyUser)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, `{"name":"X"}`, v)
	})

	t.Run("overwrite", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Set(ctx, storage.KeyAccessToken, "A"))
		require.NoError(t, repo.Set(ctx, storage.KeyAccessToken, "B"))
		v, _, err := repo.Get(ctx, storage.KeyAccessToken)
		require.NoError(t, err)
		require.Equal(t, "B", v)
	})

	t.Run("empty value is present", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Set(ctx, storage.KeyRefreshToken, ""))
		_, ok, err := repo.Get(ctx, storage.KeyRefreshToken)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Set(ctx, storage.KeyRefreshToken, "R"))
		require.NoError(t, repo.Set(ctx, storage.KeyAccessToken, "A"))

		require.NoError(t, repo.Remove(ctx, storage.KeyRefreshToken))
		require.NoError(t, repo.Remove(ctx, storage.KeyRefreshToken))

		_, ok, err := repo.Get(ctx, storage.KeyRefreshToken)
		require.NoError(t, err)
		require.False(t, ok)

		v, ok, err := repo.Get(ctx, storage.KeyAccessToken)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "A", v)
	})
}
