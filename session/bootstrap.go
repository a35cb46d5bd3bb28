package session

import (
	"context"

	"github.com/jrsteele09/go-crm-session/storage"
	"github.com/jrsteele09/go-crm-session/users"
)

// Bootstrap restores the persisted session. Without a stored access token and user
// it logs out straight away and makes no network call. Otherwise the stored
// credentials are loaded and exactly one Refresh decides the outcome. The session
// stays StatusInitializing, and Ready stays open, until that refresh resolves.
// A failed refresh is an outcome, not an error: check Status afterwards.
func (m *Manager) Bootstrap(ctx context.Context) error {
	if !m.bootstrapped.CompareAndSwap(false, true) {
		return ErrAlreadyBootstrapped
	}
	defer m.markReady()

	m.mu.Lock()
	m.setStatusLocked(StatusInitializing)
	generation := m.generation
	m.mu.Unlock()

	stored := m.loadStored(ctx)
	if stored.AccessToken == "" || stored.User.IsZero() {
		m.logger.Info().Msg("no stored session")
		m.logoutIf(generation)
		return nil
	}

	m.mu.Lock()
	if m.generation != generation {
		// a Login or Logout already decided the session
		m.mu.Unlock()
		return nil
	}
	m.state.AccessToken = stored.AccessToken
	m.state.RefreshToken = stored.RefreshToken
	m.state.User = stored.User
	m.mu.Unlock()

	m.logger.Info().Msg("restoring stored session")
	if err := m.Refresh(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("stored session could not be restored")
		if m.Status() == StatusInitializing {
			m.logoutIf(generation)
		}
		return nil
	}
	m.logger.Info().Msg("stored session restored")
	return nil
}

// loadStored reads the persisted keys. Unreadable entries count as absent.
func (m *Manager) loadStored(ctx context.Context) Snapshot {
	var s Snapshot
	s.AccessToken = m.loadKey(ctx, storage.KeyAccessToken)
	s.RefreshToken = m.loadKey(ctx, storage.KeyRefreshToken)

	if raw := m.loadKey(ctx, storage.KeyUser); raw != "" {
		profile, err := users.ParseProfile([]byte(raw))
		if err != nil {
			m.logger.Warn().Err(err).Msg("ignoring stored user")
		} else {
			s.User = profile
		}
	}
	return s
}

func (m *Manager) loadKey(ctx context.Context, key string) string {
	value, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.Err(err).Str("key", key).Msg("failed to read session key")
		return ""
	}
	if !ok {
		return ""
	}
	return value
}
