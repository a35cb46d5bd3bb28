package session

import (
	"context"

	"github.com/jrsteele09/go-crm-session/storage"
)

// Logout clears the session from memory and storage and shows the login entry
// point. It makes no network call and never fails; storage errors are logged.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.logoutLocked()
	m.mu.Unlock()

	m.navigator.ShowLogin()
}

// logoutIf logs out only if the credentials are still those of generation, so a
// stale failure cannot end a newer session.
func (m *Manager) logoutIf(generation uint64) {
	m.mu.Lock()
	if m.generation != generation {
		m.mu.Unlock()
		return
	}
	m.logoutLocked()
	m.mu.Unlock()

	m.navigator.ShowLogin()
}

func (m *Manager) logoutLocked() {
	ctx := context.Background()
	for _, key := range storage.SessionKeys {
		if err := m.store.Remove(ctx, key); err != nil {
			m.logger.Err(err).Str("key", key).Msg("failed to remove session key")
		}
	}

	m.generation++
	wasAuthenticated := m.state.Status == StatusAuthenticated
	m.state = Snapshot{Status: m.state.Status}
	m.setStatusLocked(StatusUnauthenticated)
	if wasAuthenticated {
		m.logger.Info().Msg("logged out")
	}
}
