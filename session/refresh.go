package session

import (
	"context"

	apperrors "github.com/jrsteele09/go-crm-session/internal/errors"
	"github.com/jrsteele09/go-crm-session/storage"
	"github.com/pkg/errors"
)

const refreshKey = "refresh"

// Refresh exchanges the stored refresh token for a new access token. Only the
// access token is replaced; a refresh token in the response is ignored. Any
// failure, including a missing refresh token, logs the session out. Concurrent
// calls share one network request. That request does not belong to any one
// caller: it is bounded by the request timeout only, and a caller whose ctx ends
// stops waiting while the refresh completes for everyone else.
func (m *Manager) Refresh(ctx context.Context) error {
	shared := context.WithoutCancel(ctx)
	result := m.refreshGroup.DoChan(refreshKey, func() (any, error) {
		return nil, m.refresh(shared)
	})

	select {
	case r := <-result:
		return r.Err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "[Manager.Refresh]")
	}
}

func (m *Manager) refresh(ctx context.Context) error {
	current, generation := m.read()
	if current.RefreshToken == "" {
		m.logger.Info().Msg("no refresh token, logging out")
		m.Logout()
		return errors.Wrap(apperrors.ErrNoRefreshToken, "[Manager.Refresh]")
	}

	callCtx, cancel := m.callContext(ctx)
	defer cancel()

	access, err := m.backend.Refresh(callCtx, current.RefreshToken)
	if err == nil && access == "" {
		err = errors.Wrap(apperrors.ErrUnexpected, "empty access token")
	}
	if err != nil {
		m.logger.Warn().Err(err).Msg("refresh failed, logging out")
		m.logoutIf(generation)
		return errors.Wrap(err, "[Manager.Refresh]")
	}

	m.mu.Lock()
	if m.generation != generation {
		m.mu.Unlock()
		return errors.Wrap(ErrSuperseded, "[Manager.Refresh]")
	}
	if err := m.writeThroughLocked(ctx, []keyValue{{storage.KeyAccessToken, access}}); err != nil {
		m.mu.Unlock()
		m.logger.Err(err).Msg("failed to persist refreshed token, logging out")
		m.logoutIf(generation)
		return errors.Wrap(err, "[Manager.Refresh]")
	}
	m.state.AccessToken = access
	if !m.state.User.IsZero() {
		m.setStatusLocked(StatusAuthenticated)
	}
	m.mu.Unlock()

	m.logger.Debug().Msg("access token refreshed")
	return nil
}
