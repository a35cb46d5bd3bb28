package session

import (
	"context"

	"github.com/jrsteele09/go-crm-session/storage"
	"github.com/pkg/errors"
)

// RefetchProfile reloads the profile with the current access token. It is a no-op
// without an access token. On failure the stored profile is kept exactly as it
// was and the session is not logged out; the error is returned for diagnostics.
func (m *Manager) RefetchProfile(ctx context.Context) error {
	current, generation := m.read()
	if current.AccessToken == "" {
		return nil
	}

	callCtx, cancel := m.callContext(ctx)
	defer cancel()

	profile, err := m.backend.Profile(callCtx, current.AccessToken)
	if err == nil && profile.IsZero() {
		err = errors.New("empty profile")
	}
	if err != nil {
		m.logger.Warn().Err(err).Msg("profile refetch failed, keeping stored profile")
		return errors.Wrap(err, "[Manager.RefetchProfile]")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != generation {
		return errors.Wrap(ErrSuperseded, "[Manager.RefetchProfile]")
	}
	if err := m.writeThroughLocked(ctx, []keyValue{{storage.KeyUser, profile.String()}}); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist refetched profile, keeping stored profile")
		return errors.Wrap(err, "[Manager.RefetchProfile]")
	}
	m.state.User = profile.Clone()
	return nil
}
