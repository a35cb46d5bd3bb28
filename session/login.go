package session

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/go-crm-session/internal/errors"
	"github.com/jrsteele09/go-crm-session/storage"
	"github.com/pkg/errors"
)

// Login authenticates with email and password, fetches the profile and only then
// persists the token pair and the profile. It reports (true, nil) on success. On
// failure it reports false with the reason and leaves storage untouched.
// The reason wraps ErrInvalidCredentials, ErrTransport, ErrUnexpected,
// ErrProfileFetch, ErrSuperseded or a storage error.
//
// A successful Login also resolves the session: Ready closes and a later
// Bootstrap returns ErrAlreadyBootstrapped. A failed Login before Bootstrap
// leaves the session StatusUninitialized, since nothing has been restored yet.
func (m *Manager) Login(ctx context.Context, email, password string) (bool, error) {
	_, generation := m.read()
	m.logger.Info().Str("email", email).Msg("login attempt")

	callCtx, cancel := m.callContext(ctx)
	defer cancel()

	creds, err := m.backend.Login(callCtx, email, password)
	if err != nil {
		m.logger.Warn().Err(err).Str("email", email).Msg("login rejected")
		return false, errors.Wrap(err, "[Manager.Login]")
	}
	if creds.AccessToken == "" || creds.RefreshToken == "" {
		return false, errors.Wrap(apperrors.ErrUnexpected, "[Manager.Login] incomplete token pair")
	}

	profile, err := m.backend.Profile(callCtx, creds.AccessToken)
	if err != nil {
		m.logger.Warn().Err(err).Str("email", email).Msg("profile fetch after login failed")
		return false, fmt.Errorf("[Manager.Login] %w: %w", apperrors.ErrProfileFetch, err)
	}
	if profile.IsZero() {
		return false, errors.Wrap(apperrors.ErrProfileFetch, "[Manager.Login] empty profile")
	}

	m.mu.Lock()
	if m.generation != generation {
		m.mu.Unlock()
		m.logger.Info().Str("email", email).Msg("login superseded")
		return false, errors.Wrap(ErrSuperseded, "[Manager.Login]")
	}
	err = m.writeThroughLocked(ctx, []keyValue{
		{storage.KeyAccessToken, creds.AccessToken},
		{storage.KeyRefreshToken, creds.RefreshToken},
		{storage.KeyUser, profile.String()},
	})
	if err != nil {
		m.mu.Unlock()
		m.logger.Err(err).Msg("failed to persist session")
		return false, errors.Wrap(err, "[Manager.Login]")
	}
	m.generation++
	m.state.AccessToken = creds.AccessToken
	m.state.RefreshToken = creds.RefreshToken
	m.state.User = profile.Clone()
	m.setStatusLocked(StatusAuthenticated)
	m.mu.Unlock()

	m.bootstrapped.Store(true)
	m.markReady()

	m.logger.Info().Str("email", email).Msg("logged in")
	return true, nil
}
