package session

import (
	"context"
	"time"

	"github.com/jrsteele09/go-crm-session/token"
)

// minRefreshWait keeps a token whose lifetime is shorter than the leeway from
// being refreshed in a tight loop.
const minRefreshWait = time.Second

// RunAutoRefresh refreshes the access token shortly before it expires, using the
// exp claim and the configured leeway. It runs until ctx is done. A failed
// refresh logs the session out like any other Refresh; the loop then waits for
// the next login.
func (m *Manager) RunAutoRefresh(ctx context.Context) error {
	updates, unsubscribe := m.Subscribe()
	defer unsubscribe()

	m.logger.Info().Dur("leeway", m.refreshLeeway).Msg("auto refresh started")
	for {
		wait, scheduled := m.nextRefresh()

		var timer *time.Timer
		var fire <-chan time.Time
		if scheduled {
			timer = time.NewTimer(wait)
			fire = timer.C
			m.logger.Debug().Dur("in", wait).Msg("next refresh scheduled")
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			m.logger.Info().Msg("auto refresh stopped")
			return ctx.Err()
		case <-updates:
			stopTimer(timer)
		case <-fire:
			if err := m.Refresh(ctx); err != nil {
				m.logger.Warn().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

// nextRefresh reports how long to wait before the next refresh, or false when
// nothing should be scheduled until the status changes.
func (m *Manager) nextRefresh() (time.Duration, bool) {
	s, _ := m.read()
	if s.Status != StatusAuthenticated || s.RefreshToken == "" {
		return 0, false
	}
	wait, ok := token.RefreshIn(s.AccessToken, m.nowFunc(), m.refreshLeeway)
	if !ok {
		// opaque token, expiry unknown
		return 0, false
	}
	return max(wait, minRefreshWait), true
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
