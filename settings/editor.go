// Package settings edits the signed-in user's profile.
package settings

import (
	"context"

	apperrors "github.com/jrsteele09/go-crm-session/internal/errors"
	"github.com/jrsteele09/go-crm-session/session"
	"github.com/jrsteele09/go-crm-session/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ProfileUpdater is the part of the backend the editor needs.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, accessToken string, fields map[string]any) (users.Profile, error)
}

// SessionReader is the part of the session manager the editor needs.
type SessionReader interface {
	Snapshot() session.Snapshot
	RefetchProfile(ctx context.Context) error
}

// Editor saves profile changes and then has the session pick them up.
type Editor struct {
	updater ProfileUpdater
	session SessionReader
	logger  zerolog.Logger
}

type EditorOption func(*Editor)

func WithLogger(logger zerolog.Logger) EditorOption {
	return func(e *Editor) {
		e.logger = logger
	}
}

func NewEditor(updater ProfileUpdater, sessionReader SessionReader, options ...EditorOption) *Editor {
	e := &Editor{
		updater: updater,
		session: sessionReader,
		logger:  log.Logger,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Save sends fields to the profile endpoint and refetches the session profile.
// It returns the profile as the server saved it. A failed refetch is logged and
// does not fail the save.
func (e *Editor) Save(ctx context.Context, fields map[string]any) (users.Profile, error) {
	s := e.session.Snapshot()
	if !s.IsAuthenticated() || s.AccessToken == "" {
		return nil, apperrors.ErrNotAuthenticated
	}
	if len(fields) == 0 {
		return s.User, nil
	}

	updated, err := e.updater.UpdateProfile(ctx, s.AccessToken, fields)
	if err != nil {
		return nil, errors.Wrap(err, "[Editor.Save]")
	}

	if err := e.session.RefetchProfile(ctx); err != nil {
		e.logger.Warn().Err(err).Msg("profile saved but session copy is stale")
	}
	return updated, nil
}
