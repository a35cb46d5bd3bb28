package session

import (
	"context"

	"github.com/jrsteele09/go-crm-session/oauth2"
	"github.com/jrsteele09/go-crm-session/users"
)

// Backend is the remote side of the session: the CRM auth API or an in-process fixture.
// Errors should wrap the internal/errors sentinels so the manager can classify them.
type Backend interface {
	// Login exchanges an email and password for a token pair.
	Login(ctx context.Context, email, password string) (oauth2.Credentials, error)

	// Refresh mints a new access token from a refresh token.
	Refresh(ctx context.Context, refreshToken string) (string, error)

	// Profile returns the user the access token was issued to.
	Profile(ctx context.Context, accessToken string) (users.Profile, error)

	// UpdateProfile applies fields to the current user and returns the result.
	UpdateProfile(ctx context.Context, accessToken string, fields map[string]any) (users.Profile, error)
}

// Navigator presents the login entry point when the session ends.
type Navigator interface {
	ShowLogin()
}

// NavigatorFunc adapts a plain function to a Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ShowLogin() {
	f()
}

type noopNavigator struct{}

func (noopNavigator) ShowLogin() {}
