package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-crm-session/fixture"
	apperrors "github.com/jrsteele09/go-crm-session/internal/errors"
	"github.com/stretchr/testify/require"
)

func setupFixtureEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_BACKEND", "fixture")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "disabled")
}

func TestRun_Usage(t *testing.T) {
	setupFixtureEnv(t)
	var out bytes.Buffer

	require.Error(t, run(context.Background(), nil, &out))
	require.Contains(t, out.String(), "usage: crmsession")

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"help"}, &out))
	require.Contains(t, out.String(), "watch")

	require.Error(t, run(context.Background(), []string{"nope"}, &out))
}

func TestRun_Login(t *testing.T) {
	setupFixtureEnv(t)
	var out bytes.Buffer

	err := run(context.Background(), []string{"login", "-email", fixture.DefaultEmail, "-password", fixture.DefaultPassword}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "signed in as John Doe")

	err = run(context.Background(), []string{"login", "-email", fixture.DefaultEmail, "-password", "wrong"}, &out)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.Error(t, run(context.Background(), []string{"login"}, &out))
}

func TestRun_LoginFailureBeforeRestore(t *testing.T) {
	setupFixtureEnv(t)
	var out bytes.Buffer

	err := run(context.Background(), []string{"login", "-email", fixture.DefaultEmail, "-password", "wrong"}, &out)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	require.NotContains(t, out.String(), "signed in")
}

func TestRun_WatchReportsStatusBeforeReturning(t *testing.T) {
	setupFixtureEnv(t)
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	args := []string{"watch", "-auto-refresh=false", "-email", fixture.DefaultEmail, "-password", fixture.DefaultPassword}
	require.NoError(t, run(ctx, args, &out))

	// every queued status is printed by the time watch returns
	require.Contains(t, out.String(), "status: authenticated")
}

func TestRun_RequiresSession(t *testing.T) {
	setupFixtureEnv(t)
	var out bytes.Buffer

	for _, cmd := range []string{"whoami", "refresh", "refetch"} {
		err := run(context.Background(), []string{cmd}, &out)
		require.ErrorIs(t, err, apperrors.ErrNotAuthenticated, cmd)
	}

	require.NoError(t, run(context.Background(), []string{"status"}, &out))
	require.Contains(t, out.String(), "status: unauthenticated")

	require.NoError(t, run(context.Background(), []string{"logout"}, &out))
}

func TestRun_FixtureSessionEndsWithProcess(t *testing.T) {
	t.Setenv("AUTH_BACKEND", "fixture")
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("STORAGE_PATH", t.TempDir()+"/session.json")
	t.Setenv("LOG_LEVEL", "disabled")
	var out bytes.Buffer

	err := run(context.Background(), []string{"login", "-email", fixture.DefaultEmail, "-password", fixture.DefaultPassword}, &out)
	require.NoError(t, err)

	// the fixture backend does not outlive the process, so the restore fails and clears storage
	out.Reset()
	require.NoError(t, run(context.Background(), []string{"status"}, &out))
	require.Contains(t, out.String(), "status: unauthenticated")
}

func TestFieldsFlag(t *testing.T) {
	f := fieldsFlag{}
	require.NoError(t, f.Set("phone=555-0100"))
	require.NoError(t, f.Set("job_title=Head of Sales"))
	require.Error(t, f.Set("nope"))
	require.Error(t, f.Set("=value"))
	require.Equal(t, "job_title=Head of Sales,phone=555-0100", f.String())
}
