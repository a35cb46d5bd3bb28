package refresh_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-crm-session/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-crm-session/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

func TestManager_CreateValidate(t *testing.T) {
	m := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), 16, time.Hour)

	tok, err := m.Create("user-1")
	require.NoError(t, err)
	require.Len(t, tok, 32)

	rt, err := m.Validate(tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", rt.UserID)

	_, err = m.Validate("nope")
	require.ErrorIs(t, err, refresh.ErrUnknownToken)
}

func TestManager_SingleTokenPerUser(t *testing.T) {
	m := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), 0, 0)

	first, err := m.Create("user-1")
	require.NoError(t, err)
	second, err := m.Create("user-1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = m.Validate(first)
	require.ErrorIs(t, err, refresh.ErrUnknownToken)
	_, err = m.Validate(second)
	require.NoError(t, err)
}

func TestManager_Expiry(t *testing.T) {
	base := time.Now()
	refresh.NowTimeFunc = func() time.Time { return base }
	t.Cleanup(func() { refresh.NowTimeFunc = time.Now })

	m := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), 8, time.Hour)
	tok, err := m.Create("user-1")
	require.NoError(t, err)

	refresh.NowTimeFunc = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = m.Validate(tok)
	require.ErrorIs(t, err, refresh.ErrExpiredToken)

	refresh.NowTimeFunc = func() time.Time { return base }
	_, err = m.Validate(tok)
	require.ErrorIs(t, err, refresh.ErrUnknownToken)
}
