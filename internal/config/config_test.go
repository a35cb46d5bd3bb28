package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-crm-session/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	for _, v := range []string{"API_BASE_URL", "API_TIMEOUT", "AUTH_BACKEND", "AUTO_REFRESH", "REFRESH_LEEWAY", "STORAGE_DRIVER", "STORAGE_PATH", "LOG_LEVEL"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, config.DefaultAPIBaseURL, c.GetAPIBaseURL())
	require.Equal(t, 10*time.Second, c.GetAPITimeout())
	require.Equal(t, config.BackendRemote, c.GetAuthBackend())
	require.False(t, c.GetAutoRefresh())
	require.Equal(t, 30*time.Second, c.GetRefreshLeeway())
	require.Equal(t, config.StorageFile, c.GetStorageDriver())
	require.Equal(t, "./data/session.json", c.GetStoragePath())
	require.Equal(t, "info", c.GetLogLevel())
}

func TestConfig_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://crm.example.com/api/")
	t.Setenv("API_TIMEOUT", "2s")
	t.Setenv("AUTH_BACKEND", "Fixture")
	t.Setenv("AUTO_REFRESH", "true")
	t.Setenv("REFRESH_LEEWAY", "1m")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("LOG_LEVEL", "DEBUG")
	c := config.New()

	require.Equal(t, "https://crm.example.com/api", c.GetAPIBaseURL())
	require.Equal(t, 2*time.Second, c.GetAPITimeout())
	require.Equal(t, config.BackendFixture, c.GetAuthBackend())
	require.True(t, c.GetAutoRefresh())
	require.Equal(t, time.Minute, c.GetRefreshLeeway())
	require.Equal(t, config.StorageSQLite, c.GetStorageDriver())
	require.Equal(t, "./data/session.db", c.GetStoragePath())
	require.Equal(t, "debug", c.GetLogLevel())
}

func TestConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("AUTO_REFRESH", "maybe")
	t.Setenv("REFRESH_LEEWAY", "-5s")
	t.Setenv("STORAGE_DRIVER", "etcd")
	c := config.New()

	require.Equal(t, 10*time.Second, c.GetAPITimeout())
	require.False(t, c.GetAutoRefresh())
	require.Equal(t, 30*time.Second, c.GetRefreshLeeway())
	require.Equal(t, config.StorageFile, c.GetStorageDriver())
}
