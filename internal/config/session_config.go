package config

import (
	"strings"
	"time"
)

type BackendType string

const (
	BackendRemote  BackendType = "remote"
	BackendFixture BackendType = "fixture"
)

type SessionConfig interface {
	GetAuthBackend() BackendType
	GetAutoRefresh() bool
	GetRefreshLeeway() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

// GetAuthBackend returns BackendRemote unless AUTH_BACKEND is "fixture".
func (Session) GetAuthBackend() BackendType {
	if BackendType(strings.ToLower(GetEnv("AUTH_BACKEND", ""))) == BackendFixture {
		return BackendFixture
	}
	return BackendRemote
}

func (Session) GetAutoRefresh() bool {
	return GetEnvBool("AUTO_REFRESH", false)
}

// GetRefreshLeeway is how long before access token expiry the auto refresh fires.
func (Session) GetRefreshLeeway() time.Duration {
	return GetEnvDuration("REFRESH_LEEWAY", 30*time.Second)
}
