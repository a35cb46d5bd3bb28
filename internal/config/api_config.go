package config

import (
	"strings"
	"time"
)

const (
	apiBaseURLVar = "API_BASE_URL"
	apiTimeoutVar = "API_TIMEOUT"

	DefaultAPIBaseURL = "http://localhost:8000"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the auth API base without a trailing slash.
func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, DefaultAPIBaseURL), "/")
}

func (API) GetAPITimeout() time.Duration {
	return GetEnvDuration(apiTimeoutVar, 10*time.Second)
}
