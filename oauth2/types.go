package oauth2

// TokenType represents how the access token is presented to the API.
type TokenType string

const (
	// BearerTokenType is sent as "Authorization: Bearer <token>".
	BearerTokenType TokenType = "bearer"
)

// Endpoint paths relative to the API base URL.
const (
	TokenPath        = "/token"
	TokenRefreshPath = "/token/refresh"
	CurrentUserPath  = "/users/me"
)
