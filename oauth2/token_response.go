package oauth2

import "github.com/jrsteele09/go-crm-session/internal/utils"

// TokenResponse is the body returned by POST /token after a successful login.
type TokenResponse struct {
	// AccessToken is the short-lived bearer credential.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken *string `json:"access_token,omitempty"`

	// RefreshToken is used only to mint new access tokens at /token/refresh.
	// It is not rotated by the server on refresh.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// TokenType is always "bearer" for this API.
	TokenType string `json:"token_type,omitempty"`
}

// Complete reports whether both credentials were issued.
func (t TokenResponse) Complete() bool {
	return utils.Value(t.AccessToken) != "" && utils.Value(t.RefreshToken) != ""
}

// RefreshRequest is the JSON body of POST /token/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse is the body returned by POST /token/refresh.
type RefreshResponse struct {
	AccessToken *string `json:"access_token,omitempty"`
	TokenType   string  `json:"token_type,omitempty"`

	// RefreshToken is read but never applied; the session keeps its original refresh token.
	RefreshToken *string `json:"refresh_token,omitempty"`
}

// ErrorResponse is the error body the auth API returns with any non-2xx status.
// Example: {"detail": "Incorrect email or password"}
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Credentials is the token pair a successful login yields.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}
