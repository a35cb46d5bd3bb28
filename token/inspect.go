package token

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrNoExpiry = errors.New("token carries no exp claim")

// Claims is the subset of an access token the session client cares about.
// Signatures are NOT verified: the client never holds the server's key, it only
// reads exp to decide when to refresh.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect reads the claims of a JWT access token without verifying it.
func Inspect(rawToken string) (Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return Claims{}, errors.New("empty token")
	}
	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return Claims{}, err
	}

	var c Claims
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		c.Subject = sub
	}
	if iat, err := parsed.Claims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return Claims{}, err
	}
	if exp == nil {
		return c, ErrNoExpiry
	}
	c.ExpiresAt = exp.Time
	return c, nil
}

// ExpiresAt returns the exp claim of rawToken, or false when it cannot be read.
func ExpiresAt(rawToken string) (time.Time, bool) {
	c, err := Inspect(rawToken)
	if err != nil {
		return time.Time{}, false
	}
	return c.ExpiresAt, true
}

// RefreshIn returns how long to wait before refreshing rawToken so that the new
// token lands leeway before the old one expires. Zero means refresh now.
func RefreshIn(rawToken string, now time.Time, leeway time.Duration) (time.Duration, bool) {
	exp, ok := ExpiresAt(rawToken)
	if !ok {
		return 0, false
	}
	wait := exp.Add(-leeway).Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait, true
}
