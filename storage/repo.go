package storage

import "context"

// Persisted keys owned by the session manager.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// SessionKeys lists every key the session manager writes, in write order.
var SessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// Repo is the persisted key-value store behind a session.
// Only the session manager writes to it; everything else reads through the manager.
type Repo interface {
	// Get returns the value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or replaces a value
	Set(ctx context.Context, key, value string) error

	// Remove deletes a key. Removing a missing key is not an error
	Remove(ctx context.Context, key string) error
}
