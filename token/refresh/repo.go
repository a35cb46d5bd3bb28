package refresh

import (
	"time"
)

// StoredRefreshToken is the issuer-side record behind an opaque refresh token.
type StoredRefreshToken struct {
	Token  string    // The opaque token string handed to the client
	UserID string    // Owner of the token
	Iat    time.Time // Issued at time
}

// Repo stores refresh token records keyed by the token string.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	GetByUserID(userID string) (*StoredRefreshToken, error)
}
