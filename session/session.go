package session

import "github.com/jrsteele09/go-crm-session/users"

// Snapshot is an immutable copy of the session state. Empty strings and a nil
// User mean absent.
type Snapshot struct {
	Status       Status        // Lifecycle marker
	AccessToken  string        // Short-lived bearer credential
	RefreshToken string        // Used only to mint new access tokens
	User         users.Profile // Raw profile as returned by the profile endpoint
}

func (s Snapshot) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

func (s Snapshot) clone() Snapshot {
	s.User = s.User.Clone()
	return s
}
