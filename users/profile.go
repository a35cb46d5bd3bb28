package users

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Profile is the user document returned by GET /users/me. The session keeps it
// as raw JSON and forwards it untouched; use User() for a typed view.
type Profile json.RawMessage

var ErrInvalidProfile = errors.New("profile is not a JSON object")

// ParseProfile validates data as a JSON object and returns a private copy of it.
func ParseProfile(data []byte) (Profile, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, ErrInvalidProfile
	}
	return Profile(bytes.Clone(trimmed)), nil
}

// NewProfile encodes v (typically a User or a map) as a Profile.
func NewProfile(v any) (Profile, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return ParseProfile(data)
}

func (p Profile) IsZero() bool {
	return len(p) == 0
}

func (p Profile) String() string {
	return string(p)
}

func (p Profile) Equal(other Profile) bool {
	return bytes.Equal(p, other)
}

func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	return Profile(bytes.Clone(p))
}

func (p Profile) Decode(v any) error {
	if p.IsZero() {
		return ErrInvalidProfile
	}
	return json.Unmarshal(p, v)
}

// Fields returns the profile as a generic map.
func (p Profile) Fields() (map[string]any, error) {
	fields := make(map[string]any)
	if err := p.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (p Profile) User() (User, error) {
	var u User
	err := p.Decode(&u)
	return u, err
}

func (p Profile) MarshalJSON() ([]byte, error) {
	if p.IsZero() {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	parsed, err := ParseProfile(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
