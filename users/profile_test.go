package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-crm-session/users"
	"github.com/stretchr/testify/require"
)

func TestParseProfile(t *testing.T) {
	p, err := users.ParseProfile([]byte(` {"name":"X"} `))
	require.NoError(t, err)
	require.Equal(t, `{"name":"X"}`, p.String())

	for _, bad := range []string{"", "null", `"x"`, "[1]", `{"name":`} {
		_, err := users.ParseProfile([]byte(bad))
		require.ErrorIs(t, err, users.ErrInvalidProfile, bad)
	}
}

func TestProfile_PreservesBytes(t *testing.T) {
	raw := `{"z":1,"a":{"nested":true},"firstname":"Ada"}`
	p, err := users.ParseProfile([]byte(raw))
	require.NoError(t, err)

	encoded, err := json.Marshal(struct {
		User users.Profile `json:"user"`
	}{User: p})
	require.NoError(t, err)
	require.JSONEq(t, `{"user":`+raw+`}`, string(encoded))
	require.Equal(t, raw, p.String())
}

func TestProfile_User(t *testing.T) {
	p, err := users.ParseProfile([]byte(`{"_id":"65a","firstname":"Ada","lastname":"Lovelace","email":"ada@crm.test","role":"admin","job_title":"CTO"}`))
	require.NoError(t, err)

	u, err := p.User()
	require.NoError(t, err)
	require.Equal(t, "65a", u.Identifier())
	require.Equal(t, "Ada Lovelace", u.DisplayName())
	require.Equal(t, "CTO", u.JobTitle)

	fields, err := p.Fields()
	require.NoError(t, err)
	require.Equal(t, "admin", fields["role"])
}

func TestUser_DisplayNameFallbacks(t *testing.T) {
	require.Equal(t, "John Doe", users.User{Name: "John Doe"}.DisplayName())
	require.Equal(t, "x@y.z", users.User{Email: "x@y.z"}.DisplayName())
	require.Equal(t, "1", users.User{ID: "1"}.Identifier())
}

func TestProfile_CloneIsIndependent(t *testing.T) {
	p, err := users.NewProfile(map[string]string{"name": "X"})
	require.NoError(t, err)
	c := p.Clone()
	c[2] = 'N'
	require.False(t, p.Equal(c))
	require.Nil(t, users.Profile(nil).Clone())
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("goodpass")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("goodpass", hash))
	require.False(t, users.CheckPasswordHash("badpass", hash))
}
