package oauth2_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-crm-session/oauth2"
	"github.com/stretchr/testify/require"
)

func TestTokenResponse_Complete(t *testing.T) {
	var tr oauth2.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(`{"access_token":"A","refresh_token":"R","token_type":"bearer"}`), &tr))
	require.True(t, tr.Complete())

	var partial oauth2.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(`{"access_token":"A"}`), &partial))
	require.False(t, partial.Complete())

	var empty oauth2.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(`{"access_token":"","refresh_token":"R"}`), &empty))
	require.False(t, empty.Complete())
}
