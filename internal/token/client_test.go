package token

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/voice/token", r.URL.Path)
		assert.Equal(t, "Bearer syt_identity", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "!voice:example.org", req["room_id"])

		json.NewEncoder(w).Encode(Grant{
			URL:   "ws://livekit.local:7880",
			Token: "jwt",
			TURNServers: []TURNServer{
				{URLs: "turn:turn.local:3478", Username: "1756700000:@ana", Credential: "c2ln"},
			},
		})
	}))
	defer srv.Close()

	grant, err := NewClient(srv.URL).Mint(context.Background(), "syt_identity", "!voice:example.org")
	require.NoError(t, err)
	assert.Equal(t, "ws://livekit.local:7880", grant.URL)
	assert.Equal(t, "jwt", grant.Token)
	require.Len(t, grant.TURNServers, 1)
	assert.Equal(t, "turn:turn.local:3478", grant.TURNServers[0].URLs)
}

func TestMintRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Mint(context.Background(), "bad", "!x:y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestMintRejectsIncompleteGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Grant{URL: "ws://livekit.local:7880"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Mint(context.Background(), "syt", "!x:y")
	require.Error(t, err)
}
