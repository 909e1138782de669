package mapclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-assistant/internal/domain"
	"map-assistant/internal/infra/mapclient"
)

func TestClient_Dispatch(t *testing.T) {
	var received mapclient.Action

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/commands", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := mapclient.NewClient(server.URL+"/", "secret")

	cmd := domain.NewCommand(domain.CommandRoute, "paris", "berlin")
	require.NoError(t, client.Dispatch(context.Background(), "route from paris to berlin", cmd))

	assert.NotEmpty(t, received.ID)
	assert.Equal(t, domain.CommandRoute, received.Command)
	assert.Equal(t, []string{"paris", "berlin"}, received.Locations)
	assert.Equal(t, "route from paris to berlin", received.Text)
}

func TestClient_DispatchEmptyLocations(t *testing.T) {
	var raw map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	}))
	defer server.Close()

	client := mapclient.NewClient(server.URL, "")
	require.NoError(t, client.Dispatch(context.Background(), "reset", domain.Command{Kind: domain.CommandReset}))

	assert.Equal(t, []any{}, raw["locations"])
}

func TestClient_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := mapclient.NewClient(server.URL, "wrong")

	err := client.Dispatch(context.Background(), "show me tokyo", domain.NewCommand(domain.CommandZoom, "tokyo"))
	assert.ErrorContains(t, err, "unauthorized")
}
