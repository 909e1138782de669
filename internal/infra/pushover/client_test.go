package pushover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-assistant/internal/infra/pushover"
)

func TestClient_Notify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "app-token", r.PostForm.Get("token"))
		assert.Equal(t, "user-key", r.PostForm.Get("user"))
		assert.Equal(t, "zoom: tokyo", r.PostForm.Get("message"))
		assert.Equal(t, "Map Assistant", r.PostForm.Get("title"))
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("app-token", "user-key", server.URL)
	require.NoError(t, client.Notify(context.Background(), "zoom: tokyo"))
}

func TestClient_NotifyDisabledWithoutCredentials(t *testing.T) {
	client := pushover.NewClientWithURL("", "", "http://127.0.0.1:0")
	assert.NoError(t, client.Notify(context.Background(), "ignored"))
}

func TestClient_NotifyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusBadRequest)
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("bad", "user", server.URL)
	assert.ErrorContains(t, client.Notify(context.Background(), "hello"), "pushover error")
}
