package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefops/relief-api/internal/config"
)

func TestSend_PostsMessage(t *testing.T) {
	var got Message
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(config.NotifierConfig{WebhookURL: srv.URL, Token: "secret"})

	err := client.Send(context.Background(), Message{Title: "Shortfall digest", Text: "2 items short"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, Message{Title: "Shortfall digest", Text: "2 items short"}, got)
}

func TestSend_ReportsReceiverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"channel archived"}`))
	}))
	defer srv.Close()

	client := NewClient(config.NotifierConfig{WebhookURL: srv.URL})

	err := client.Send(context.Background(), Message{Text: "hello"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=422")
	assert.Contains(t, err.Error(), "channel archived")
}
