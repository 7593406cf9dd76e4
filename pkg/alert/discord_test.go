package alert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordWebhook_Send(t *testing.T) {
	received := make(chan webhookPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		received <- p
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	hook := NewDiscordWebhook(srv.URL)
	require.NoError(t, hook.Send(context.Background(), "Error [Match Lookup]", errors.New("boom")))

	p := <-received
	require.Len(t, p.Embeds, 1)
	assert.Equal(t, "Error [Match Lookup]", p.Embeds[0].Title)
	assert.Contains(t, p.Embeds[0].Description, "boom")
	assert.Equal(t, exceptionColor, p.Embeds[0].Color)
}

func TestDiscordWebhook_SendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewDiscordWebhook(srv.URL).Send(context.Background(), "t", errors.New("x"))
	assert.Error(t, err)
}

func TestDiscordWebhook_SendExceptionIsAsync(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
		close(done)
	}))
	defer srv.Close()

	NewDiscordWebhook(srv.URL).SendException("t", errors.New("x"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestDiscordWebhook_EmptyURLIsNoop(t *testing.T) {
	// panic 이나 블로킹 없이 반환해야 한다
	NewDiscordWebhook("").SendException("t", errors.New("x"))
}
