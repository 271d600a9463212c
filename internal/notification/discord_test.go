package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordPostsEmbeds(t *testing.T) {
	var got []DiscordMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var msg DiscordMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		got = append(got, msg)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	d := &Discord{ErrorURL: server.URL, SuccessURL: server.URL, Client: server.Client()}
	ctx := context.Background()
	require.NoError(t, d.Error(ctx, "asset not found"))
	require.NoError(t, d.Success(ctx, "run abc"))

	require.Len(t, got, 2)
	assert.Equal(t, colorRed, got[0].Embeds[0].Color)
	assert.Contains(t, got[0].Embeds[0].Description, "asset not found")
	assert.Equal(t, colorGreen, got[1].Embeds[0].Color)
	assert.Contains(t, got[1].Embeds[0].Description, "run abc")
}

func TestDiscordFailureAndDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	d := &Discord{ErrorURL: server.URL, Client: server.Client()}
	assert.ErrorContains(t, d.Error(context.Background(), "boom"), "status code: 400")
	assert.NoError(t, d.Success(context.Background(), "no webhook configured"))
}
