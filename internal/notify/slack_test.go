package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devlog_notifier/internal/markdown"
)

func testSlack(t *testing.T, handler http.HandlerFunc) *Slack {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewSlack(Config{Token: "xoxb-test", BaseURL: server.URL}, logger)
}

func TestPostMessage(t *testing.T) {
	var payload map[string]any
	slack := testSlack(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"ok": true}`))
	})

	blocks := []markdown.Block{markdown.SectionBlock{Text: "hello"}}
	err := slack.PostMessage(context.Background(), "C123", blocks, PostOptions{SuppressLinkPreview: true})
	require.NoError(t, err)

	assert.Equal(t, "C123", payload["channel"])
	assert.Equal(t, false, payload["unfurl_links"])
	assert.Equal(t, false, payload["unfurl_media"])
	assert.Len(t, payload["blocks"], 1)
}

func TestPostMessage_APIError(t *testing.T) {
	slack := testSlack(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	})

	err := slack.PostMessage(context.Background(), "C404", nil, PostOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestPostMessage_HTTPError(t *testing.T) {
	slack := testSlack(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := slack.PostMessage(context.Background(), "C123", nil, PostOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
