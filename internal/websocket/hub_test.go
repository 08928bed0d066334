package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/event"
)

func TestHubStreamsOwnEvents(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	hub := NewHub(bus, []string{"*"})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(r.Context(), w, r, r.URL.Query().Get("actor"))
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?actor=alice"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	bus.Publish(event.Event{Type: event.TypeNotification, ActorID: "bob", ViewID: "other"})
	bus.Publish(event.Event{Type: event.TypeNotification, ActorID: "alice", ViewID: "mine"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got event.Event
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, "mine", got.ViewID)
	require.Equal(t, event.TypeNotification, got.Type)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	hub := NewHub(event.NewBus(), []string{"https://console.example"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(context.Background(), w, r, "alice")
	}))
	t.Cleanup(server.Close)

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
