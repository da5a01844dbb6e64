package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onestopcentre/cybercrime-api/api/handlers"
)

func dialHub(t *testing.T, hub *handlers.Hub) (*websocket.Conn, func()) {
	srv := httptest.NewServer(http.HandlerFunc(hub.LiveHandler))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestHub_BroadcastDeliversEvent(t *testing.T) {
	hub := handlers.NewHub()
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast("case_created", "CR-2026-0001")

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var frame struct {
		Event      string `json:"event"`
		CaseNumber string `json:"caseNumber"`
		Timestamp  string `json:"timestamp"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "case_created", frame.Event)
	assert.Equal(t, "CR-2026-0001", frame.CaseNumber)
	assert.NotEmpty(t, frame.Timestamp)
}

func TestHub_DroppedClientUnregisters(t *testing.T) {
	hub := handlers.NewHub()
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	// a closed client must disappear from the hub: either the read pump
	// unregisters it or the next broadcast write fails and drops it
	require.Eventually(t, func() bool {
		hub.Broadcast("case_updated", "CR-2026-0001")
		return hub.ClientCount() == 0
	}, 2*time.Second, 50*time.Millisecond)
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := handlers.NewHub()
	hub.Broadcast("case_updated", "CR-2026-0001")
	assert.Equal(t, 0, hub.ClientCount())
}
