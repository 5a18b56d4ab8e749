package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBroadcastWithNoClients(t *testing.T) {
	hub := NewHub(testLogger())
	// Must not block or panic.
	hub.Broadcast(Event{Type: EventScheduleWiped})
	if n := hub.ClientCount(); n != 0 {
		t.Errorf("client count = %d, want 0", n)
	}
}

func TestClientReceivesBroadcast(t *testing.T) {
	hub := NewHub(testLogger())
	srv := httptest.NewServer(Handler(hub, testLogger()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := ws.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(ws.StatusNormalClosure, "")

	// Wait for the server side to register the client.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast(Event{
		Type: EventScheduleGenerated,
		Data: map[string]any{"year": 2025, "month": 9},
	})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != EventScheduleGenerated {
		t.Errorf("type = %q, want %q", ev.Type, EventScheduleGenerated)
	}
	if ev.Data["month"] != float64(9) {
		t.Errorf("month = %v, want 9", ev.Data["month"])
	}
}
