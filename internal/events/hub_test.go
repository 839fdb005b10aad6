package events

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"nepsereport/pkg/nepsereport"
)

func serveHub(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.AddClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.RemoveClient(conn)
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, hub.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(nil)
	srv := serveHub(t, hub)
	conn := dial(t, srv)
	waitClients(t, hub, 1)

	report := &nepsereport.Report{ID: "r-1", PriceDate: "2025-12-25"}
	hub.Broadcast(ReportGenerated(report, "markdown", "api"))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Type != TypeReportGenerated || got.ReportID != "r-1" || got.Trigger != "api" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestLateSubscriberGetsLastEvent(t *testing.T) {
	hub := NewHub(nil)
	hub.Broadcast(Event{Type: TypeReportGenerated, ReportID: "r-2"})

	srv := serveHub(t, hub)
	conn := dial(t, srv)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.ReportID != "r-2" {
		t.Fatalf("expected replay of r-2, got %+v", got)
	}
}

func TestNilHub(t *testing.T) {
	var hub *Hub
	hub.Broadcast(Event{Type: TypeReportGenerated})
	if hub.Clients() != 0 {
		t.Fatalf("expected no clients")
	}
}
