// Package events pushes report notifications to websocket subscribers.
package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nepsereport/pkg/nepsereport"
)

// TypeReportGenerated is sent after a report artifact is written.
const TypeReportGenerated = "report.generated"

// Event is one notification.
type Event struct {
	Type        string             `json:"type"`
	ReportID    string             `json:"report_id"`
	Format      string             `json:"format"`
	Trigger     string             `json:"trigger"`
	GeneratedAt time.Time          `json:"generated_at"`
	PriceDate   string             `json:"price_date"`
	Totals      nepsereport.Totals `json:"totals"`
}

// ReportGenerated builds the event announcing r.
func ReportGenerated(r *nepsereport.Report, format, trigger string) Event {
	return Event{
		Type:        TypeReportGenerated,
		ReportID:    r.ID,
		Format:      format,
		Trigger:     trigger,
		GeneratedAt: r.GeneratedAt,
		PriceDate:   r.PriceDate,
		Totals:      r.Totals,
	}
}

// Hub fans events out to connected clients. A nil Hub drops everything.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	logger  *slog.Logger
	last    *Event
	// writeMu serializes writes; a websocket allows one writer at a time.
	writeMu sync.Mutex
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: make(map[*websocket.Conn]struct{}), logger: logger}
}

// AddClient registers conn and replays the latest event to it.
func (h *Hub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	last := h.last
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("event subscriber connected", "clients", n)

	if last != nil {
		h.writeMu.Lock()
		err := conn.WriteJSON(last)
		h.writeMu.Unlock()
		if err != nil {
			h.RemoveClient(conn)
		}
	}
}

// RemoveClient unregisters and closes conn.
func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends ev to every client, dropping those that fail.
func (h *Hub) Broadcast(ev Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.last = &ev
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
	}
	h.mu.Unlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, conn := range clients {
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Warn("dropping event subscriber", "err", err)
			h.RemoveClient(conn)
		}
	}
}
