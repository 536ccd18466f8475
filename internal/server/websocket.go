package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/jamesruggles/secuscan/internal/scanner"
)

const wsWriteTimeout = 5 * time.Second

// Hub manages WebSocket clients subscribed to scan status events.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Subscribe(scanID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[scanID] == nil {
		h.clients[scanID] = make(map[*websocket.Conn]struct{})
	}
	h.clients[scanID][conn] = struct{}{}
}

func (h *Hub) Unsubscribe(scanID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[scanID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, scanID)
		}
	}
}

// Subscribers reports how many clients follow scanID.
func (h *Hub) Subscribers(scanID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[scanID])
}

// Broadcast sends ev to every client subscribed to scanID. Clients that
// cannot be written to are dropped.
func (h *Hub) Broadcast(scanID string, ev scanner.ScanEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[scanID]))
	for conn := range h.clients[scanID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("encode scan event", "scan_id", scanID, "error", err)
		return
	}

	for _, conn := range conns {
		if err := write(conn, data); err != nil {
			slog.Debug("ws write error", "scan_id", scanID, "error", err)
			h.Unsubscribe(scanID, conn)
			conn.Close(websocket.StatusNormalClosure, "")
		}
	}
}

func write(conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

type wsSubscribeMsg struct {
	ScanID string `json:"scan_id"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.cfg.Server.CORSOrigins),
	})
	if err != nil {
		slog.Error("ws accept error", "error", err)
		return
	}
	defer conn.CloseNow()

	_, data, err := conn.Read(r.Context())
	if err != nil {
		return
	}

	var msg wsSubscribeMsg
	if err := json.Unmarshal(data, &msg); err != nil || msg.ScanID == "" {
		conn.Close(websocket.StatusInvalidFramePayloadData, "invalid subscribe message")
		return
	}

	s.hub.Subscribe(msg.ScanID, conn)
	defer s.hub.Unsubscribe(msg.ScanID, conn)

	// Late subscribers get the current state first.
	if scan, ok := s.orch.Get(msg.ScanID); ok {
		ev := scanner.ScanEvent{
			ScanID:    scan.ID,
			Status:    scan.Status,
			Timestamp: scan.Timestamp,
			Done:      scan.Status.Terminal(),
		}
		if data, err := json.Marshal(ev); err == nil {
			if err := write(conn, data); err != nil {
				return
			}
		}
	}

	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			return
		}
	}
}
