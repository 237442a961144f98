package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/sharewatch/internal/logging"
	"github.com/muurk/sharewatch/internal/shares"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server binds to localhost for a single user; browser pages
	// served from file:// send no Origin worth checking.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the envelope for every message pushed to a WebSocket
// client. Type is "snapshot" for the initial share list and "status"
// for individual status changes.
type wsMessage struct {
	Type    string      `json:"type"`
	Shares  []shareView `json:"shares,omitempty"`
	ShareID string      `json:"shareId,omitempty"`
	Status  string      `json:"status,omitempty"`
	Reason  string      `json:"reason,omitempty"`
}

// handleWebSocket serves GET /ws: upgrades the connection, sends a
// snapshot of all known shares, then pushes status change events as
// they happen until the client disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.serveEvents(conn)
	}()
}

// serveEvents runs the write side of a WebSocket connection: snapshot
// first, then status events and keepalive pings.
func (s *Server) serveEvents(conn *websocket.Conn) {
	remoteAddr := conn.RemoteAddr().String()
	logging.Info("WebSocket client connected", zap.String("remote_addr", remoteAddr))

	events, cancel := s.statuses.Subscribe()
	defer cancel()

	defer func() {
		_ = conn.Close()
		logging.Info("WebSocket client disconnected", zap.String("remote_addr", remoteAddr))
	}()

	// Reader goroutine: we never expect client messages, but reading is
	// required to process control frames and notice disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.writeSnapshot(conn); err != nil {
		logging.Error("Failed to send snapshot",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			msg := wsMessage{
				Type:    "status",
				ShareID: ev.ShareID,
				Status:  ev.Status.State.String(),
				Reason:  ev.Status.Reason,
			}
			if err := writeMessage(conn, msg); err != nil {
				logging.Debug("WebSocket write failed",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

// writeSnapshot sends the full share list with current statuses.
func (s *Server) writeSnapshot(conn *websocket.Conn) error {
	list := s.shares.AllShares()
	statuses := s.statuses.Statuses()

	views := make([]shareView, 0, len(list))
	for _, share := range list {
		st, ok := statuses[share.ID]
		if !ok {
			st = shares.Unknown()
		}
		views = append(views, newShareView(share, st))
	}

	return writeMessage(conn, wsMessage{Type: "snapshot", Shares: views})
}

func writeMessage(conn *websocket.Conn, msg wsMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
