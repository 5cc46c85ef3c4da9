package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/kupovina/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/session"
	"github.com/MrSnakeDoc/kupovina/internal/utils"
)

const (
	defaultStreamPing = 30 * time.Second
	streamWriteWait   = 10 * time.Second
	streamReadLimit   = 4 << 10
)

type streamMsg struct {
	Type string `json:"type"`
}

type streamFrame struct {
	Type string       `json:"type"`
	View session.View `json:"view"`
}

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	},
}

// Stream pushes the session view over a WebSocket after every change.
// Clients may send {"type":"ping"} to refresh their presence.
func Stream(d deps.Deps) http.HandlerFunc {
	pingEvery := d.StreamPingInterval
	if pingEvery <= 0 {
		pingEvery = defaultStreamPing
	}
	pongWait := pingEvery * 2

	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r)
		if !ok {
			return
		}

		conn, err := streamUpgrader.Upgrade(w, r, nil)
		if err != nil {
			d.Logger.Debug("websocket upgrade failed", logger.Error(err))
			return
		}
		defer utils.MustClose(conn, d.Logger)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		changes, unwatch := s.Watch()
		defer unwatch()

		go readStream(ctx, cancel, conn, s, d, pongWait)

		if err := writeView(conn, s, d.Now()); err != nil {
			return
		}

		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-changes:
				if err := writeView(conn, s, d.Now()); err != nil {
					d.Logger.Debug("stream write failed", logger.Error(err))
					return
				}
			case <-ticker.C:
				deadline := time.Now().Add(streamWriteWait)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			case <-s.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(streamWriteWait))
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

func writeView(conn *websocket.Conn, s *session.Session, now time.Time) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(streamFrame{Type: "view", View: s.View(now)})
}

// readStream consumes client frames until the connection fails.
func readStream(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, s *session.Session, d deps.Deps, pongWait time.Duration) {
	defer cancel()

	conn.SetReadLimit(streamReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		d.Sessions.Touch(s.ID)
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		if mt != websocket.TextMessage {
			continue
		}

		var m streamMsg
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(m.Type), "ping") {
			d.Sessions.Touch(s.ID)
			s.Ping()
		}
	}
}
