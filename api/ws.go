package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tradersecho/tradersecho/logger"
)

const (
	wsCloseUnauthorized = 4401
	wsCloseForbidden    = 4403
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set Authorization on websocket requests, so the
	// token travels as a query param and origin checks stay permissive.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Realtime pushes the live snapshot to pro users on a fixed interval.
// Only the latest snapshot matters: missed ticks are not queued, and the
// loop terminates as soon as the connection goes away.
func (s *Server) Realtime(c *gin.Context) {
	token := c.Query("token")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	user, err := s.userFromToken(token)
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(wsCloseUnauthorized, "invalid token"), time.Now().Add(time.Second))
		return
	}
	if !user.Pro {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(wsCloseForbidden, "pro required"), time.Now().Add(time.Second))
		return
	}

	// Drain reads so peer close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	interval := time.Duration(s.cfg.Collector.SnapshotSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Infof("ws: %s connected to realtime push", user.Username)
	for {
		items, err := s.queries.LiveSnapshot(50)
		if err != nil {
			logger.Errorf("ws: snapshot query failed: %v", err)
			return
		}
		if err := conn.WriteJSON(items); err != nil {
			return
		}

		select {
		case <-ticker.C:
		case <-done:
			logger.Infof("ws: %s disconnected", user.Username)
			return
		}
	}
}
