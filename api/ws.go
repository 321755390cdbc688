package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hoshinonyaruko/snaky/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientMessage is a frame sent by the browser: a direction, a key name or
// "restart".
type ClientMessage struct {
	Action string `json:"action"`
}

// WebSocketHandler streams snapshots of one session and accepts input on
// the same connection.
func WebSocketHandler(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, mgr)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("Upgrade error:", err)
			return
		}
		defer conn.Close()

		snaps, cancel := s.Subscribe()
		defer cancel()

		ctx := c.Request.Context()
		readErr := make(chan error, 1)
		// 输入处理，快照只由下面的循环写出
		go func() {
			for {
				var msg ClientMessage
				if err := conn.ReadJSON(&msg); err != nil {
					readErr <- err
					return
				}
				if _, err := applyKey(ctx, s, msg.Action); err != nil {
					readErr <- err
					return
				}
			}
		}()

		if err := conn.WriteJSON(s.Snapshot()); err != nil {
			return
		}
		for {
			select {
			case snap, ok := <-snaps:
				if !ok {
					conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
					return
				}
				s.Touch()
				if err := conn.WriteJSON(snap); err != nil {
					log.Println("Write error:", err)
					return
				}
			case err := <-readErr:
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Println("Read error:", err)
				}
				return
			}
		}
	}
}
