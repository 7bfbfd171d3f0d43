package controller

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"writedesk/notify"
	"writedesk/utils"
)

// wsAuthMessage is the first frame a client must send after the upgrade.
// It carries the caller's JWT rather than a bare user id, so the relay
// trusts the same credential the HTTP session does.
type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// HandleNotificationWS runs one relay channel: authenticate, register with
// the hub, then block until the peer goes away. Closing the connection is
// the only cancellation; the hub entry is removed on the way out.
func HandleNotificationWS(hub *notify.Hub, logger *log.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		var auth wsAuthMessage
		if err := c.ReadJSON(&auth); err != nil {
			logger.Printf("Error reading auth message: %v", err)
			return
		}

		if auth.Type != "auth" || auth.Token == "" {
			c.WriteJSON(map[string]string{"type": "error", "error": "auth message required"})
			return
		}

		claims, err := utils.ParseJWTToken(auth.Token)
		if err != nil {
			c.WriteJSON(map[string]string{"type": "error", "error": "invalid token"})
			return
		}

		// All writes after registration go through the serialized wrapper:
		// the hub pushes from request goroutines, and the websocket allows
		// only one writer at a time.
		conn := notify.NewSyncConn(c)
		hub.Register(claims.UserID, conn)
		defer hub.Unregister(claims.UserID, conn)

		if err := conn.WriteJSON(map[string]string{"type": "auth_ok"}); err != nil {
			return
		}

		// Drain the connection until the client disconnects. Pushes happen
		// from the dispatcher through the hub, not from this goroutine.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}
}
