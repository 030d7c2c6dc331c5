package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection with the hub and blocks until the peer
// goes away.
func ServeWs(hub *Hub, c *websocket.Conn, sessionId string) {
	client := &Client{Hub: hub, Conn: c, SessionId: sessionId, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
