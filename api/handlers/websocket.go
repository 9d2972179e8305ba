package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hyunwoooim-star/ai-market-sub000/messaging"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// HandleWebSocket upgrades the connection and streams epoch and anchor
// events to the client.
func HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	wsManager := messaging.GetWSManager()
	wsManager.Register() <- conn
	log.Printf("WebSocket client connected, %d watching", wsManager.ClientCount())

	// The feed is one-way; reads only serve to notice the client leaving.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wsManager.Unregister() <- conn
				return
			}
		}
	}()
}
