package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"homebase/internal/events"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSConnection streams bus events to one client
type WSConnection struct {
	conn *websocket.Conn
	send chan []byte
}

// handleWebSocket upgrades the request and subscribes the client to the bus
func (h *HouseholdAPI) handleWebSocket(c *gin.Context) {
	if h.Events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream disabled"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := &WSConnection{
		conn: conn,
		send: make(chan []byte, 256),
	}
	sub, cancel := h.Events.Subscribe()

	go wsConn.forward(sub)
	go wsConn.writePump()
	go wsConn.readPump(cancel)
}

// forward encodes bus events for the write pump. It owns c.send and closes
// it once the subscription ends.
func (c *WSConnection) forward(sub <-chan events.Event) {
	defer close(c.send)
	for ev := range sub {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Printf("Error marshaling event %s: %v", ev.Kind, err)
			continue
		}
		select {
		case c.send <- data:
		default:
			log.Println("WebSocket buffer full, dropping event")
		}
	}
}

// readPump discards client messages and ends the subscription when the
// client goes away
func (c *WSConnection) readPump(unsubscribe func()) {
	defer func() {
		unsubscribe()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// writePump pumps messages from the server to the WebSocket connection
func (c *WSConnection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The channel was closed
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
