package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Events a client may send.
const (
	EventFollow   = "follow"
	EventUnfollow = "unfollow"
)

// Events broadcast to clients after a relationship change persists.
const (
	EventUpdateFollow   = "update-follow"
	EventUpdateUnfollow = "update-unfollow"
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The user ID this client represents.
	UserID uuid.UUID

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte
}

// ReadPump pumps messages from the websocket connection to the hub.
// Exported method.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
		log.Printf("WebSocket Client ReadPump stopped for User %s", c.UserID)
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for User %s: %v", c.UserID, err)
			}
			break
		}
		c.handleFrame(message)
	}
}

// handleFrame decodes an inbound frame and forwards follow/unfollow events
// to the hub's handler. Malformed or unknown frames are logged and dropped.
func (c *Client) handleFrame(message []byte) {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("Malformed frame from User %s: %v", c.UserID, err)
		return
	}

	switch event.Event {
	case EventFollow, EventUnfollow:
		var payload FollowPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			log.Printf("Malformed %s payload from User %s: %v", event.Event, c.UserID, err)
			return
		}
		if payload.FollowerID == uuid.Nil || payload.TargetID == uuid.Nil {
			log.Printf("Incomplete %s payload from User %s", event.Event, c.UserID)
			return
		}
		if c.Hub.Handler == nil {
			log.Printf("No event handler wired, dropping %s from User %s", event.Event, c.UserID)
			return
		}
		c.Hub.Handler.HandleFollowEvent(event.Event, payload.FollowerID, payload.TargetID)
	default:
		log.Printf("Unknown event %q from User %s", event.Event, c.UserID)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// Exported method.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		log.Printf("WebSocket Client WritePump stopped for User %s", c.UserID)
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				log.Printf("WebSocket write error (NextWriter) for User %s: %v", c.UserID, err)
				return
			}
			w.Write(message)

			// Add queued frames to the current websocket message.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'}) // Add newline between messages
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				log.Printf("WebSocket write error (Close) for User %s: %v", c.UserID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("WebSocket write error (Ping) for User %s: %v", c.UserID, err)
				return
			}
		}
	}
}
