package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is the frame exchanged over the socket, both directions.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// FollowPayload is the data carried by follow, unfollow and the
// corresponding update-* frames.
type FollowPayload struct {
	FollowerID uuid.UUID `json:"followerId"`
	TargetID   uuid.UUID `json:"targetId"`
}

// EventHandler receives inbound follow/unfollow frames from connected clients.
type EventHandler interface {
	HandleFollowEvent(event string, followerID, targetID uuid.UUID)
}

// Hub maintains the set of active clients and broadcasts follow updates.
type Hub struct {
	// Registered clients. Maps user ID to a set of active client connections.
	Clients map[uuid.UUID]map[*Client]bool

	// Outbound frames fanned out to every connected client.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Handler for inbound follow/unfollow frames. Set once during wiring,
	// before the first client connects.
	Handler EventHandler

	// Mutex to protect concurrent access to the clients map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[uuid.UUID]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket Hub started.")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Clients[client.UserID]; !ok {
				h.Clients[client.UserID] = make(map[*Client]bool)
			}
			h.Clients[client.UserID][client] = true
			log.Printf("WebSocket Client registered for User %s. Total connections for user: %d", client.UserID, len(h.Clients[client.UserID]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.Clients[client.UserID]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					// Note: Closing client.Send channel is typically handled by the writePump upon error or hub closure.
					if len(userClients) == 0 {
						delete(h.Clients, client.UserID)
						log.Printf("WebSocket Client unregistered. User %s has no more connections.", client.UserID)
					} else {
						log.Printf("WebSocket Client unregistered for User %s. Remaining connections: %d", client.UserID, len(userClients))
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.RLock()
			for _, userClients := range h.Clients {
				for client := range userClients {
					select {
					case client.Send <- message:
					default:
						log.Printf("Broadcast send buffer full for client of User %s", client.UserID)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastEvent marshals an event frame and fans it out to every connected
// client. Followers learn about relationship changes this way regardless of
// which connection initiated them.
func (h *Hub) BroadcastEvent(event string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to marshal %s event payload: %v", event, err)
		return
	}
	frame, err := json.Marshal(Event{Event: event, Data: raw})
	if err != nil {
		log.Printf("Failed to marshal %s event frame: %v", event, err)
		return
	}
	select {
	case h.Broadcast <- frame:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing %s event in hub's Broadcast channel. Hub might be busy or blocked.", event)
	}
}

// ConnectionCount reports the number of active connections across all users.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, userClients := range h.Clients {
		total += len(userClients)
	}
	return total
}
