package handlers

import (
	"log"
	"net/http"

	"whispr/internal/engine/actors"
	"whispr/internal/middleware"
	"whispr/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: check against config.AllowedOrigins once the frontend
		// origins are stable
		return true
	},
}

// HandleWebSocket upgrades an authenticated connection and registers it with
// the hub. The JWT travels in the token query parameter because browsers
// cannot set headers on a websocket handshake.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			log.Println("WebSocket connection failed: Missing token")
			http.Error(w, "Missing authentication token", http.StatusUnauthorized)
			return
		}

		claims, err := middleware.ValidateToken(tokenString)
		if err != nil {
			log.Printf("WebSocket connection failed: Invalid token: %v", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		userID := claims.UserID
		if userID == uuid.Nil {
			log.Println("WebSocket connection failed: Nil userID in token claims")
			http.Error(w, "Invalid user ID in token", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for User %s: %v", userID, err)
			// Note: Cannot write HTTP error after successful upgrade attempt
			return
		}
		log.Printf("WebSocket connection upgraded for User %s", userID)

		client := &websocket.Client{
			Hub:    s.Hub,
			UserID: userID,
			Conn:   conn,
			Send:   make(chan []byte, 256),
		}
		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

// HandleFollowEvent receives follow/unfollow frames from socket clients and
// drives the relationship actor. Failures are logged and dropped; the
// initiating socket gets no error frame, only the broadcast on success.
func (s *Server) HandleFollowEvent(event string, followerID, targetID uuid.UUID) {
	var msg interface{}
	switch event {
	case websocket.EventFollow:
		msg = &actors.FollowUserMsg{FollowerID: followerID, TargetID: targetID}
	case websocket.EventUnfollow:
		msg = &actors.UnfollowUserMsg{FollowerID: followerID, TargetID: targetID}
	default:
		return
	}

	if _, err := s.request(s.Engine.GetRelationshipActor(), msg); err != nil {
		log.Printf("Socket %s event (%s -> %s) failed: %v", event, followerID, targetID, err)
	}
}
