package handlers

import (
	"log"
	"net/http"
	"time"
)

// HandleHealth reports liveness plus basic corpus counts.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userCount, err := s.Store.CountUsers(r.Context())
		if err != nil {
			log.Printf("Health check: failed to count users: %v", err)
			http.Error(w, "Failed to count users", http.StatusInternalServerError)
			return
		}

		commentCount, err := s.Store.CountComments(r.Context())
		if err != nil {
			log.Printf("Health check: failed to count comments: %v", err)
			http.Error(w, "Failed to count comments", http.StatusInternalServerError)
			return
		}

		requests, errors, uptime := s.Metrics.Snapshot()

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":         "healthy",
			"user_count":     userCount,
			"comment_count":  commentCount,
			"socket_clients": s.Hub.ConnectionCount(),
			"requests":       requests,
			"errors":         errors,
			"uptime_seconds": int(uptime.Seconds()),
			"server_time":    time.Now(),
		})
	}
}
