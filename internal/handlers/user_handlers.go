package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"whispr/internal/engine/actors"
	"whispr/internal/middleware"
	"whispr/internal/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// FollowRequest identifies the user to follow or unfollow. The follower is
// always the authenticated caller.
type FollowRequest struct {
	TargetID string `json:"targetId"`
}

// PublicProfile is the projection served for someone else's profile page.
type PublicProfile struct {
	ID            uuid.UUID   `json:"id"`
	Username      string      `json:"username"`
	PublicID      string      `json:"publicId"`
	ProfilePic    string      `json:"profilePic"`
	Followers     []uuid.UUID `json:"followers"`
	Followed      []uuid.UUID `json:"followed"`
	TotalComments int         `json:"totalComments"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// HandleUserProfile serves a public profile looked up by username.
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := mux.Vars(r)["username"]

		user, err := s.Store.GetUserByUsername(r.Context(), username)
		if err != nil {
			s.respondWithError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, PublicProfile{
			ID:            user.ID,
			Username:      user.Username,
			PublicID:      user.PublicID,
			ProfilePic:    user.ProfilePic,
			Followers:     user.Followers,
			Followed:      user.Followed,
			TotalComments: user.TotalComments,
			CreatedAt:     user.CreatedAt,
		})
	}
}

// HandleMyself serves the caller's own full record, cached in Redis for an
// hour and invalidated by any write that touches the user.
func (s *Server) HandleMyself() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondWithError(w, utils.NewUnauthorizedError("no user in context"))
			return
		}

		if cached, hit := s.Cache.Get(r.Context(), userID); hit {
			respondWithJSON(w, http.StatusOK, cached)
			return
		}

		user, err := s.Store.GetUser(r.Context(), userID)
		if err != nil {
			s.respondWithError(w, err)
			return
		}
		s.Cache.Set(r.Context(), user)

		respondWithJSON(w, http.StatusOK, user)
	}
}

// HandleFollowingProfiles serves the populated profiles of everyone the
// caller follows.
func (s *Server) HandleFollowingProfiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondWithError(w, utils.NewUnauthorizedError("no user in context"))
			return
		}

		result, err := s.request(s.Engine.GetRelationshipActor(), &actors.GetFollowingProfilesMsg{UserID: userID})
		if err != nil {
			s.respondWithError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, result)
	}
}

// HandleFollow is the HTTP fallback for clients without an open socket. It
// drives the same actor as the websocket follow event.
func (s *Server) HandleFollow() http.HandlerFunc {
	return s.handleRelationship(func(followerID, targetID uuid.UUID) interface{} {
		return &actors.FollowUserMsg{FollowerID: followerID, TargetID: targetID}
	})
}

// HandleUnfollow is the HTTP fallback for the websocket unfollow event.
func (s *Server) HandleUnfollow() http.HandlerFunc {
	return s.handleRelationship(func(followerID, targetID uuid.UUID) interface{} {
		return &actors.UnfollowUserMsg{FollowerID: followerID, TargetID: targetID}
	})
}

func (s *Server) handleRelationship(buildMsg func(followerID, targetID uuid.UUID) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondWithError(w, utils.NewUnauthorizedError("no user in context"))
			return
		}

		var req FollowRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		targetID, err := uuid.Parse(req.TargetID)
		if err != nil {
			s.respondWithError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid target id", err))
			return
		}

		result, err := s.request(s.Engine.GetRelationshipActor(), buildMsg(userID, targetID))
		if err != nil {
			s.respondWithError(w, err)
			return
		}

		log.Printf("Relationship update by %s on %s", userID, targetID)
		respondWithJSON(w, http.StatusOK, result)
	}
}
