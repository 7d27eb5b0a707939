package handlers

import (
	"net/http"

	"whispr/internal/middleware"
	"whispr/internal/utils"

	"github.com/google/uuid"
)

// DiscoverSampleSize is how many random profiles the people sampler returns.
const DiscoverSampleSize = 5

// HandleDiscoverPeople serves a random sample of users the caller does not
// already follow.
func (s *Server) HandleDiscoverPeople() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondWithError(w, utils.NewUnauthorizedError("no user in context"))
			return
		}

		caller, err := s.Store.GetUser(r.Context(), userID)
		if err != nil {
			s.respondWithError(w, err)
			return
		}

		exclude := make([]uuid.UUID, 0, len(caller.Followed)+1)
		exclude = append(exclude, caller.ID)
		exclude = append(exclude, caller.Followed...)

		people, err := s.Store.SampleUsers(r.Context(), exclude, DiscoverSampleSize)
		if err != nil {
			s.respondWithError(w, utils.NewAppError(utils.ErrDatabase, "Failed to sample users", err))
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"people": people,
		})
	}
}
