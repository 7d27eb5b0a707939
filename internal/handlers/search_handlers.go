package handlers

import (
	"net/http"
)

// HandleSearchBar answers search-bar queries with prefix matches and fuzzy
// suggestions. No auth: the search bar works on the landing page too.
func (s *Server) HandleSearchBar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")

		result, err := s.Search.SearchBar(r.Context(), query)
		if err != nil {
			s.respondWithError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, result)
	}
}
