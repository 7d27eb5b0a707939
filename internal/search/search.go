package search

import (
	"context"
	"sort"
	"strings"

	"whispr/internal/database"
	"whispr/internal/models"
	"whispr/internal/utils"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	// MaxExactMatches caps the prefix-matched results.
	MaxExactMatches = 10

	// MaxSuggestions caps the fuzzy-ranked results.
	MaxSuggestions = 5
)

// Result is the search-bar response: exact prefix matches first, then fuzzy
// suggestions that did not already appear as an exact match.
type Result struct {
	ExactMatches []models.UserSummary `json:"exactMatches"`
	Suggestions  []models.UserSummary `json:"suggestions"`
}

// Service answers search-bar queries over the user collection.
type Service struct {
	store database.Store
}

func NewService(store database.Store) *Service {
	return &Service{store: store}
}

// SearchBar runs the two-stage lookup: a case-insensitive prefix match on
// username and publicId, then a fuzzy ranking over all users for near-miss
// suggestions. A user never appears in both lists.
func (s *Service) SearchBar(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "Search query is required", nil)
	}

	exact, err := s.store.SearchUsersByPrefix(ctx, query, MaxExactMatches)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Prefix search failed", err)
	}

	exactIDs := make(map[uuid.UUID]bool, len(exact))
	for _, u := range exact {
		exactIDs[u.ID] = true
	}

	suggestions, err := s.fuzzySuggestions(ctx, query, exactIDs)
	if err != nil {
		return nil, err
	}

	return &Result{
		ExactMatches: exact,
		Suggestions:  suggestions,
	}, nil
}

// fuzzySuggestions ranks every user by the better of their username and
// publicId distances to the query, skipping users already matched exactly.
func (s *Service) fuzzySuggestions(ctx context.Context, query string, exclude map[uuid.UUID]bool) ([]models.UserSummary, error) {
	all, err := s.store.GetAllUserSummaries(ctx)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Fuzzy search failed", err)
	}

	type scored struct {
		summary  models.UserSummary
		distance int
	}

	candidates := make([]scored, 0)
	for _, u := range all {
		if exclude[u.ID] {
			continue
		}
		distance := bestDistance(query, u.Username, u.PublicID)
		if distance < 0 {
			continue
		}
		candidates = append(candidates, scored{summary: u, distance: distance})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if len(candidates) > MaxSuggestions {
		candidates = candidates[:MaxSuggestions]
	}

	suggestions := make([]models.UserSummary, 0, len(candidates))
	for _, c := range candidates {
		suggestions = append(suggestions, c.summary)
	}
	return suggestions, nil
}

// bestDistance returns the smallest fuzzy distance of query against the
// given fields, or -1 when no field matches at all.
func bestDistance(query string, fields ...string) int {
	best := -1
	for _, field := range fields {
		rank := fuzzy.RankMatchNormalizedFold(query, field)
		if rank < 0 {
			continue
		}
		if best < 0 || rank < best {
			best = rank
		}
	}
	return best
}
