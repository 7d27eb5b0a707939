package search

import (
	"context"
	"testing"

	"whispr/internal/database"
	"whispr/internal/models"
	"whispr/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSearchUsers(t *testing.T, store *database.MemoryStore, usernames ...string) map[string]uuid.UUID {
	t.Helper()
	ids := make(map[string]uuid.UUID, len(usernames))
	for _, username := range usernames {
		user := &models.User{
			ID:       uuid.New(),
			Username: username,
			Email:    username + "@example.com",
			PublicID: "@" + username + "_42",
		}
		require.NoError(t, store.SaveUser(context.Background(), user))
		ids[username] = user.ID
	}
	return ids
}

func TestSearchBarRejectsEmptyQuery(t *testing.T) {
	service := NewService(database.NewMemoryStore())

	for _, query := range []string{"", "   "} {
		_, err := service.SearchBar(context.Background(), query)
		require.Error(t, err)
		assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
	}
}

func TestSearchBarPrefixMatches(t *testing.T) {
	store := database.NewMemoryStore()
	ids := seedSearchUsers(t, store, "grace", "gracie", "ada")
	service := NewService(store)

	result, err := service.SearchBar(context.Background(), "gra")
	require.NoError(t, err)

	matched := make(map[uuid.UUID]bool)
	for _, u := range result.ExactMatches {
		matched[u.ID] = true
	}
	assert.True(t, matched[ids["grace"]])
	assert.True(t, matched[ids["gracie"]])
	assert.False(t, matched[ids["ada"]])
}

func TestSearchBarMatchesPublicID(t *testing.T) {
	store := database.NewMemoryStore()
	ids := seedSearchUsers(t, store, "grace")
	service := NewService(store)

	result, err := service.SearchBar(context.Background(), "@grace")
	require.NoError(t, err)
	require.Len(t, result.ExactMatches, 1)
	assert.Equal(t, ids["grace"], result.ExactMatches[0].ID)
}

func TestSearchBarSuggestionsExcludeExactMatches(t *testing.T) {
	store := database.NewMemoryStore()
	seedSearchUsers(t, store, "grace", "gracehopper", "tracey")
	service := NewService(store)

	result, err := service.SearchBar(context.Background(), "grace")
	require.NoError(t, err)

	exact := make(map[uuid.UUID]bool)
	for _, u := range result.ExactMatches {
		exact[u.ID] = true
	}
	for _, u := range result.Suggestions {
		assert.False(t, exact[u.ID], "user %s appears in both lists", u.Username)
	}
}

func TestSearchBarSuggestionCap(t *testing.T) {
	store := database.NewMemoryStore()
	names := []string{"marina", "martina", "marlena", "mariana", "marcela", "margate", "mardela"}
	seedSearchUsers(t, store, names...)
	service := NewService(store)

	// A query that prefix-matches nothing but fuzzy-matches everything.
	result, err := service.SearchBar(context.Background(), "mra")
	require.NoError(t, err)
	assert.Empty(t, result.ExactMatches)
	assert.LessOrEqual(t, len(result.Suggestions), MaxSuggestions)
}
