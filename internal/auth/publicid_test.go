package auth

import (
	"context"
	"regexp"
	"testing"

	"whispr/internal/database"
	"whispr/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var publicIDPattern = regexp.MustCompile(`^@[a-z0-9_]+_\d{2}$`)

func TestGeneratePublicIDFormat(t *testing.T) {
	store := database.NewMemoryStore()

	cases := map[string]string{
		"Ada":           "ada",
		"Grace Hopper":  "grace_hopper",
		"  JOAN clarke": "joan_clarke",
	}

	for input, base := range cases {
		publicID, err := GeneratePublicID(context.Background(), store, input)
		require.NoError(t, err)
		assert.Regexp(t, publicIDPattern, publicID)
		assert.Contains(t, publicID, "@"+base+"_")
	}
}

func TestGeneratePublicIDRetriesOnCollision(t *testing.T) {
	store := database.NewMemoryStore()
	ctx := context.Background()

	// Occupy 89 of the 90 possible suffixes for "ada" so generation has to
	// retry until it finds the single free handle.
	for suffix := 10; suffix < 99; suffix++ {
		user := &models.User{
			ID:       uuid.New(),
			Username: "ada",
			Email:    uuid.NewString() + "@example.com",
			PublicID: "@ada_" + itoa(suffix),
		}
		require.NoError(t, store.SaveUser(ctx, user))
	}

	publicID, err := GeneratePublicID(ctx, store, "Ada")
	require.NoError(t, err)
	assert.Equal(t, "@ada_99", publicID)
}

func itoa(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
