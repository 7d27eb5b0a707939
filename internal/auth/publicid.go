// internal/auth/publicid.go
package auth

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"whispr/internal/database"
)

// GeneratePublicID builds a shareable handle of the form "@<base>_<nn>"
// where base is the lowercased username with whitespace collapsed to
// underscores and nn is a random two-digit suffix. Suffixes are redrawn
// until the handle is unique.
func GeneratePublicID(ctx context.Context, store database.Store, username string) (string, error) {
	base := strings.ToLower(strings.TrimSpace(username))
	base = strings.Join(strings.Fields(base), "_")

	for {
		suffix := rand.Intn(90) + 10 // two digits, 10-99
		publicID := fmt.Sprintf("@%s_%d", base, suffix)

		exists, err := store.PublicIDExists(ctx, publicID)
		if err != nil {
			return "", err
		}
		if !exists {
			return publicID, nil
		}
	}
}
