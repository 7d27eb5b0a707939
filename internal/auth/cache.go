// internal/auth/cache.go
package auth

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"whispr/internal/models"

	"github.com/google/uuid"
)

// ProfileCacheTTL is how long a cached own-profile record stays fresh.
const ProfileCacheTTL = time.Hour

// ProfileCache keeps the caller's own profile in the KV store so the
// /call/myself endpoint does not hit Mongo on every page load. Writes that
// touch a user (relationship edits, comment counters) must invalidate.
type ProfileCache struct {
	kv KV
}

func NewProfileCache(kv KV) *ProfileCache {
	return &ProfileCache{kv: kv}
}

func userKey(id uuid.UUID) string { return "user:" + id.String() }

func (c *ProfileCache) Get(ctx context.Context, id uuid.UUID) (*models.User, bool) {
	raw, ok, err := c.kv.Get(ctx, userKey(id))
	if err != nil || !ok {
		return nil, false
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Printf("ProfileCache: dropping unreadable entry for %s: %v", id, err)
		_ = c.kv.Del(ctx, userKey(id))
		return nil, false
	}
	return &user, true
}

func (c *ProfileCache) Set(ctx context.Context, user *models.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := c.kv.SetEx(ctx, userKey(user.ID), string(raw), ProfileCacheTTL); err != nil {
		log.Printf("ProfileCache: failed to cache user %s: %v", user.ID, err)
	}
}

func (c *ProfileCache) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	for _, id := range ids {
		if err := c.kv.Del(ctx, userKey(id)); err != nil {
			log.Printf("ProfileCache: failed to invalidate user %s: %v", id, err)
		}
	}
}
