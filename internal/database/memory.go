// internal/database/memory.go
package database

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"whispr/internal/models"
	"whispr/internal/utils"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by the tests. It mirrors the
// observable semantics of the MongoDB implementation: prefix matching is
// case-insensitive, sampling excludes the given IDs, and feed pages sort the
// same way the Mongo queries do.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*models.User
	comments map[uuid.UUID]*models.Comment

	// SaveUserCalls counts writes so tests can assert a mutation was a no-op.
	SaveUserCalls int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]*models.User),
		comments: make(map[uuid.UUID]*models.Comment),
	}
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveUserCalls++
	user.UpdatedAt = time.Now()
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	clone := *user
	return &clone, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Email == email })
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Username == username })
}

func (s *MemoryStore) findUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
}

func (s *MemoryStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.GetUserByUsername(ctx, username)
	if utils.IsErrorCode(err, utils.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *MemoryStore) PublicIDExists(ctx context.Context, publicID string) (bool, error) {
	_, err := s.findUser(func(u *models.User) bool { return u.PublicID == publicID })
	if utils.IsErrorCode(err, utils.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *MemoryStore) GetUserSummaries(ctx context.Context, ids []uuid.UUID) ([]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := []models.UserSummary{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			summaries = append(summaries, summarize(u))
		}
	}
	return summaries, nil
}

func (s *MemoryStore) GetAllUserSummaries(ctx context.Context) ([]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := []models.UserSummary{}
	for _, u := range s.users {
		summaries = append(summaries, summarize(u))
	}
	return summaries, nil
}

func (s *MemoryStore) SampleUsers(ctx context.Context, exclude []uuid.UUID, size int) ([]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[uuid.UUID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	candidates := []models.UserSummary{}
	for _, u := range s.users {
		if !excluded[u.ID] {
			candidates = append(candidates, summarize(u))
		}
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if len(candidates) > size {
		candidates = candidates[:size]
	}
	return candidates, nil
}

func (s *MemoryStore) SearchUsersByPrefix(ctx context.Context, prefix string, limit int) ([]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(prefix)
	matches := []models.UserSummary{}
	for _, u := range s.users {
		if strings.HasPrefix(strings.ToLower(u.Username), lower) ||
			strings.HasPrefix(strings.ToLower(u.PublicID), lower) {
			matches = append(matches, summarize(u))
			if len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

func (s *MemoryStore) IncrementTotalComments(ctx context.Context, id uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	user.TotalComments += delta
	return nil
}

func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *MemoryStore) SaveComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.RecomputeCounts()
	comment.UpdatedAt = time.Now()
	clone := *comment
	s.comments[comment.ID] = &clone
	return nil
}

func (s *MemoryStore) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.comments[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", nil)
	}
	clone := *comment
	return &clone, nil
}

func (s *MemoryStore) ListComments(ctx context.Context, q FeedQuery) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var authorSet map[uuid.UUID]bool
	if q.AuthorIn != nil {
		authorSet = make(map[uuid.UUID]bool, len(q.AuthorIn))
		for _, id := range q.AuthorIn {
			authorSet[id] = true
		}
	}

	matched := []*models.Comment{}
	for _, c := range s.comments {
		if authorSet != nil && !authorSet[c.UserID] {
			continue
		}
		clone := *c
		matched = append(matched, &clone)
	}

	if q.Trending {
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].LikeCount != matched[j].LikeCount {
				return matched[i].LikeCount > matched[j].LikeCount
			}
			return matched[i].ReplyCount > matched[j].ReplyCount
		})
	} else {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	if q.Skip >= len(matched) {
		return []*models.Comment{}, nil
	}
	matched = matched[q.Skip:]
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (s *MemoryStore) CountComments(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.comments)), nil
}

func summarize(u *models.User) models.UserSummary {
	return models.UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		PublicID:   u.PublicID,
		ProfilePic: u.ProfilePic,
	}
}
