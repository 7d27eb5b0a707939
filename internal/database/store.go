package database

import (
	"context"

	"whispr/internal/models"

	"github.com/google/uuid"
)

// FeedQuery describes a page of the comment feed. A nil AuthorIn means no
// author restriction; an empty non-nil AuthorIn matches nothing.
type FeedQuery struct {
	AuthorIn []uuid.UUID
	Trending bool
	Skip     int
	Limit    int
}

// Store defines the persistence operations the rest of the application
// depends on. MongoDB is the production implementation; MemoryStore backs
// the tests.
type Store interface {
	// User methods
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	PublicIDExists(ctx context.Context, publicID string) (bool, error)
	GetUserSummaries(ctx context.Context, ids []uuid.UUID) ([]models.UserSummary, error)
	GetAllUserSummaries(ctx context.Context) ([]models.UserSummary, error)
	SampleUsers(ctx context.Context, exclude []uuid.UUID, size int) ([]models.UserSummary, error)
	SearchUsersByPrefix(ctx context.Context, prefix string, limit int) ([]models.UserSummary, error)
	IncrementTotalComments(ctx context.Context, id uuid.UUID, delta int) error
	CountUsers(ctx context.Context) (int64, error)

	// Comment methods
	SaveComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListComments(ctx context.Context, q FeedQuery) ([]*models.Comment, error)
	CountComments(ctx context.Context) (int64, error)
}
