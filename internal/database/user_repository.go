// internal/database/user_repository.go
package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"whispr/internal/models"
	"whispr/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID            string    `bson:"_id"`           // MongoDB primary key
	Email         string    `bson:"email"`         // Email address
	Username      string    `bson:"username"`      // Display name
	PublicID      string    `bson:"publicId"`      // Shareable handle
	Gender        string    `bson:"gender"`        // male/female/other
	Age           int       `bson:"age"`           // Age in years
	ProfilePic    string    `bson:"profilePic"`    // Avatar URL
	Likes         int       `bson:"likes"`         // Aggregate like counter
	Followers     []string  `bson:"followers"`     // IDs of users following this one
	Followed      []string  `bson:"followed"`      // IDs this user follows
	TotalComments int       `bson:"totalComments"` // Comments authored
	Bookmarked    []string  `bson:"bookmarked"`    // Bookmarked comment IDs
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// userSummaryDocument is the projected form used by discovery and search.
type userSummaryDocument struct {
	ID         string `bson:"_id"`
	Username   string `bson:"username"`
	PublicID   string `bson:"publicId"`
	ProfilePic string `bson:"profilePic"`
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	doc := UserDocument{
		ID:            user.ID.String(),
		Email:         user.Email,
		Username:      user.Username,
		PublicID:      user.PublicID,
		Gender:        user.Gender,
		Age:           user.Age,
		ProfilePic:    user.ProfilePic,
		Likes:         user.Likes,
		Followers:     uuidsToStrings(user.Followers),
		Followed:      uuidsToStrings(user.Followed),
		TotalComments: user.TotalComments,
		Bookmarked:    uuidsToStrings(user.Bookmarked),
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": user.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Users.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id.String()})
}

// GetUserByEmail retrieves a user from MongoDB by their email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"email": email})
}

// GetUserByUsername retrieves a user from MongoDB by their username
func (m *MongoDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"username": username})
}

func (m *MongoDB) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return convertUserDocumentToModel(&doc)
}

// UsernameExists reports whether a user with the given username exists.
func (m *MongoDB) UsernameExists(ctx context.Context, username string) (bool, error) {
	count, err := m.Users.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PublicIDExists reports whether a user with the given publicId exists.
func (m *MongoDB) PublicIDExists(ctx context.Context, publicID string) (bool, error) {
	count, err := m.Users.CountDocuments(ctx, bson.M{"publicId": publicID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserSummaries retrieves the trimmed projections for the given user IDs,
// used to populate the following-profiles listing.
func (m *MongoDB) GetUserSummaries(ctx context.Context, ids []uuid.UUID) ([]models.UserSummary, error) {
	if len(ids) == 0 {
		return []models.UserSummary{}, nil
	}

	cursor, err := m.Users.Find(ctx,
		bson.M{"_id": bson.M{"$in": uuidsToStrings(ids)}},
		options.Find().SetProjection(summaryProjection()),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeSummaries(ctx, cursor)
}

// GetAllUserSummaries retrieves the trimmed projection of every user. The
// fuzzy search ranks over this full scan per request.
func (m *MongoDB) GetAllUserSummaries(ctx context.Context) ([]models.UserSummary, error) {
	cursor, err := m.Users.Find(ctx, bson.M{}, options.Find().SetProjection(summaryProjection()))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeSummaries(ctx, cursor)
}

// SampleUsers returns up to size random users whose IDs are not in exclude.
func (m *MongoDB) SampleUsers(ctx context.Context, exclude []uuid.UUID, size int) ([]models.UserSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$nin": uuidsToStrings(exclude)}}}},
		{{Key: "$sample", Value: bson.M{"size": size}}},
		{{Key: "$project", Value: summaryProjection()}},
	}

	cursor, err := m.Users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeSummaries(ctx, cursor)
}

// SearchUsersByPrefix returns users whose username or publicId starts with
// the given prefix, case-insensitively.
func (m *MongoDB) SearchUsersByPrefix(ctx context.Context, prefix string, limit int) ([]models.UserSummary, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"username": pattern},
		bson.M{"publicId": pattern},
	}}

	cursor, err := m.Users.Find(ctx, filter,
		options.Find().SetProjection(summaryProjection()).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeSummaries(ctx, cursor)
}

// IncrementTotalComments adjusts a user's comment counter.
func (m *MongoDB) IncrementTotalComments(ctx context.Context, id uuid.UUID, delta int) error {
	filter := bson.M{"_id": id.String()}
	update := bson.M{"$inc": bson.M{"totalComments": delta}}

	result, err := m.Users.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	return nil
}

// CountUsers returns the total number of user documents.
func (m *MongoDB) CountUsers(ctx context.Context) (int64, error) {
	return m.Users.CountDocuments(ctx, bson.M{})
}

func summaryProjection() bson.M {
	return bson.M{"_id": 1, "username": 1, "publicId": 1, "profilePic": 1}
}

func decodeSummaries(ctx context.Context, cursor *mongo.Cursor) ([]models.UserSummary, error) {
	summaries := []models.UserSummary{}
	for cursor.Next(ctx) {
		var doc userSummaryDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user summary: %v", err)
		}

		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID in database: %v", err)
		}

		summaries = append(summaries, models.UserSummary{
			ID:         id,
			Username:   doc.Username,
			PublicID:   doc.PublicID,
			ProfilePic: doc.ProfilePic,
		})
	}
	return summaries, cursor.Err()
}

func convertUserDocumentToModel(doc *UserDocument) (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}

	followers, err := stringsToUUIDs(doc.Followers)
	if err != nil {
		return nil, fmt.Errorf("invalid follower ID in database: %v", err)
	}

	followed, err := stringsToUUIDs(doc.Followed)
	if err != nil {
		return nil, fmt.Errorf("invalid followed ID in database: %v", err)
	}

	bookmarked, err := stringsToUUIDs(doc.Bookmarked)
	if err != nil {
		return nil, fmt.Errorf("invalid bookmarked ID in database: %v", err)
	}

	return &models.User{
		ID:            id,
		Email:         doc.Email,
		Username:      doc.Username,
		PublicID:      doc.PublicID,
		Gender:        doc.Gender,
		Age:           doc.Age,
		ProfilePic:    doc.ProfilePic,
		Likes:         doc.Likes,
		Followers:     followers,
		Followed:      followed,
		TotalComments: doc.TotalComments,
		Bookmarked:    bookmarked,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

func uuidsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func stringsToUUIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(ids))
	for i, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}
