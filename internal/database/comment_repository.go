// internal/database/comment_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"whispr/internal/models"
	"whispr/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentDocument represents comment data in MongoDB. The likeCount,
// replyCount and viewCount fields are always recomputed from their arrays on
// save so the feed can sort on them without aggregation.
type CommentDocument struct {
	ID         string    `bson:"_id"`
	Text       string    `bson:"text"`
	Topics     []string  `bson:"topics"`
	UserID     string    `bson:"user"`
	Likes      []string  `bson:"likes"`
	LikeCount  int       `bson:"likeCount"`
	Replies    []string  `bson:"replies"`
	ReplyCount int       `bson:"replyCount"`
	ViewedBy   []string  `bson:"viewedBy"`
	ViewCount  int       `bson:"viewCount"`
	Public     bool      `bson:"public"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

// SaveComment creates or updates a comment in MongoDB. Counters are
// recomputed from the arrays before the write.
func (m *MongoDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	comment.RecomputeCounts()
	comment.UpdatedAt = time.Now()

	doc := CommentDocument{
		ID:         comment.ID.String(),
		Text:       comment.Text,
		Topics:     comment.Topics,
		UserID:     comment.UserID.String(),
		Likes:      uuidsToStrings(comment.Likes),
		LikeCount:  comment.LikeCount,
		Replies:    uuidsToStrings(comment.Replies),
		ReplyCount: comment.ReplyCount,
		ViewedBy:   uuidsToStrings(comment.ViewedBy),
		ViewCount:  comment.ViewCount,
		Public:     comment.Public,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}
	if doc.Topics == nil {
		doc.Topics = []string{}
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.Comments.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save comment: %v", err)
	}
	return nil
}

// GetComment retrieves a comment by ID
func (m *MongoDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var doc CommentDocument

	err := m.Comments.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %v", err)
	}

	return convertCommentDocumentToModel(&doc)
}

// ListComments returns one feed page. ALL and FOLLOWING pages sort newest
// first; trending pages sort by likeCount then replyCount, both descending.
func (m *MongoDB) ListComments(ctx context.Context, q FeedQuery) ([]*models.Comment, error) {
	filter := bson.M{}
	if q.AuthorIn != nil {
		filter["user"] = bson.M{"$in": uuidsToStrings(q.AuthorIn)}
	}

	var sort bson.D
	if q.Trending {
		sort = bson.D{{Key: "likeCount", Value: -1}, {Key: "replyCount", Value: -1}}
	} else {
		sort = bson.D{{Key: "createdAt", Value: -1}}
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit))

	cursor, err := m.Comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %v", err)
	}
	defer cursor.Close(ctx)

	comments := []*models.Comment{}
	for cursor.Next(ctx) {
		var doc CommentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode comment: %v", err)
		}

		comment, err := convertCommentDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	return comments, cursor.Err()
}

// CountComments returns the total number of comment documents.
func (m *MongoDB) CountComments(ctx context.Context) (int64, error) {
	return m.Comments.CountDocuments(ctx, bson.M{})
}

// Helper function to convert CommentDocument to models.Comment
func convertCommentDocumentToModel(doc *CommentDocument) (*models.Comment, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID: %v", err)
	}

	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment author ID: %v", err)
	}

	likes, err := stringsToUUIDs(doc.Likes)
	if err != nil {
		return nil, fmt.Errorf("invalid like ID: %v", err)
	}

	replies, err := stringsToUUIDs(doc.Replies)
	if err != nil {
		return nil, fmt.Errorf("invalid reply ID: %v", err)
	}

	viewedBy, err := stringsToUUIDs(doc.ViewedBy)
	if err != nil {
		return nil, fmt.Errorf("invalid viewer ID: %v", err)
	}

	topics := doc.Topics
	if topics == nil {
		topics = []string{}
	}

	return &models.Comment{
		ID:         id,
		Text:       doc.Text,
		Topics:     topics,
		UserID:     userID,
		Likes:      likes,
		LikeCount:  doc.LikeCount,
		Replies:    replies,
		ReplyCount: doc.ReplyCount,
		ViewedBy:   viewedBy,
		ViewCount:  doc.ViewCount,
		Public:     doc.Public,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}
