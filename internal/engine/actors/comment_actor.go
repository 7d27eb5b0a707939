package actors

import (
	stdctx "context"
	"log"
	"strings"
	"time"

	"whispr/internal/auth"
	"whispr/internal/database"
	"whispr/internal/models"
	"whispr/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for CommentActor
type (
	CreateCommentMsg struct {
		Text   string    `json:"text"`
		Topics []string  `json:"topics"`
		UserID uuid.UUID `json:"userId"`
		Public bool      `json:"public"`
	}

	GetCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
	}

	GetFeedMsg struct {
		UserID uuid.UUID `json:"userId"`
		Filter string    `json:"filter"`
		Page   int       `json:"page"`
	}

	LikeCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		UserID    uuid.UUID `json:"userId"`
	}

	ViewCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		UserID    uuid.UUID `json:"userId"`
	}

	BookmarkCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		UserID    uuid.UUID `json:"userId"`
	}
)

// BookmarkResult reports the bookmark state after a toggle.
type BookmarkResult struct {
	Bookmarked bool `json:"bookmarked"`
}

// CommentActor manages comment writes and the paged feed. Like and view
// mutations go through the arrays and a full save so the derived counters
// can never drift.
type CommentActor struct {
	store   database.Store
	cache   *auth.ProfileCache
	metrics *utils.MetricsCollector
}

func NewCommentActor(store database.Store, cache *auth.ProfileCache, metrics *utils.MetricsCollector) actor.Actor {
	return &CommentActor{
		store:   store,
		cache:   cache,
		metrics: metrics,
	}
}

func (a *CommentActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("CommentActor started with PID: %v", context.Self())

	case *CreateCommentMsg:
		a.handleCreateComment(context, msg)

	case *GetCommentMsg:
		a.handleGetComment(context, msg)

	case *GetFeedMsg:
		a.handleGetFeed(context, msg)

	case *LikeCommentMsg:
		a.handleLikeComment(context, msg)

	case *ViewCommentMsg:
		a.handleViewComment(context, msg)

	case *BookmarkCommentMsg:
		a.handleBookmarkComment(context, msg)
	}
}

func (a *CommentActor) handleCreateComment(context actor.Context, msg *CreateCommentMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Comment text is required", nil))
		return
	}

	owner, err := a.store.GetUser(ctx, msg.UserID)
	if err != nil {
		log.Printf("CommentActor: create by unknown user %s: %v", msg.UserID, err)
		context.Respond(a.commentError(err, "Failed to fetch comment owner"))
		return
	}

	topics := msg.Topics
	if topics == nil {
		topics = []string{}
	}

	now := time.Now()
	newComment := &models.Comment{
		ID:        uuid.New(),
		Text:      text,
		Topics:    topics,
		UserID:    owner.ID,
		Likes:     make([]uuid.UUID, 0),
		Replies:   make([]uuid.UUID, 0),
		ViewedBy:  make([]uuid.UUID, 0),
		Public:    msg.Public,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := a.store.SaveComment(ctx, newComment); err != nil {
		log.Printf("CommentActor: failed to save comment: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save comment", err))
		return
	}

	if err := a.store.IncrementTotalComments(ctx, owner.ID, 1); err != nil {
		// The comment is already persisted; the counter catches up on the
		// next increment. Log and keep going.
		log.Printf("CommentActor: failed to bump totalComments for %s: %v", owner.ID, err)
	}
	a.cache.Invalidate(ctx, owner.ID)

	a.metrics.AddOperationLatency("create_comment", time.Since(startTime))
	log.Printf("CommentActor: created comment %s for user %s", newComment.ID, owner.ID)
	context.Respond(newComment)
}

func (a *CommentActor) handleGetComment(context actor.Context, msg *GetCommentMsg) {
	ctx := stdctx.Background()

	comment, err := a.store.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(a.commentError(err, "Failed to fetch comment"))
		return
	}
	context.Respond(comment)
}

func (a *CommentActor) handleGetFeed(context actor.Context, msg *GetFeedMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if !models.ValidFeedFilter(msg.Filter) {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Unknown feed filter: "+msg.Filter, nil))
		return
	}

	page := msg.Page
	if page < 1 {
		page = 1
	}

	query := database.FeedQuery{
		Skip:  (page - 1) * models.FeedPageSize,
		Limit: models.FeedPageSize,
	}

	switch msg.Filter {
	case models.FeedFilterFollowing:
		caller, err := a.store.GetUser(ctx, msg.UserID)
		if err != nil {
			context.Respond(a.commentError(err, "Failed to fetch caller"))
			return
		}
		// Non-nil even when empty: a user following nobody gets an
		// empty FOLLOWING feed, not everyone's comments.
		authors := caller.Followed
		if authors == nil {
			authors = []uuid.UUID{}
		}
		query.AuthorIn = authors
	case models.FeedFilterTrending:
		query.Trending = true
	}

	comments, err := a.store.ListComments(ctx, query)
	if err != nil {
		log.Printf("CommentActor: feed query failed (filter=%s page=%d): %v", msg.Filter, page, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to fetch feed", err))
		return
	}

	a.metrics.AddOperationLatency("get_feed", time.Since(startTime))
	context.Respond(comments)
}

// handleLikeComment toggles the caller in the comment's likes array.
func (a *CommentActor) handleLikeComment(context actor.Context, msg *LikeCommentMsg) {
	ctx := stdctx.Background()

	comment, err := a.store.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(a.commentError(err, "Failed to fetch comment"))
		return
	}

	if comment.LikedBy(msg.UserID) {
		comment.Likes, _ = removeID(comment.Likes, msg.UserID)
	} else {
		comment.Likes = append(comment.Likes, msg.UserID)
	}
	comment.UpdatedAt = time.Now()

	if err := a.store.SaveComment(ctx, comment); err != nil {
		log.Printf("CommentActor: failed to save like on %s: %v", msg.CommentID, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save like", err))
		return
	}
	context.Respond(comment)
}

// handleViewComment records the caller in viewedBy at most once. A repeat
// view is a no-op with no save.
func (a *CommentActor) handleViewComment(context actor.Context, msg *ViewCommentMsg) {
	ctx := stdctx.Background()

	comment, err := a.store.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(a.commentError(err, "Failed to fetch comment"))
		return
	}

	if comment.ViewedByUser(msg.UserID) {
		context.Respond(comment)
		return
	}

	comment.ViewedBy = append(comment.ViewedBy, msg.UserID)
	comment.UpdatedAt = time.Now()

	if err := a.store.SaveComment(ctx, comment); err != nil {
		log.Printf("CommentActor: failed to save view on %s: %v", msg.CommentID, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save view", err))
		return
	}
	context.Respond(comment)
}

// handleBookmarkComment toggles the comment in the caller's bookmarked array.
func (a *CommentActor) handleBookmarkComment(context actor.Context, msg *BookmarkCommentMsg) {
	ctx := stdctx.Background()

	if _, err := a.store.GetComment(ctx, msg.CommentID); err != nil {
		context.Respond(a.commentError(err, "Failed to fetch comment"))
		return
	}

	user, err := a.store.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(a.commentError(err, "Failed to fetch user"))
		return
	}

	var bookmarked bool
	if contains(user.Bookmarked, msg.CommentID) {
		user.Bookmarked, _ = removeID(user.Bookmarked, msg.CommentID)
		bookmarked = false
	} else {
		user.Bookmarked = append(user.Bookmarked, msg.CommentID)
		bookmarked = true
	}
	user.UpdatedAt = time.Now()

	if err := a.store.SaveUser(ctx, user); err != nil {
		log.Printf("CommentActor: failed to save bookmark for %s: %v", msg.UserID, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save bookmark", err))
		return
	}
	a.cache.Invalidate(ctx, user.ID)

	context.Respond(&BookmarkResult{Bookmarked: bookmarked})
}

// commentError passes not-found codes through unchanged and wraps anything
// else as a database error.
func (a *CommentActor) commentError(err error, message string) error {
	if utils.IsErrorCode(err, utils.ErrUserNotFound) || utils.IsErrorCode(err, utils.ErrCommentNotFound) {
		return err
	}
	return utils.NewAppError(utils.ErrDatabase, message, err)
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
