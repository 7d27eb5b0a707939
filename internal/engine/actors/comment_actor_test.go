package actors

import (
	"context"
	"testing"
	"time"

	"whispr/internal/auth"
	"whispr/internal/database"
	"whispr/internal/models"
	"whispr/internal/utils"

	protoactor "github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commentFixture struct {
	system *protoactor.ActorSystem
	pid    *protoactor.PID
	store  *database.MemoryStore
	owner  *models.User
	reader *models.User
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()

	store := database.NewMemoryStore()
	cache := auth.NewProfileCache(auth.NewMemoryKV())
	metrics := utils.NewMetricsCollector()

	owner := &models.User{ID: uuid.New(), Username: "ada", Email: "ada@example.com"}
	reader := &models.User{ID: uuid.New(), Username: "grace", Email: "grace@example.com"}
	require.NoError(t, store.SaveUser(context.Background(), owner))
	require.NoError(t, store.SaveUser(context.Background(), reader))

	system := protoactor.NewActorSystem()
	props := protoactor.PropsFromProducer(func() protoactor.Actor {
		return NewCommentActor(store, cache, metrics)
	})
	pid := system.Root.Spawn(props)

	return &commentFixture{system: system, pid: pid, store: store, owner: owner, reader: reader}
}

func (f *commentFixture) request(t *testing.T, msg interface{}) interface{} {
	t.Helper()
	future := f.system.Root.RequestFuture(f.pid, msg, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	return result
}

func (f *commentFixture) createComment(t *testing.T, text string) *models.Comment {
	t.Helper()
	result := f.request(t, &CreateCommentMsg{Text: text, UserID: f.owner.ID, Public: true})
	comment, ok := result.(*models.Comment)
	require.True(t, ok, "unexpected response type %T", result)
	return comment
}

func TestCreateComment(t *testing.T) {
	f := newCommentFixture(t)

	comment := f.createComment(t, "  hello world  ")
	assert.Equal(t, "hello world", comment.Text)
	assert.Equal(t, f.owner.ID, comment.UserID)
	assert.NotNil(t, comment.Topics)
	assert.Zero(t, comment.LikeCount)
	assert.Zero(t, comment.ViewCount)

	owner, err := f.store.GetUser(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, owner.TotalComments)
}

func TestCreateCommentRejectsBlankText(t *testing.T) {
	f := newCommentFixture(t)

	result := f.request(t, &CreateCommentMsg{Text: "   ", UserID: f.owner.ID, Public: true})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected AppError, got %T", result)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestLikeToggleKeepsCountersInSync(t *testing.T) {
	f := newCommentFixture(t)
	comment := f.createComment(t, "like me")

	result := f.request(t, &LikeCommentMsg{CommentID: comment.ID, UserID: f.reader.ID})
	liked := result.(*models.Comment)
	assert.Equal(t, []uuid.UUID{f.reader.ID}, liked.Likes)
	assert.Equal(t, len(liked.Likes), liked.LikeCount)

	result = f.request(t, &LikeCommentMsg{CommentID: comment.ID, UserID: f.reader.ID})
	unliked := result.(*models.Comment)
	assert.Empty(t, unliked.Likes)
	assert.Equal(t, len(unliked.Likes), unliked.LikeCount)
}

func TestViewIsRecordedOnce(t *testing.T) {
	f := newCommentFixture(t)
	comment := f.createComment(t, "view me")

	f.request(t, &ViewCommentMsg{CommentID: comment.ID, UserID: f.reader.ID})
	result := f.request(t, &ViewCommentMsg{CommentID: comment.ID, UserID: f.reader.ID})

	viewed := result.(*models.Comment)
	assert.Equal(t, []uuid.UUID{f.reader.ID}, viewed.ViewedBy)
	assert.Equal(t, 1, viewed.ViewCount)
}

func TestBookmarkToggle(t *testing.T) {
	f := newCommentFixture(t)
	comment := f.createComment(t, "bookmark me")

	result := f.request(t, &BookmarkCommentMsg{CommentID: comment.ID, UserID: f.reader.ID})
	assert.True(t, result.(*BookmarkResult).Bookmarked)

	reader, err := f.store.GetUser(context.Background(), f.reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{comment.ID}, reader.Bookmarked)

	result = f.request(t, &BookmarkCommentMsg{CommentID: comment.ID, UserID: f.reader.ID})
	assert.False(t, result.(*BookmarkResult).Bookmarked)

	reader, err = f.store.GetUser(context.Background(), f.reader.ID)
	require.NoError(t, err)
	assert.Empty(t, reader.Bookmarked)
}

func TestFeedRejectsUnknownFilter(t *testing.T) {
	f := newCommentFixture(t)

	result := f.request(t, &GetFeedMsg{UserID: f.owner.ID, Filter: "WEIRD", Page: 1})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected AppError, got %T", result)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestFeedFollowingFilter(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	// Owner posts, reader posts; a third user follows only the owner.
	f.createComment(t, "from owner")
	f.request(t, &CreateCommentMsg{Text: "from reader", UserID: f.reader.ID, Public: true})

	caller := &models.User{
		ID:       uuid.New(),
		Username: "joan",
		Email:    "joan@example.com",
		Followed: []uuid.UUID{f.owner.ID},
	}
	require.NoError(t, f.store.SaveUser(ctx, caller))

	result := f.request(t, &GetFeedMsg{UserID: caller.ID, Filter: models.FeedFilterFollowing, Page: 1})
	comments, ok := result.([]*models.Comment)
	require.True(t, ok, "unexpected response type %T", result)
	require.Len(t, comments, 1)
	assert.Equal(t, f.owner.ID, comments[0].UserID)
}

func TestFeedFollowingNobodyIsEmpty(t *testing.T) {
	f := newCommentFixture(t)

	f.createComment(t, "from owner")

	result := f.request(t, &GetFeedMsg{UserID: f.reader.ID, Filter: models.FeedFilterFollowing, Page: 1})
	comments, ok := result.([]*models.Comment)
	require.True(t, ok)
	assert.Empty(t, comments)
}

func TestFeedTrendingOrder(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	likers := make([]uuid.UUID, 5)
	for i := range likers {
		likers[i] = uuid.New()
	}

	// Three comments with 1, 3 and 2 likes.
	likeCounts := []int{1, 3, 2}
	for _, n := range likeCounts {
		comment := f.createComment(t, "trending")
		comment.Likes = append(comment.Likes, likers[:n]...)
		require.NoError(t, f.store.SaveComment(ctx, comment))
	}

	result := f.request(t, &GetFeedMsg{UserID: f.owner.ID, Filter: models.FeedFilterTrending, Page: 1})
	comments, ok := result.([]*models.Comment)
	require.True(t, ok)
	require.Len(t, comments, 3)

	for i := 1; i < len(comments); i++ {
		assert.GreaterOrEqual(t, comments[i-1].LikeCount, comments[i].LikeCount)
	}
	assert.Equal(t, 3, comments[0].LikeCount)
}

func TestFeedPageSize(t *testing.T) {
	f := newCommentFixture(t)

	for i := 0; i < models.FeedPageSize+2; i++ {
		f.createComment(t, "page filler")
	}

	first := f.request(t, &GetFeedMsg{UserID: f.owner.ID, Filter: models.FeedFilterAll, Page: 1})
	assert.Len(t, first.([]*models.Comment), models.FeedPageSize)

	second := f.request(t, &GetFeedMsg{UserID: f.owner.ID, Filter: models.FeedFilterAll, Page: 2})
	assert.Len(t, second.([]*models.Comment), 2)
}
