package actors

import (
	"context"
	"sync"
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

// fakeRelay records broadcast events instead of fanning them out.
type fakeRelay struct {
	mu     sync.Mutex
	events []string
}

func (r *fakeRelay) BroadcastEvent(event string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *fakeRelay) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.events...)
}

type relationshipFixture struct {
	system   *protoactor.ActorSystem
	pid      *protoactor.PID
	store    *database.MemoryStore
	relay    *fakeRelay
	follower *models.User
	target   *models.User
}

func newRelationshipFixture(t *testing.T) *relationshipFixture {
	t.Helper()

	store := database.NewMemoryStore()
	relay := &fakeRelay{}
	cache := auth.NewProfileCache(auth.NewMemoryKV())
	metrics := utils.NewMetricsCollector()

	follower := &models.User{
		ID:        uuid.New(),
		Username:  "ada",
		Email:     "ada@example.com",
		Followers: []uuid.UUID{},
		Followed:  []uuid.UUID{},
	}
	target := &models.User{
		ID:        uuid.New(),
		Username:  "grace",
		Email:     "grace@example.com",
		Followers: []uuid.UUID{},
		Followed:  []uuid.UUID{},
	}
	require.NoError(t, store.SaveUser(context.Background(), follower))
	require.NoError(t, store.SaveUser(context.Background(), target))
	store.SaveUserCalls = 0

	system := protoactor.NewActorSystem()
	props := protoactor.PropsFromProducer(func() protoactor.Actor {
		return NewRelationshipActor(store, relay, cache, metrics)
	})
	pid := system.Root.Spawn(props)

	return &relationshipFixture{
		system:   system,
		pid:      pid,
		store:    store,
		relay:    relay,
		follower: follower,
		target:   target,
	}
}

func (f *relationshipFixture) request(t *testing.T, msg interface{}) interface{} {
	t.Helper()
	future := f.system.Root.RequestFuture(f.pid, msg, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	return result
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	f := newRelationshipFixture(t)
	ctx := context.Background()

	result := f.request(t, &FollowUserMsg{FollowerID: f.follower.ID, TargetID: f.target.ID})
	followResult, ok := result.(*FollowResult)
	require.True(t, ok, "unexpected response type %T", result)
	assert.True(t, followResult.Changed)

	target, err := f.store.GetUser(ctx, f.target.ID)
	require.NoError(t, err)
	follower, err := f.store.GetUser(ctx, f.follower.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.follower.ID}, target.Followers)
	assert.Equal(t, []uuid.UUID{f.target.ID}, follower.Followed)
	assert.Equal(t, []string{"update-follow"}, f.relay.Events())

	result = f.request(t, &UnfollowUserMsg{FollowerID: f.follower.ID, TargetID: f.target.ID})
	unfollowResult, ok := result.(*FollowResult)
	require.True(t, ok)
	assert.True(t, unfollowResult.Changed)

	target, err = f.store.GetUser(ctx, f.target.ID)
	require.NoError(t, err)
	follower, err = f.store.GetUser(ctx, f.follower.ID)
	require.NoError(t, err)
	assert.Empty(t, target.Followers)
	assert.Empty(t, follower.Followed)
	assert.Equal(t, []string{"update-follow", "update-unfollow"}, f.relay.Events())
}

func TestRepeatedFollowIsNoOp(t *testing.T) {
	f := newRelationshipFixture(t)
	ctx := context.Background()

	first := f.request(t, &FollowUserMsg{FollowerID: f.follower.ID, TargetID: f.target.ID})
	assert.True(t, first.(*FollowResult).Changed)
	savesAfterFirst := f.store.SaveUserCalls

	second := f.request(t, &FollowUserMsg{FollowerID: f.follower.ID, TargetID: f.target.ID})
	assert.False(t, second.(*FollowResult).Changed)

	// No extra writes and no second broadcast.
	assert.Equal(t, savesAfterFirst, f.store.SaveUserCalls)
	assert.Equal(t, []string{"update-follow"}, f.relay.Events())

	target, err := f.store.GetUser(ctx, f.target.ID)
	require.NoError(t, err)
	assert.Len(t, target.Followers, 1)
}

func TestUnfollowNotFollowed(t *testing.T) {
	f := newRelationshipFixture(t)

	result := f.request(t, &UnfollowUserMsg{FollowerID: f.follower.ID, TargetID: f.target.ID})
	assert.False(t, result.(*FollowResult).Changed)

	assert.Zero(t, f.store.SaveUserCalls)
	assert.Empty(t, f.relay.Events())
}

func TestFollowUnknownTarget(t *testing.T) {
	f := newRelationshipFixture(t)

	result := f.request(t, &FollowUserMsg{FollowerID: f.follower.ID, TargetID: uuid.New()})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected AppError, got %T", result)
	assert.Equal(t, utils.ErrUserNotFound, appErr.Code)

	assert.Zero(t, f.store.SaveUserCalls)
	assert.Empty(t, f.relay.Events())
}

func TestGetFollowingProfiles(t *testing.T) {
	f := newRelationshipFixture(t)

	f.request(t, &FollowUserMsg{FollowerID: f.follower.ID, TargetID: f.target.ID})

	result := f.request(t, &GetFollowingProfilesMsg{UserID: f.follower.ID})
	profiles, ok := result.([]models.UserSummary)
	require.True(t, ok, "unexpected response type %T", result)
	require.Len(t, profiles, 1)
	assert.Equal(t, f.target.ID, profiles[0].ID)
	assert.Equal(t, "grace", profiles[0].Username)
}
