package actors

import (
	stdctx "context"
	"log"
	"time"

	"whispr/internal/auth"
	"whispr/internal/database"
	"whispr/internal/models"
	"whispr/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Relay fans a relationship event out to every connected socket client.
// The websocket Hub satisfies it.
type Relay interface {
	BroadcastEvent(event string, data interface{})
}

// Message types for RelationshipActor
type (
	FollowUserMsg struct {
		FollowerID uuid.UUID `json:"followerId"`
		TargetID   uuid.UUID `json:"targetId"`
	}

	UnfollowUserMsg struct {
		FollowerID uuid.UUID `json:"followerId"`
		TargetID   uuid.UUID `json:"targetId"`
	}

	GetFollowingProfilesMsg struct {
		UserID uuid.UUID `json:"userId"`
	}
)

// FollowResult reports whether a relationship message changed any state.
// A repeated follow or an unfollow of a non-followed target is a no-op
// and produces Changed=false with no broadcast.
type FollowResult struct {
	Changed bool `json:"changed"`
}

// followUpdatePayload is broadcast to all clients after a persisted change.
type followUpdatePayload struct {
	FollowerID uuid.UUID `json:"followerId"`
	TargetID   uuid.UUID `json:"targetId"`
}

// RelationshipActor serializes all follower-graph mutations. Routing every
// follow/unfollow through a single actor keeps the two-document update free
// of interleaving without a database transaction.
type RelationshipActor struct {
	store   database.Store
	relay   Relay
	cache   *auth.ProfileCache
	metrics *utils.MetricsCollector
}

func NewRelationshipActor(store database.Store, relay Relay, cache *auth.ProfileCache, metrics *utils.MetricsCollector) actor.Actor {
	return &RelationshipActor{
		store:   store,
		relay:   relay,
		cache:   cache,
		metrics: metrics,
	}
}

func (a *RelationshipActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("RelationshipActor started with PID: %v", context.Self())

	case *FollowUserMsg:
		a.handleFollow(context, msg)

	case *UnfollowUserMsg:
		a.handleUnfollow(context, msg)

	case *GetFollowingProfilesMsg:
		a.handleGetFollowingProfiles(context, msg)
	}
}

func (a *RelationshipActor) handleFollow(context actor.Context, msg *FollowUserMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	follower, err := a.store.GetUser(ctx, msg.FollowerID)
	if err != nil {
		log.Printf("RelationshipActor: follow by unknown user %s: %v", msg.FollowerID, err)
		context.Respond(a.relationshipError(err, "Failed to fetch follower"))
		return
	}

	target, err := a.store.GetUser(ctx, msg.TargetID)
	if err != nil {
		log.Printf("RelationshipActor: follow of unknown user %s: %v", msg.TargetID, err)
		context.Respond(a.relationshipError(err, "Failed to fetch target user"))
		return
	}

	// Repeated follow is a no-op: nothing is written and no event goes out.
	if target.HasFollower(follower.ID) {
		context.Respond(&FollowResult{Changed: false})
		return
	}

	now := time.Now()
	target.Followers = append(target.Followers, follower.ID)
	target.UpdatedAt = now
	follower.Followed = append(follower.Followed, target.ID)
	follower.UpdatedAt = now

	// Two independent saves. If the second fails the first is not rolled
	// back; the error is logged and the event is not broadcast.
	if err := a.store.SaveUser(ctx, target); err != nil {
		log.Printf("RelationshipActor: failed to save target %s: %v", target.ID, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save follow", err))
		return
	}
	if err := a.store.SaveUser(ctx, follower); err != nil {
		log.Printf("RelationshipActor: failed to save follower %s: %v", follower.ID, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save follow", err))
		return
	}

	a.cache.Invalidate(ctx, follower.ID, target.ID)

	a.relay.BroadcastEvent("update-follow", followUpdatePayload{
		FollowerID: follower.ID,
		TargetID:   target.ID,
	})

	a.metrics.AddOperationLatency("follow_user", time.Since(startTime))
	log.Printf("RelationshipActor: %s now follows %s", follower.ID, target.ID)
	context.Respond(&FollowResult{Changed: true})
}

func (a *RelationshipActor) handleUnfollow(context actor.Context, msg *UnfollowUserMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	follower, err := a.store.GetUser(ctx, msg.FollowerID)
	if err != nil {
		log.Printf("RelationshipActor: unfollow by unknown user %s: %v", msg.FollowerID, err)
		context.Respond(a.relationshipError(err, "Failed to fetch follower"))
		return
	}

	target, err := a.store.GetUser(ctx, msg.TargetID)
	if err != nil {
		log.Printf("RelationshipActor: unfollow of unknown user %s: %v", msg.TargetID, err)
		context.Respond(a.relationshipError(err, "Failed to fetch target user"))
		return
	}

	now := time.Now()
	newFollowers, removedFollower := removeID(target.Followers, follower.ID)
	newFollowed, removedFollowed := removeID(follower.Followed, target.ID)

	// Unfollowing someone never followed is a no-op with no broadcast.
	if !removedFollower && !removedFollowed {
		context.Respond(&FollowResult{Changed: false})
		return
	}

	// Save only the sides that actually changed.
	if removedFollower {
		target.Followers = newFollowers
		target.UpdatedAt = now
		if err := a.store.SaveUser(ctx, target); err != nil {
			log.Printf("RelationshipActor: failed to save target %s: %v", target.ID, err)
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save unfollow", err))
			return
		}
	}
	if removedFollowed {
		follower.Followed = newFollowed
		follower.UpdatedAt = now
		if err := a.store.SaveUser(ctx, follower); err != nil {
			log.Printf("RelationshipActor: failed to save follower %s: %v", follower.ID, err)
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save unfollow", err))
			return
		}
	}

	a.cache.Invalidate(ctx, follower.ID, target.ID)

	a.relay.BroadcastEvent("update-unfollow", followUpdatePayload{
		FollowerID: follower.ID,
		TargetID:   target.ID,
	})

	a.metrics.AddOperationLatency("unfollow_user", time.Since(startTime))
	log.Printf("RelationshipActor: %s no longer follows %s", follower.ID, target.ID)
	context.Respond(&FollowResult{Changed: true})
}

func (a *RelationshipActor) handleGetFollowingProfiles(context actor.Context, msg *GetFollowingProfilesMsg) {
	ctx := stdctx.Background()

	user, err := a.store.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(a.relationshipError(err, "Failed to fetch user"))
		return
	}

	if len(user.Followed) == 0 {
		context.Respond([]models.UserSummary{})
		return
	}

	profiles, err := a.store.GetUserSummaries(ctx, user.Followed)
	if err != nil {
		log.Printf("RelationshipActor: failed to load followed profiles for %s: %v", msg.UserID, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to fetch following profiles", err))
		return
	}
	context.Respond(profiles)
}

// relationshipError passes user-not-found through unchanged and wraps
// anything else as a database error.
func (a *RelationshipActor) relationshipError(err error, message string) error {
	if utils.IsErrorCode(err, utils.ErrUserNotFound) {
		return err
	}
	return utils.NewAppError(utils.ErrDatabase, message, err)
}

// removeID returns ids without the first occurrence of id, and whether
// anything was removed.
func removeID(ids []uuid.UUID, id uuid.UUID) ([]uuid.UUID, bool) {
	for i, v := range ids {
		if v == id {
			out := make([]uuid.UUID, 0, len(ids)-1)
			out = append(out, ids[:i]...)
			out = append(out, ids[i+1:]...)
			return out, true
		}
	}
	return ids, false
}
