package engine

import (
	"whispr/internal/auth"
	"whispr/internal/database"
	"whispr/internal/engine/actors"
	"whispr/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between actors
type Engine struct {
	relationshipActor *actor.PID
	commentActor      *actor.PID
}

func NewEngine(system *actor.ActorSystem, store database.Store, relay actors.Relay, cache *auth.ProfileCache, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	// Spawn relationship actor
	relationshipProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewRelationshipActor(store, relay, cache, metrics)
	})
	relationshipPID := context.Spawn(relationshipProps)

	// Spawn comment actor
	commentProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCommentActor(store, cache, metrics)
	})
	commentPID := context.Spawn(commentProps)

	return &Engine{
		relationshipActor: relationshipPID,
		commentActor:      commentPID,
	}
}

// GetRelationshipActor returns the PID of the relationship actor
func (e *Engine) GetRelationshipActor() *actor.PID {
	return e.relationshipActor
}

// GetCommentActor returns the PID of the comment actor
func (e *Engine) GetCommentActor() *actor.PID {
	return e.commentActor
}
