package instance

import (
	"duskward/pkg/actor"
	"duskward/pkg/entity"
)

// Command is one message an instance's worker goroutine consumes from its
// inbox (spec.md §4.1 "Commands handled by an instance"). Concrete types
// below are the only implementations.
type Command interface {
	isInstanceCommand()
}

// NewClient registers a, announces every existing entity to it, pushes
// entities into the store, and announces each of entities to everyone else
// already registered.
type NewClient struct {
	Actor    actor.Actor
	Entities []*entity.Entity
}

func (NewClient) isInstanceCommand() {}

// UnregisterActor removes the named actor, collects its entities, emits
// EntityHasQuit for each, and forwards an UnregisteredActor event upstream.
type UnregisterActor struct {
	ActorID actor.ID
}

func (UnregisterActor) isInstanceCommand() {}

// AssignEntity attaches e to actorID's owned set if that actor is
// registered; otherwise the entity is reported upstream as EntityOrphaned
// (spec.md §9, resolved Open Question).
type AssignEntity struct {
	ActorID actor.ID
	Entity  *entity.Entity
}

func (AssignEntity) isInstanceCommand() {}

// Shutdown drains every network actor and its entities into a
// ShuttingDown event, sends it upstream, and makes Run return right after
// this command is applied.
type Shutdown struct{}

func (Shutdown) isInstanceCommand() {}

// Arbitrary runs an admin-supplied closure against the instance from
// inside its own worker goroutine, so HTTP admin reads/mutations need no
// extra synchronisation (spec.md §4.1 "Arbitrary(closure)"). Done, if
// non-nil, is closed after Fn returns so the caller can block for a
// synchronous reply.
type Arbitrary struct {
	Fn   func(*Instance)
	Done chan struct{}
}

func (Arbitrary) isInstanceCommand() {}
