package instance

import (
	"duskward/pkg/actor"
	"duskward/pkg/entity"
)

// Event is one upward message an instance sends to its coordinator. The
// concrete types below are the only implementations; coordinator code is
// expected to type-switch on them.
type Event interface {
	isInstanceEvent()
}

// UnregisteredActor reports that actor left (disconnected or was kicked),
// handing its entities back so the coordinator can persist and drop them
// (spec.md §4.1 "UnregisterActor").
type UnregisteredActor struct {
	InstanceID ID
	Actor      actor.Actor
	Entities   []*entity.Entity
}

func (UnregisteredActor) isInstanceEvent() {}

// ShutDownActor is one network actor and its entities, carried inside a
// ShuttingDown event (original_source's ShuttingDownState).
type ShutDownActor struct {
	Actor    actor.Actor
	Entities []*entity.Entity
}

// ShuttingDown reports that the instance has drained every network actor
// and is about to exit its loop (spec.md §4.1 "Shutdown").
type ShuttingDown struct {
	InstanceID ID
	Actors     []ShutDownActor
}

func (ShuttingDown) isInstanceEvent() {}

// PlayerSnapshot is one player entity's state as reported to the
// coordinator's roster (SPEC_FULL.md §4.1 NEW "Roster signal").
type PlayerSnapshot struct {
	EntityID    entity.ID
	CharacterID string
	Position    entity.Vec2
	HP          int
}

// PlayerRosterUpdate is the 2s snapshot of every player entity on the map.
// The coordinator logs it at trace level; it does not update the in-world
// players map, which is kept from routing and departure events.
type PlayerRosterUpdate struct {
	InstanceID ID
	MapID      string
	Players    []PlayerSnapshot
}

func (PlayerRosterUpdate) isInstanceEvent() {}

// EntityOrphaned reports that AssignEntity named an actor id the instance
// no longer has registered (the actor disconnected in a race with the
// coordinator's routing decision). The coordinator re-routes the entity
// rather than let it silently vanish (spec.md §9, resolved).
type EntityOrphaned struct {
	InstanceID ID
	ActorID    actor.ID
	Entity     *entity.Entity
}

func (EntityOrphaned) isInstanceEvent() {}
