package coordinator

import (
	"github.com/google/uuid"

	"duskward/pkg/actor"
	"duskward/pkg/entity"
	"duskward/pkg/instance"
	"duskward/pkg/protocol"
	"duskward/pkg/resource"
)

// Request is one message the Game's single worker goroutine drains from
// its inbox (spec.md §4.3's serial Request queue). The concrete types
// below are the only implementations.
type Request interface {
	isGameRequest()
}

// NewClient reports a freshly authenticated client; the Game fetches its
// player resource asynchronously before routing it to a map
// (spec.md §4.3 "New client arrives").
type NewClient struct {
	Client      protocol.Client
	CharacterID uuid.UUID
}

func (NewClient) isGameRequest() {}

// playerFetched is the follow-up request a resource.Manager callback
// enqueues once an async player fetch completes — the Go rendering of
// original_source's Callbacks job-continuation map.
type playerFetched struct {
	Client      protocol.Client
	ActorID     actor.ID
	CharacterID uuid.UUID
	Entity      *entity.Entity
	HomeMapID   string
	Err         error
}

func (playerFetched) isGameRequest() {}

// mapFetched is the follow-up request for an async map fetch triggered by
// routeToMap when the target map was not yet loaded.
type mapFetched struct {
	MapID       string
	Map         *resource.Map
	Actor       actor.Actor
	Entities    []*entity.Entity
	CharacterID uuid.UUID
	Err         error
}

func (mapFetched) isGameRequest() {}

// InstanceEvent wraps an upward instance.Event so every instance can
// report into the same Game inbox (spec.md §4.3 "handle cross-instance
// events").
type InstanceEvent struct {
	Event instance.Event
}

func (InstanceEvent) isGameRequest() {}

// Arbitrary runs an admin-supplied closure against the Game from inside
// its own worker goroutine (spec.md §4.3 NEW "Admin-triggered
// operations").
type Arbitrary struct {
	Fn   func(*Game)
	Done chan struct{}
}

func (Arbitrary) isGameRequest() {}

// Shutdown starts the coordinator-wide shutdown sequence: broadcast
// Shutdown to every instance, and exit the Game's loop once the last one
// acknowledges (spec.md §4.3 "Start shutdown").
type Shutdown struct{}

func (Shutdown) isGameRequest() {}
