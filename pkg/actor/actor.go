package actor

import (
	"duskward/pkg/entity"
	"duskward/pkg/entitystore"
	"duskward/pkg/protocol"
)

// ID identifies an actor within a single instance. It is distinct from
// entity.ID: an actor owns zero or more entities.
type ID uint64

// CommandKind tags the variant carried by a Command.
type CommandKind int

const (
	// CmdSelfUnregister is self-enqueued by a NetworkActor whose client
	// link has gone away (spec.md §5 "Cancellation & timeouts"), and
	// processed by the instance on the next tick boundary.
	CmdSelfUnregister CommandKind = iota
)

// Command is a self-requested, instance-level action an actor surfaces
// through CollectCommands (spec.md §4.2 "collect_commands").
type Command struct {
	Kind    CommandKind
	ActorID ID
}

// Actor is the shape an instance's tick pipeline drives every actor
// through, regardless of whether it is network- or AI-backed
// (spec.md §4.2).
type Actor interface {
	// ActorID is this actor's id within its owning instance.
	ActorID() ID

	// CollectCommands appends any pending self-requested commands (e.g.
	// unregister-on-disconnect) to out.
	CollectCommands(out *[]Command)

	// ExecuteOrders drains and applies this actor's pending orders
	// against store, appending any resulting notifications to
	// notifications. previous holds the notifications broadcast on the
	// previous tick, for actors (none currently) that want to react to
	// them.
	ExecuteOrders(store *entitystore.Store, notifications *[]protocol.NetworkNotification, previous []protocol.NetworkNotification)

	// Send enqueues an outbound notification, e.g. a per-tick
	// GameUpdate. It returns false if the notification was dropped.
	Send(protocol.NetworkNotification) bool

	// RegisterEntity adds id to this actor's owned set.
	RegisterEntity(id entity.ID)

	// Entities lists every entity id currently owned by this actor.
	Entities() []entity.ID
}
