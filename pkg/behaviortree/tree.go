package behaviortree

import (
	"duskward/pkg/entity"
	"duskward/pkg/entitystore"
	"duskward/pkg/protocol"
)

// Status is the result of visiting a Node.
type Status int

const (
	Success Status = iota
	Failure
	Running
)

// Blackboard is per-tree scratch state. Target and Path are named slots
// used by the standard leaves; Store is a generic keyed bag for anything
// else a leaf wants to remember between ticks (spec.md §4.2).
type Blackboard struct {
	Target *entity.ID
	Path   []entity.Vec2
	Store  map[string]interface{}
}

// NewBlackboard returns an empty Blackboard ready for use.
func NewBlackboard() *Blackboard {
	return &Blackboard{Store: make(map[string]interface{})}
}

// Context is what a Node mutates the world through: the AI's own entity,
// an accessor over every other entity in the instance, the tree's
// blackboard, and the tick's outgoing notification buffer (spec.md §4.2).
//
// Notifications is the same buffer pkg/actor forwards into the instance's
// broadcast path; it is nil in contexts built without a client-facing tick
// (most tests), so leaves must check before appending. Emit is the safe way
// to do that.
type Context struct {
	Me            *entity.Entity
	Others        *entitystore.Others
	Storage       *Blackboard
	Notifications *[]protocol.NetworkNotification
}

// Emit appends n to the tick's notification buffer, if one is wired. Leaves
// that want to talk to players (taunt, print_text) go through this instead
// of touching Notifications directly.
func (c *Context) Emit(n protocol.NetworkNotification) {
	if c.Notifications == nil {
		return
	}
	*c.Notifications = append(*c.Notifications, n)
}

// Node is one behaviour-tree leaf or composite.
type Node interface {
	Tick(ctx *Context) Status
}

// NodeFunc adapts a plain function to Node.
type NodeFunc func(ctx *Context) Status

func (f NodeFunc) Tick(ctx *Context) Status { return f(ctx) }
