package actor

import (
	"github.com/sirupsen/logrus"

	"duskward/pkg/behaviortree"
	"duskward/pkg/entity"
	"duskward/pkg/entitystore"
	"duskward/pkg/protocol"
)

// AiActor is the actor backing one monster, driven by a behaviour tree
// instead of a client link (original_source/src/actor/mob.rs's AiActor).
// Its ExecuteOrders visits the tree once per tick against a Context built
// from its own entity and an Others accessor over everything else in the
// store (spec.md §4.2).
type AiActor struct {
	id         ID
	entityID   *entity.ID
	entities   []entity.ID
	tree       behaviortree.Node
	blackboard *behaviortree.Blackboard
	logger     *logrus.Entry
}

// NewAiActor builds an AiActor driven by tree, with a fresh empty
// blackboard.
func NewAiActor(id ID, tree behaviortree.Node) *AiActor {
	return &AiActor{
		id:         id,
		tree:       tree,
		blackboard: behaviortree.NewBlackboard(),
		logger: logrus.WithFields(logrus.Fields{
			"component": "actor.AiActor",
			"actor_id":  id,
		}),
	}
}

func (a *AiActor) ActorID() ID { return a.id }

// RegisterEntity records the owned entity. An AiActor is expected to own
// exactly one entity (its "main entity" in the original's terminology);
// subsequent registrations replace the tree-driving entity but are kept in
// Entities() too, matching original_source's entities HashSet.
func (a *AiActor) RegisterEntity(id entity.ID) {
	a.entities = append(a.entities, id)
	eid := id
	a.entityID = &eid
}

func (a *AiActor) Entities() []entity.ID {
	out := make([]entity.ID, len(a.entities))
	copy(out, a.entities)
	return out
}

// CollectCommands is a no-op: an AiActor never self-requests instance-level
// commands (original_source/src/actor/mob.rs's get_commands does nothing).
func (a *AiActor) CollectCommands(*[]Command) {}

// ExecuteOrders visits the behaviour tree once against this actor's own
// entity, doing nothing if the entity is missing from store (e.g. it died
// and was removed earlier in the same tick). Leaves that talk to players
// (taunt, print_text) append to notifications through the tree's Context.
func (a *AiActor) ExecuteOrders(store *entitystore.Store, notifications *[]protocol.NetworkNotification, _ []protocol.NetworkNotification) {
	if a.entityID == nil {
		a.logger.Warn("behaviour tree tick skipped: no main entity registered")
		return
	}
	me, others, ok := store.Borrow(*a.entityID)
	if !ok {
		return
	}

	ctx := &behaviortree.Context{Me: me, Others: others, Storage: a.blackboard, Notifications: notifications}
	a.tree.Tick(ctx)
}

// Send is a no-op: an AiActor has no client link to push notifications to.
func (a *AiActor) Send(protocol.NetworkNotification) bool { return false }
