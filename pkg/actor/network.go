package actor

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"duskward/pkg/entity"
	"duskward/pkg/entitystore"
	"duskward/pkg/protocol"
)

// NetworkActor is the actor backing one connected client
// (original_source/src/actor/network.rs). Sending never blocks the
// instance worker: Send applies the same non-blocking, drop-on-full policy
// as the teacher's session.safeSendMessage, and an inbound order beyond the
// per-actor rate limit is dropped the same way
// (SPEC_FULL.md §4.2 "Per-actor order rate limit").
type NetworkActor struct {
	id       ID
	client   protocol.Client
	entities []entity.ID
	commands []Command
	limiter  *rate.Limiter
	logger   *logrus.Entry

	closed bool
}

// NewNetworkActor wraps client as actor id, rate-limiting its inbound
// orders at ordersPerSecond with the given burst.
func NewNetworkActor(id ID, client protocol.Client, ordersPerSecond float64, burst int) *NetworkActor {
	return &NetworkActor{
		id:      id,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(ordersPerSecond), burst),
		logger: logrus.WithFields(logrus.Fields{
			"component": "actor.NetworkActor",
			"actor_id":  id,
		}),
	}
}

func (a *NetworkActor) ActorID() ID { return a.id }

func (a *NetworkActor) RegisterEntity(id entity.ID) {
	a.entities = append(a.entities, id)
}

func (a *NetworkActor) Entities() []entity.ID {
	out := make([]entity.ID, len(a.entities))
	copy(out, a.entities)
	return out
}

func (a *NetworkActor) owns(id entity.ID) bool {
	for _, e := range a.entities {
		if e == id {
			return true
		}
	}
	return false
}

// CollectCommands appends any self-requested commands (unregister-on-kick
// or unregister-on-disconnect) accumulated since the last call.
func (a *NetworkActor) CollectCommands(out *[]Command) {
	*out = append(*out, a.commands...)
	a.commands = a.commands[:0]
}

func (a *NetworkActor) selfUnregister() {
	if a.closed {
		return
	}
	a.closed = true
	a.commands = append(a.commands, Command{Kind: CmdSelfUnregister, ActorID: a.id})
}

// ExecuteOrders drains every command currently buffered on the client link
// without blocking, applying EntityOrder commands and kicking the client
// (self-unregistering) on a post-authentication GameCommand or a closed
// link (original_source/src/actor/network.rs's execute_orders/ready).
func (a *NetworkActor) ExecuteOrders(store *entitystore.Store, notifications *[]protocol.NetworkNotification, _ []protocol.NetworkNotification) {
	if a.closed {
		return
	}

	for {
		select {
		case cmd, ok := <-a.client.Commands():
			if !ok {
				a.logger.Debug("client command stream closed, scheduling unregister")
				a.selfUnregister()
				return
			}
			a.handleCommand(store, notifications, cmd)
			if a.closed {
				return
			}
		default:
			return
		}
	}
}

func (a *NetworkActor) handleCommand(store *entitystore.Store, notifications *[]protocol.NetworkNotification, cmd protocol.NetworkCommand) {
	switch cmd.Kind {
	case protocol.CmdEntityOrder:
		if !a.limiter.Allow() {
			a.logger.WithField("entity_id", cmd.EntityID).Warn("order dropped: rate limit exceeded")
			return
		}
		if !a.owns(cmd.EntityID) {
			a.logger.WithField("entity_id", cmd.EntityID).Warn("order for non-owned entity")
			return
		}
		e, ok := store.Get(cmd.EntityID)
		if !ok {
			a.logger.WithField("entity_id", cmd.EntityID).Error("owned entity missing from store")
			return
		}
		notif, err := ApplyOrder(e, cmd.Order)
		if err != nil {
			a.logger.WithFields(logrus.Fields{"entity_id": cmd.EntityID, "error": err}).Debug("order application failed")
			return
		}
		if notif != nil {
			*notifications = append(*notifications, *notif)
		}

	case protocol.CmdGameCommand:
		a.logger.Warn("invalid post-authentication command, kicking client")
		a.selfUnregister()

	default:
		a.logger.WithField("kind", cmd.Kind).Warn("unexpected command kind for connected actor")
	}
}

// Send enqueues notification on the client link, never blocking the
// caller.
func (a *NetworkActor) Send(n protocol.NetworkNotification) bool {
	if a.closed {
		return false
	}
	return a.client.Send(n)
}
