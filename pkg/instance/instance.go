package instance

import (
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"duskward/pkg/actor"
	"duskward/pkg/behaviortree"
	"duskward/pkg/combat"
	"duskward/pkg/entity"
	"duskward/pkg/entitystore"
	"duskward/pkg/protocol"
)

// ID identifies an instance within the coordinator's map registry.
type ID uint64

const (
	// defaultTickPeriod is 60 Hz, spec.md §4.1's default.
	defaultTickPeriod = time.Second / 60
	// rosterPeriod is the fixed player-roster snapshot cadence (spec.md §4.1).
	rosterPeriod = 2 * time.Second
	// commandQueueDepth bounds the instance's inbox so a stalled instance
	// applies backpressure to its coordinator rather than growing without
	// bound.
	commandQueueDepth = 256
)

// Instance runs the fixed-tick simulation for one map on a single dedicated
// goroutine (spec.md §4.1). Every field below is touched only from that
// goroutine once Run starts; nothing here is safe for concurrent access
// from outside it — callers communicate exclusively through Commands/the
// upstream Event channel, mirroring original_source/src/instance/mod.rs's
// single-threaded Instance::run loop.
type Instance struct {
	id    ID
	mapID string

	store  *entitystore.Store
	actors *actorSet

	combatRules combat.Evaluator

	tickPeriod time.Duration
	tickID     uint64
	lastTickAt time.Time

	commands chan Command
	upstream chan<- Event

	prevNotifications []protocol.NetworkNotification
	nextNotifications []protocol.NetworkNotification
	deadThisTick       map[entity.ID]bool

	shuttingDown bool

	metrics *metrics
	logger  *logrus.Entry
}

// Option configures an Instance at construction time.
type Option func(*Instance)

// WithTickPeriod overrides the default 60Hz tick period. Tests use this to
// run many ticks quickly without sleeping for real wall-clock time.
func WithTickPeriod(period time.Duration) Option {
	return func(ins *Instance) { ins.tickPeriod = period }
}

// New constructs an Instance for mapID, backed by the given combat rule
// evaluator and Prometheus registry (registry may be nil in tests). The
// returned Instance is inert until Run is called.
func New(id ID, mapID string, rules combat.Evaluator, upstream chan<- Event, registry *prometheus.Registry, opts ...Option) *Instance {
	if rules == nil {
		rules = combat.DefaultRules
	}
	ins := &Instance{
		id:           id,
		mapID:        mapID,
		store:        entitystore.New(),
		actors:       newActorSet(),
		combatRules:  rules,
		tickPeriod:   defaultTickPeriod,
		commands:     make(chan Command, commandQueueDepth),
		upstream:     upstream,
		deadThisTick: make(map[entity.ID]bool),
		metrics:      newMetrics(registry),
		logger: logrus.WithFields(logrus.Fields{
			"component":   "instance.Instance",
			"instance_id": id,
			"map_id":      mapID,
		}),
	}
	for _, opt := range opts {
		opt(ins)
	}
	return ins
}

// ID returns this instance's id.
func (ins *Instance) ID() ID { return ins.id }

// Store exposes the entity store for read access from an Arbitrary
// closure (spec.md §4.1 "Arbitrary(closure)"); callers outside the
// instance's own goroutine must only reach it this way.
func (ins *Instance) Store() *entitystore.Store { return ins.store }

// TickID returns the most recently completed tick's id.
func (ins *Instance) TickID() uint64 { return ins.tickID }

// LastTickAt returns the wall-clock time the most recent tick finished
// calculating, the zero Time if no tick has run yet. The admin API's
// /healthz route reads this through an Arbitrary closure to report
// per-instance worker liveness (SPEC_FULL.md §5 NEW).
func (ins *Instance) LastTickAt() time.Time { return ins.lastTickAt }

// Tick runs exactly one tick synchronously. Tests use this to drive the
// pipeline deterministically instead of going through Run's ticker.
func (ins *Instance) Tick() { ins.calculateTick() }

// RemoveEntity deletes id from the store, broadcasting EntityHasQuit to
// every connected actor, refusing (refused=true) if the entity is a Player —
// admin deletion only ever targets monsters (spec.md §6 "remove a monster
// (players refused)"). Callers outside the instance's own goroutine must
// only reach this via an Arbitrary closure.
func (ins *Instance) RemoveEntity(id entity.ID) (removed bool, refused bool) {
	e, ok := ins.store.Get(id)
	if !ok {
		return false, false
	}
	if e.Kind.Tag == entity.KindPlayer {
		return false, true
	}
	ins.store.Remove(id)
	ins.broadcast(protocol.EntityHasQuit(id))
	return true, false
}

// SpawnMonster allocates a fresh monster entity at position, registers a
// fresh AiActor to drive it, and inserts both into the running instance —
// the implementation of the admin "spawn" route (spec.md §6 "create AI
// entity"). entityID/actorID are pre-allocated by the caller from the
// coordinator's process-wide idgen.Counter (spec.md §9), so they never
// collide with ids handed out elsewhere.
func (ins *Instance) SpawnMonster(entityID entity.ID, actorID actor.ID, classID uuid.UUID, pos entity.Vec2, base entity.BaseStats, tree behaviortree.Node) *entity.Entity {
	e := entity.New(entityID, entity.Kind{Tag: entity.KindMonster, Monster: entity.MonsterData{ClassID: classID}}, base)
	e.Position = pos
	if e.HP <= 0 {
		e.HP = 20
	}

	a := actor.NewAiActor(actorID, tree)
	ins.registerClient(a, []*entity.Entity{e})
	return e
}

// MapID returns the map this instance is running.
func (ins *Instance) MapID() string { return ins.mapID }

// Commands returns the inbox other components enqueue Commands onto.
// Senders must not block the caller indefinitely; the channel is buffered
// but a persistently full inbox is a sign the instance has stalled.
func (ins *Instance) Commands() chan<- Command { return ins.commands }

// Run drives the instance's event loop until a Shutdown command is
// processed or the command channel is closed. A panic inside the loop is
// recovered, logged with its stack, and turned into the same ShuttingDown
// event a Shutdown command sends. It is intended to be the entire body of
// the instance's dedicated goroutine (original_source/src/instance/mod.rs's
// spawn_instance).
func (ins *Instance) Run() {
	defer func() {
		if r := recover(); r != nil {
			ins.logger.WithFields(logrus.Fields{"panic": r, "stack": string(debug.Stack())}).
				Error("instance worker panicked, shutting down; entity state may be lost")
			ins.shutdown()
		}
	}()

	ticker := time.NewTicker(ins.tickPeriod)
	defer ticker.Stop()
	roster := time.NewTicker(rosterPeriod)
	defer roster.Stop()

	lag := time.Duration(0)
	last := time.Now()

	for {
		select {
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			lag += elapsed
			pending := lag

			catchups := 0
			for lag >= ins.tickPeriod {
				ins.calculateTick()
				lag -= ins.tickPeriod
				catchups++
			}
			if catchups > 1 {
				ins.logger.WithField("catchup_ticks", catchups).Warn("tick catch-up ran more than once")
			}
			if catchups > 0 {
				ins.metrics.tickLag.WithLabelValues(ins.mapID).Observe(pending.Seconds())
			}

		case <-roster.C:
			ins.emitRoster()

		case cmd, ok := <-ins.commands:
			if !ok {
				return
			}
			if ins.apply(cmd) {
				return
			}
		}

		if ins.shuttingDown {
			return
		}
	}
}

// apply dispatches one Command against instance state, returning true if
// the instance should exit its Run loop afterward.
func (ins *Instance) apply(cmd Command) (exit bool) {
	switch c := cmd.(type) {
	case NewClient:
		ins.registerClient(c.Actor, c.Entities)
	case UnregisterActor:
		ins.unregisterActor(c.ActorID)
	case AssignEntity:
		ins.assignEntity(c.ActorID, c.Entity)
	case Shutdown:
		ins.shutdown()
		return true
	case Arbitrary:
		c.Fn(ins)
		if c.Done != nil {
			close(c.Done)
		}
	default:
		ins.logger.WithField("type", cmd).Warn("unknown instance command")
	}
	return false
}

// registerClient wires a newly connected actor into the instance: every
// existing entity is announced to it, each of its own entities is pushed
// into the store and announced to everyone else already registered
// (spec.md §4.1 "NewClient").
func (ins *Instance) registerClient(a actor.Actor, entities []*entity.Entity) {
	for _, existing := range ins.store.All() {
		a.Send(protocol.NewEntityNotification(existing))
	}

	if replaced := ins.actors.register(a); replaced {
		ins.logger.WithField("actor_id", a.ActorID()).Warn("actor re-registered, replacing previous instance")
	}

	for _, e := range entities {
		if err := ins.store.Insert(e); err != nil {
			ins.logger.WithError(err).WithField("entity_id", e.ID).Error("failed to insert entity for new client")
			continue
		}
		a.RegisterEntity(e.ID)

		announcement := protocol.NewEntityNotification(e)
		ins.actors.forEach(func(other actor.Actor) bool {
			if other.ActorID() == a.ActorID() {
				return true
			}
			other.Send(announcement)
			return true
		})
	}
}

// unregisterActor removes actorID, collects its owned entities out of the
// store, emits an EntityHasQuit notification for each, and forwards the
// departure upstream so the coordinator can persist and drop them
// (spec.md §4.1 "UnregisterActor").
func (ins *Instance) unregisterActor(actorID actor.ID) {
	a, ok := ins.actors.remove(actorID)
	if !ok {
		ins.logger.WithField("actor_id", actorID).Warn("unregister requested for unknown actor")
		return
	}

	owned := a.Entities()
	removed := ins.store.RemoveIf(func(e *entity.Entity) bool {
		for _, id := range owned {
			if id == e.ID {
				return true
			}
		}
		return false
	})

	quit := make([]protocol.NetworkNotification, 0, len(removed))
	for _, e := range removed {
		quit = append(quit, protocol.EntityHasQuit(e.ID))
	}
	ins.actors.forEach(func(other actor.Actor) bool {
		for _, n := range quit {
			other.Send(n)
		}
		return true
	})

	if ins.upstream != nil {
		ins.upstream <- UnregisteredActor{InstanceID: ins.id, Actor: a, Entities: removed}
	}
}

// assignEntity attaches e to actorID's owned set if that actor is
// registered; otherwise the entity is reported upstream as orphaned so the
// coordinator can re-route it rather than let it silently vanish
// (spec.md §9, resolved Open Question).
func (ins *Instance) assignEntity(actorID actor.ID, e *entity.Entity) {
	a, ok := ins.actors.get(actorID)
	if !ok {
		ins.logger.WithFields(logrus.Fields{"actor_id": actorID, "entity_id": e.ID}).
			Warn("assign-entity targeted an actor no longer registered, reporting orphan upstream")
		if ins.upstream != nil {
			ins.upstream <- EntityOrphaned{InstanceID: ins.id, ActorID: actorID, Entity: e}
		}
		return
	}

	if err := ins.store.Insert(e); err != nil {
		ins.logger.WithError(err).WithField("entity_id", e.ID).Error("failed to insert assigned entity")
		return
	}
	a.RegisterEntity(e.ID)

	announcement := protocol.NewEntityNotification(e)
	ins.actors.forEach(func(other actor.Actor) bool {
		if other.ActorID() == actorID {
			return true
		}
		other.Send(announcement)
		return true
	})
}

// shutdown drains every network actor and its owned entities into a
// ShuttingDown event and sends it upstream, then marks the instance for
// exit (spec.md §4.1 "Shutdown").
func (ins *Instance) shutdown() {
	var drained []ShutDownActor
	ins.actors.forEach(func(a actor.Actor) bool {
		owned := a.Entities()
		entities := make([]*entity.Entity, 0, len(owned))
		for _, id := range owned {
			if e, ok := ins.store.Get(id); ok {
				entities = append(entities, e)
			}
		}
		drained = append(drained, ShutDownActor{Actor: a, Entities: entities})
		return true
	})

	if ins.upstream != nil {
		ins.upstream <- ShuttingDown{InstanceID: ins.id, Actors: drained}
	}
	ins.shuttingDown = true
}

// emitRoster builds the 2s player snapshot and forwards it upstream
// (SPEC_FULL.md §4.1 NEW "Roster signal").
func (ins *Instance) emitRoster() {
	if ins.upstream == nil {
		return
	}
	var players []PlayerSnapshot
	ins.store.ForEach(func(e *entity.Entity) {
		if e.Kind.Tag != entity.KindPlayer {
			return
		}
		players = append(players, PlayerSnapshot{
			EntityID:    e.ID,
			CharacterID: e.Kind.Player.CharacterID.String(),
			Position:    e.Position,
			HP:          e.HP,
		})
	})
	ins.upstream <- PlayerRosterUpdate{InstanceID: ins.id, MapID: ins.mapID, Players: players}
}

// broadcast appends n to this tick's pending notifications, to be pushed
// to every NetworkActor at the end of the tick.
func (ins *Instance) broadcast(n protocol.NetworkNotification) {
	ins.nextNotifications = append(ins.nextNotifications, n)
}
