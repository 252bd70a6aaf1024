package coordinator

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"duskward/pkg/actor"
	"duskward/pkg/auth"
	"duskward/pkg/combat"
	"duskward/pkg/entity"
	"duskward/pkg/idgen"
	"duskward/pkg/instance"
	"duskward/pkg/persistence"
	"duskward/pkg/protocol"
	"duskward/pkg/resource"
)

const (
	requestQueueDepth     = 256
	defaultOrdersPerSec   = 20.0
	defaultOrdersBurst    = 40
	entityPersistSubdir   = "entities"
)

// playerSession tracks where a connected character currently lives, so the
// dual-session and orphan-routing policies (SPEC_FULL.md §4.3 NEW) know
// where to find it.
type playerSession struct {
	InstanceID instance.ID
	ActorID    actor.ID
}

// instanceHandle is everything the Game needs to address a running
// instance: the handle itself (for sending Commands) and the map it
// belongs to (for the mapID -> instances index).
type instanceHandle struct {
	ins   *instance.Instance
	mapID string
}

// Game owns every piece of state not tied to a single map: client routing,
// the map/instance registry, and cross-instance events
// (spec.md §4.3). Like an Instance, a Game runs on a single dedicated
// goroutine and is touched only through its Request inbox.
type Game struct {
	requests chan Request
	ids      *idgen.Counter

	resourceMgr *resource.Manager
	authMgr     *auth.Manager
	combatRules combat.Evaluator
	metrics     *prometheus.Registry

	dataDir string

	instancesByMap map[string]map[instance.ID]*instanceHandle
	instanceByID   map[instance.ID]*instanceHandle
	loadedMaps     map[string]*resource.Map
	players        map[string]playerSession

	shuttingDown        bool
	pendingShutdownAcks int

	logger *logrus.Entry
}

// New constructs a Game. dataDir is the root directory persisted player
// records are written under (spec.md §6 "persistence path
// ./scripts/entities/<uuid>").
func New(resourceMgr *resource.Manager, authMgr *auth.Manager, rules combat.Evaluator, registry *prometheus.Registry, dataDir string) *Game {
	if rules == nil {
		rules = combat.DefaultRules
	}
	return &Game{
		requests:       make(chan Request, requestQueueDepth),
		ids:            &idgen.Counter{},
		resourceMgr:    resourceMgr,
		authMgr:        authMgr,
		combatRules:    rules,
		metrics:        registry,
		dataDir:        dataDir,
		instancesByMap: make(map[string]map[instance.ID]*instanceHandle),
		instanceByID:   make(map[instance.ID]*instanceHandle),
		loadedMaps:     make(map[string]*resource.Map),
		players:        make(map[string]playerSession),
		logger:         logrus.WithField("component", "coordinator.Game"),
	}
}

// Requests returns the inbox other components enqueue Requests onto.
func (g *Game) Requests() chan<- Request { return g.requests }

// Auth exposes the authentication manager so an admin route's Arbitrary
// closure can register new tokens from inside the Game's own goroutine.
func (g *Game) Auth() *auth.Manager { return g.authMgr }

// MapIDs lists every map with at least one loaded instance.
func (g *Game) MapIDs() []string {
	out := make([]string, 0, len(g.instancesByMap))
	for id := range g.instancesByMap {
		out = append(out, id)
	}
	return out
}

// InstancesForMap lists the instance ids running for mapID.
func (g *Game) InstancesForMap(mapID string) []instance.ID {
	var out []instance.ID
	for id := range g.instancesByMap[mapID] {
		out = append(out, id)
	}
	return out
}

// InstanceByID looks up a running instance's handle, for Arbitrary
// closures that need to read or mutate it.
func (g *Game) InstanceByID(id instance.ID) (*instance.Instance, bool) {
	h, ok := g.instanceByID[id]
	if !ok {
		return nil, false
	}
	return h.ins, true
}

// InstanceIDs lists every instance currently running, across all maps —
// the admin /healthz route walks this to report per-instance liveness
// (SPEC_FULL.md §5 NEW) without needing a separate per-map pass.
func (g *Game) InstanceIDs() []instance.ID {
	out := make([]instance.ID, 0, len(g.instanceByID))
	for id := range g.instanceByID {
		out = append(out, id)
	}
	return out
}

// PlayerInfo is one connected character's routing state, as reported by
// GET /api/v1/players (spec.md §6).
type PlayerInfo struct {
	CharacterID string
	InstanceID  instance.ID
	ActorID     actor.ID
}

// Players snapshots the in-world players map.
func (g *Game) Players() []PlayerInfo {
	out := make([]PlayerInfo, 0, len(g.players))
	for characterID, session := range g.players {
		out = append(out, PlayerInfo{CharacterID: characterID, InstanceID: session.InstanceID, ActorID: session.ActorID})
	}
	return out
}

// NewID allocates a fresh process-wide id (spec.md §9). idgen.Counter is
// atomic-based, so this is safe to call from any goroutine, including an
// admin handler creating an entity/actor pair for the "spawn" route
// outside the Game's own goroutine.
func (g *Game) NewID() uint64 { return g.ids.Next() }

// QueueDepth reports how many Requests are currently buffered in the
// Game's inbox, for the admin /healthz route's coordinator-queue-depth
// observation (SPEC_FULL.md §5 NEW). Safe to call from any goroutine:
// len() on a channel is a lock-free, momentarily-stale read.
func (g *Game) QueueDepth() int { return len(g.requests) }

// Run drains the Request inbox until a Shutdown request's last
// acknowledgement has been processed.
func (g *Game) Run() {
	for req := range g.requests {
		if g.apply(req) {
			return
		}
	}
}

func (g *Game) apply(req Request) (exit bool) {
	switch r := req.(type) {
	case NewClient:
		g.handleNewClient(r)
	case playerFetched:
		g.handlePlayerFetched(r)
	case mapFetched:
		g.handleMapFetched(r)
	case InstanceEvent:
		return g.handleInstanceEvent(r.Event)
	case Arbitrary:
		r.Fn(g)
		if r.Done != nil {
			close(r.Done)
		}
	case Shutdown:
		return g.startShutdown()
	default:
		g.logger.WithField("type", fmt.Sprintf("%T", req)).Warn("unknown game request")
	}
	return false
}

// handleNewClient implements spec.md §4.3's dual-session policy
// (SPEC_FULL.md §4.3 NEW: kick the old session, accept the new one) and
// kicks off the async player-resource fetch.
func (g *Game) handleNewClient(r NewClient) {
	key := r.CharacterID.String()
	if existing, ok := g.players[key]; ok {
		g.logger.WithField("character_id", key).Info("second session for character, kicking previous session")
		if h, ok := g.instanceByID[existing.InstanceID]; ok {
			h.ins.Commands() <- instance.UnregisterActor{ActorID: existing.ActorID}
		}
		delete(g.players, key)
	}

	actorID := actor.ID(g.ids.Next())
	g.resourceMgr.FetchPlayerAsync(r.CharacterID, func(rec *resource.PlayerRecord, err error) {
		if err != nil {
			g.requests <- playerFetched{Client: r.Client, ActorID: actorID, CharacterID: r.CharacterID, Err: err}
			return
		}
		e := rec.Entity(entity.ID(g.ids.Next()))
		g.requests <- playerFetched{
			Client:      r.Client,
			ActorID:     actorID,
			CharacterID: r.CharacterID,
			Entity:      e,
			HomeMapID:   rec.HomeMapID,
		}
	})
}

// handlePlayerFetched continues handleNewClient once the async player
// fetch resolves: a failure drops the session (fail-close, spec.md §4.4);
// a success routes the entity to its home map.
func (g *Game) handlePlayerFetched(r playerFetched) {
	if r.Err != nil {
		g.logger.WithError(r.Err).WithField("character_id", r.CharacterID).Warn("player resource fetch failed, dropping session")
		r.Client.Close()
		return
	}

	a := actor.NewNetworkActor(r.ActorID, r.Client, defaultOrdersPerSec, defaultOrdersBurst)
	r.Client.Send(protocol.ThisIsYou(r.Entity.ID))
	g.routeToMap(r.HomeMapID, a, []*entity.Entity{r.Entity}, r.CharacterID)
}

// routeToMap implements spec.md §4.3's "Assign-to-map": fetch the map
// asynchronously if it is not yet loaded; once loaded, pick an existing
// instance for it or spawn one, and hand over (actor, entities).
func (g *Game) routeToMap(mapID string, a actor.Actor, entities []*entity.Entity, characterID uuid.UUID) {
	if _, loaded := g.loadedMaps[mapID]; loaded {
		g.assignActorToMap(mapID, a, entities, characterID)
		return
	}

	g.resourceMgr.FetchMapAsync(mapID, func(m *resource.Map, err error) {
		g.requests <- mapFetched{MapID: mapID, Map: m, Actor: a, Entities: entities, CharacterID: characterID, Err: err}
	})
}

func (g *Game) handleMapFetched(r mapFetched) {
	if r.Err != nil {
		g.logger.WithError(r.Err).WithField("map_id", r.MapID).Warn("map fetch failed, dropping actor")
		return
	}
	g.loadedMaps[r.MapID] = r.Map
	g.assignActorToMap(r.MapID, r.Actor, r.Entities, r.CharacterID)
}

// assignActorToMap picks the first existing instance for mapID or spawns
// one (no load balancing beyond that, matching original_source's
// "TODO: Load balancing"), then sends it a NewClient command.
func (g *Game) assignActorToMap(mapID string, a actor.Actor, entities []*entity.Entity, characterID uuid.UUID) {
	handles, ok := g.instancesByMap[mapID]
	if !ok {
		handles = make(map[instance.ID]*instanceHandle)
		g.instancesByMap[mapID] = handles
	}

	var h *instanceHandle
	for _, existing := range handles {
		h = existing
		break
	}
	if h == nil {
		id := instance.ID(g.ids.Next())
		ins := instance.New(id, mapID, g.combatRules, g.eventSink(), g.metrics)
		h = &instanceHandle{ins: ins, mapID: mapID}
		handles[id] = h
		g.instanceByID[id] = h
		go ins.Run()
		g.logger.WithFields(logrus.Fields{"map_id": mapID, "instance_id": id}).Info("spawned new instance")
	}

	h.ins.Commands() <- instance.NewClient{Actor: a, Entities: entities}
	g.players[characterID.String()] = playerSession{InstanceID: h.ins.ID(), ActorID: a.ActorID()}
}

// eventSink returns the channel every instance this Game spawns reports
// Events to: a goroutine that re-wraps each instance.Event as an
// InstanceEvent request back into the Game's own inbox, so instances never
// need a direct reference to Game.
func (g *Game) eventSink() chan<- instance.Event {
	raw := make(chan instance.Event, requestQueueDepth)
	go func() {
		for ev := range raw {
			g.requests <- InstanceEvent{Event: ev}
		}
	}()
	return raw
}

// handleInstanceEvent dispatches one upward instance.Event. It returns
// true only when this was the final acknowledgement of an
// in-progress coordinator shutdown.
func (g *Game) handleInstanceEvent(ev instance.Event) (exit bool) {
	switch e := ev.(type) {
	case instance.UnregisteredActor:
		g.persistAndForget(e.Entities)
	case instance.ShuttingDown:
		for _, sd := range e.Actors {
			g.persistAndForget(sd.Entities)
		}
		if g.shuttingDown {
			g.pendingShutdownAcks--
			if g.pendingShutdownAcks <= 0 {
				return true
			}
		}
	case instance.PlayerRosterUpdate:
		g.logger.WithFields(logrus.Fields{"map_id": e.MapID, "players": len(e.Players)}).Trace("roster update")
	case instance.EntityOrphaned:
		g.handleOrphan(e)
	default:
		g.logger.WithField("type", fmt.Sprintf("%T", ev)).Warn("unknown instance event")
	}
	return false
}

// persistAndForget writes each player entity to a JSON record under
// dataDir/entities/<character-id>.json and drops it from the in-world
// players map (spec.md §4.3 "convert each entity into a persisted player
// record ... remove from the in-world players map").
func (g *Game) persistAndForget(entities []*entity.Entity) {
	for _, e := range entities {
		if e.Kind.Tag != entity.KindPlayer {
			continue
		}
		rec := resource.PlayerRecord{
			CharacterID: e.Kind.Player.CharacterID,
			Name:        e.Kind.Player.Name,
			HomeMapID:   e.Kind.Player.HomeMapID,
			Gold:        e.Kind.Player.Gold,
			Guild:       e.Kind.Player.Guild,
			XP:          e.Kind.Player.XP,
			BaseStats:   e.BaseStats,
			Position:    e.Position,
			HP:          e.HP,
			Skin:        e.Skin,
		}
		if err := g.persistPlayer(rec); err != nil {
			g.logger.WithError(err).WithField("character_id", rec.CharacterID).Error("failed to persist player record")
		}
		delete(g.players, rec.CharacterID.String())
	}
}

// persistPlayer writes rec to <data-dir>/entities/<uuid>.json. The write
// is flock-guarded: dataDir is an externally shared path (spec.md §6's
// resource backend and any sibling coordinator process restarted against
// the same directory both touch it), so a plain atomic rename alone
// doesn't order two processes racing on the same character file.
func (g *Game) persistPlayer(rec resource.PlayerRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("coordinator: marshal player record: %w", err)
	}
	path := filepath.Join(g.dataDir, entityPersistSubdir, rec.CharacterID.String()+".json")

	lock, err := persistence.NewFileLock(path)
	if err != nil {
		return fmt.Errorf("coordinator: acquire player record lock: %w", err)
	}
	defer lock.Close()
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("coordinator: lock player record: %w", err)
	}
	defer lock.Unlock()

	return persistence.AtomicWriteFile(path, data, 0o644)
}

// handleOrphan implements SPEC_FULL.md §4.3 NEW's resolution of "AssignEntity
// targets an actor no longer registered": re-route the entity to the
// player's current session if one exists, else persist it as if the
// player had disconnected.
func (g *Game) handleOrphan(e instance.EntityOrphaned) {
	if e.Entity.Kind.Tag == entity.KindPlayer {
		if session, ok := g.players[e.Entity.Kind.Player.CharacterID.String()]; ok {
			if h, ok := g.instanceByID[session.InstanceID]; ok {
				h.ins.Commands() <- instance.AssignEntity{ActorID: session.ActorID, Entity: e.Entity}
				return
			}
		}
	}
	g.logger.WithField("entity_id", e.Entity.ID).Warn("orphaned entity has no reachable session, persisting as disconnected")
	g.persistAndForget([]*entity.Entity{e.Entity})
}

// startShutdown broadcasts Shutdown to every instance and returns true
// immediately if there were none to wait for (spec.md §4.3 "Start
// shutdown").
func (g *Game) startShutdown() bool {
	g.shuttingDown = true
	g.pendingShutdownAcks = len(g.instanceByID)
	for _, h := range g.instanceByID {
		h.ins.Commands() <- instance.Shutdown{}
	}
	return g.pendingShutdownAcks == 0
}
