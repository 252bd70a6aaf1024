package adminapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"duskward/pkg/actor"
	"duskward/pkg/coordinator"
	"duskward/pkg/entity"
	"duskward/pkg/instance"
)

// defaultMonsterStats is used for a spawn request that doesn't supply its
// own attribute sheet, mirroring the resource package's defaultPlayer
// fallback numbers (pkg/resource/types.go).
var defaultMonsterStats = entity.BaseStats{Level: 1, Strength: 10, Dexterity: 10, Constitution: 10, Intelligence: 10, Presence: 10, Wisdom: 10}

// defaultHunterRadiusSq is the squared detection radius handed to
// NewDefaultHunterTree for an admin-spawned monster.
const defaultHunterRadiusSq = 64.0

type mapSummary struct {
	ID            string `json:"id"`
	InstanceCount int    `json:"instance_count"`
}

// mapsHandler implements GET /api/v1/maps (spec.md §6).
func (s *Server) mapsHandler(w http.ResponseWriter, r *http.Request) {
	ids := s.game.MapIDs()
	out := make([]mapSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, mapSummary{ID: id, InstanceCount: len(s.game.InstancesForMap(id))})
	}
	writeJSON(w, http.StatusOK, out)
}

// instancesForMapHandler implements GET /api/v1/maps/{id}/instances.
func (s *Server) instancesForMapHandler(w http.ResponseWriter, r *http.Request) {
	mapID := r.PathValue("id")
	ids := s.game.InstancesForMap(mapID)
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		out = append(out, uint64(id))
	}
	writeJSON(w, http.StatusOK, out)
}

type entitySummary struct {
	ID          uint64      `json:"id"`
	Kind        string      `json:"kind"`
	Position    entity.Vec2 `json:"position"`
	HP          int         `json:"hp"`
	CharacterID string      `json:"character_id,omitempty"`
	ClassID     string      `json:"class_id,omitempty"`
}

// entitiesHandler implements GET /api/v1/instances/{id}/entities.
func (s *Server) entitiesHandler(w http.ResponseWriter, r *http.Request) {
	ins, ok := s.instanceFromPath(w, r)
	if !ok {
		return
	}

	var entities []*entity.Entity
	done := make(chan struct{})
	ins.Commands() <- instance.Arbitrary{Fn: func(i *instance.Instance) {
		entities = i.Store().All()
	}, Done: done}
	<-done

	out := make([]entitySummary, 0, len(entities))
	for _, e := range entities {
		summary := entitySummary{ID: uint64(e.ID), Position: e.Position, HP: e.HP}
		if e.Kind.Tag == entity.KindPlayer {
			summary.Kind = "player"
			summary.CharacterID = e.Kind.Player.CharacterID.String()
		} else {
			summary.Kind = "monster"
			summary.ClassID = e.Kind.Monster.ClassID.String()
		}
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, out)
}

type playerSummary struct {
	CharacterID string `json:"character_id"`
	InstanceID  uint64 `json:"instance_id"`
	ActorID     uint64 `json:"actor_id"`
}

// playersHandler implements GET /api/v1/players.
func (s *Server) playersHandler(w http.ResponseWriter, r *http.Request) {
	players := s.game.Players()
	out := make([]playerSummary, 0, len(players))
	for _, p := range players {
		out = append(out, playerSummary{CharacterID: p.CharacterID, InstanceID: uint64(p.InstanceID), ActorID: uint64(p.ActorID)})
	}
	writeJSON(w, http.StatusOK, out)
}

type spawnRequest struct {
	ClassID string  `json:"class_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type spawnResponse struct {
	EntityID uint64 `json:"entity_id"`
	ActorID  uint64 `json:"actor_id"`
}

// spawnHandler implements POST /api/v1/instances/{id}/spawn (spec.md §6
// "body: monster class + x/y -> create AI entity").
func (s *Server) spawnHandler(w http.ResponseWriter, r *http.Request) {
	ins, ok := s.instanceFromPath(w, r)
	if !ok {
		return
	}

	var req spawnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	classID := uuid.New()
	if req.ClassID != "" {
		parsed, err := uuid.Parse(req.ClassID)
		if err != nil {
			http.Error(w, "invalid class_id", http.StatusBadRequest)
			return
		}
		classID = parsed
	}

	tree, err := s.behaviorTrees.NewDefaultHunterTree(defaultHunterRadiusSq)
	if err != nil {
		loggerFromContext(r.Context()).WithError(err).Error("failed to build default hunter tree for spawn")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	entityID := entity.ID(s.game.NewID())
	actorID := actor.ID(s.game.NewID())

	done := make(chan struct{})
	ins.Commands() <- instance.Arbitrary{Fn: func(i *instance.Instance) {
		i.SpawnMonster(entityID, actorID, classID, entity.Vec2{X: req.X, Y: req.Y}, defaultMonsterStats, tree)
	}, Done: done}
	<-done

	writeJSON(w, http.StatusCreated, spawnResponse{EntityID: uint64(entityID), ActorID: uint64(actorID)})
}

// deleteEntityHandler implements DELETE
// /api/v1/instances/{instance_id}/entities/{entity_id} (spec.md §6
// "remove a monster (players refused)").
func (s *Server) deleteEntityHandler(w http.ResponseWriter, r *http.Request) {
	instanceID, err := strconv.ParseUint(r.PathValue("instance_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid instance_id", http.StatusBadRequest)
		return
	}
	entityIDRaw, err := strconv.ParseUint(r.PathValue("entity_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid entity_id", http.StatusBadRequest)
		return
	}

	ins, ok := s.game.InstanceByID(instance.ID(instanceID))
	if !ok {
		http.Error(w, "instance not found", http.StatusNotFound)
		return
	}

	var removed, refused bool
	done := make(chan struct{})
	ins.Commands() <- instance.Arbitrary{Fn: func(i *instance.Instance) {
		removed, refused = i.RemoveEntity(entity.ID(entityIDRaw))
	}, Done: done}
	<-done

	switch {
	case refused:
		http.Error(w, "cannot delete a player entity", http.StatusForbidden)
	case !removed:
		http.Error(w, "entity not found", http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

type connectCharacterRequest struct {
	CharacterID string `json:"character_id"`
	Token       string `json:"token"`
}

// connectCharacterHandler implements POST /api/v1/connect_character
// (spec.md §6 "token + id -> register an auth token").
func (s *Server) connectCharacterHandler(w http.ResponseWriter, r *http.Request) {
	var req connectCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.CharacterID == "" || req.Token == "" {
		http.Error(w, "character_id and token are required", http.StatusBadRequest)
		return
	}

	done := make(chan struct{})
	s.game.Requests() <- coordinator.Arbitrary{Fn: func(g *coordinator.Game) {
		g.Auth().AddToken(req.CharacterID, req.Token)
	}, Done: done}
	<-done

	w.WriteHeader(http.StatusNoContent)
}

// shutdownHandler implements POST /api/v1/shutdown.
func (s *Server) shutdownHandler(w http.ResponseWriter, r *http.Request) {
	s.game.Requests() <- coordinator.Shutdown{}
	w.WriteHeader(http.StatusAccepted)
}

// instanceFromPath resolves the {id} path parameter into a running
// instance, writing the appropriate error response and returning ok=false
// on failure.
func (s *Server) instanceFromPath(w http.ResponseWriter, r *http.Request) (*instance.Instance, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid instance id", http.StatusBadRequest)
		return nil, false
	}
	ins, ok := s.game.InstanceByID(instance.ID(id))
	if !ok {
		http.Error(w, "instance not found", http.StatusNotFound)
		return nil, false
	}
	return ins, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
