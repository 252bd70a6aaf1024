package resource

import (
	"github.com/google/uuid"

	"duskward/pkg/entity"
)

// Map is the subset of per-map resource data this engine needs: an id to
// key instances by, and a spawn point for newly placed entities. A
// complete map resource (terrain, collision geometry) is explicitly out of
// scope (spec.md §9 "no collision" stance).
type Map struct {
	ID         string      `json:"id"`
	SpawnPoint entity.Vec2 `json:"spawn_point"`
}

// PlayerRecord is the persisted/fetched resource backing one character, as
// returned by the resource backend or written out as a persisted JSON
// record (pkg/coordinator's unregister handling). It carries everything
// needed to materialize an entity.Entity on login.
type PlayerRecord struct {
	CharacterID uuid.UUID       `json:"character_id"`
	Name        string          `json:"name"`
	HomeMapID   string          `json:"home_map_id"`
	Gold        int             `json:"gold"`
	Guild       string          `json:"guild,omitempty"`
	XP          int             `json:"xp"`
	BaseStats   entity.BaseStats `json:"base_stats"`
	Position    entity.Vec2     `json:"position"`
	HP          int             `json:"hp"`
	Skin        uint64          `json:"skin"`
}

// Entity materializes the fetched/persisted record into a fresh
// entity.Entity, the Go analogue of original_source's
// `RetreiveFromId<Player> for Entity`.
func (p PlayerRecord) Entity(id entity.ID) *entity.Entity {
	e := entity.New(id, entity.Kind{Tag: entity.KindPlayer, Player: entity.PlayerData{
		CharacterID: p.CharacterID,
		Name:        p.Name,
		Gold:        p.Gold,
		Guild:       p.Guild,
		XP:          p.XP,
		HomeMapID:   p.HomeMapID,
	}}, p.BaseStats)
	e.Position = p.Position
	e.Skin = p.Skin
	if p.HP > 0 {
		e.HP = p.HP
	} else {
		e.HP = 100
	}
	return e
}

// defaultMap synthesizes the canned fallback map used when
// default_fallback is enabled and the backend fetch fails
// (spec.md §4.4).
func defaultMap(id string) *Map {
	return &Map{ID: id}
}

// defaultPlayer synthesizes the canned low-level fallback player.
func defaultPlayer(characterID uuid.UUID) *PlayerRecord {
	return &PlayerRecord{
		CharacterID: characterID,
		Name:        "Wanderer",
		HomeMapID:   "default",
		BaseStats:   entity.BaseStats{Level: 1, Strength: 10, Dexterity: 10, Constitution: 10, Intelligence: 10, Presence: 10, Wisdom: 10},
		HP:          20,
	}
}
