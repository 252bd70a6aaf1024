package entity

import "github.com/google/uuid"

// ID is the process-wide, monotonically allocated handle for an entity. It
// is stable for the entity's lifetime; ids are never reused and the
// allocator has no teardown (spec.md §9 "Process-wide id allocation").
type ID uint64

// KindTag distinguishes the two entity variants carried in Kind.
type KindTag int

const (
	KindPlayer KindTag = iota
	KindMonster
)

// PlayerData carries the persistent character identity for a player-backed
// entity (SPEC_FULL.md §3 NEW).
type PlayerData struct {
	CharacterID uuid.UUID `json:"character_id"`
	Name        string    `json:"name"`
	Gold        int       `json:"gold"`
	Guild       string    `json:"guild,omitempty"`
	XP          int       `json:"xp"`
	HomeMapID   string    `json:"home_map_id"`
}

// MonsterData carries the class reference for an AI-backed entity.
type MonsterData struct {
	ClassID uuid.UUID `json:"class_id"`
}

// Kind is the tagged variant {Player(PlayerData), Monster(MonsterData)}.
// Only one of Player/Monster is populated, selected by Tag.
type Kind struct {
	Tag     KindTag
	Player  PlayerData
	Monster MonsterData
}

// NominalSpeed and AttackCadence return the kind-specific movement speed
// (world units/second) and attack-cadence multiplier (reload drained per
// second) used to derive CurrentStats each tick.
func (k Kind) NominalSpeed() float64 {
	if k.Tag == KindMonster {
		return 2.5
	}
	return 4.0
}

func (k Kind) AttackCadence() float64 {
	if k.Tag == KindMonster {
		return 0.8
	}
	return 1.0
}

// Entity is the simulated unit the engine advances each tick (spec.md §3).
// It owns no external resources; its exclusive owner is the entitystore.Store
// it was inserted into. ActorID is a pure lookup back-reference, never an
// ownership edge (spec.md §9 "Cyclic structures").
type Entity struct {
	ID       ID
	Kind     Kind
	ActorID  *uint64 // nil when unowned

	Position    Vec2
	Velocity    Vec2
	Orientation Direction

	Skin uint64
	HP   int

	Hitbox    Rect
	AttackBox Rect
	// AttackOffset is the displacement from Position to the attack box's
	// center when facing East/West; it is mirrored for West and rotated
	// (and negated) for North/South, matching
	// original_source/src/entity/update/attacks.rs.
	AttackOffset Vec2

	BaseStats    BaseStats
	CurrentStats CurrentStats

	Walking     bool
	AttackState AttackState
}

// New constructs an Entity with a freshly derived CurrentStats and an Idle
// attack state. Callers are expected to assign ID via an allocator owned by
// the coordinator (spec.md §9).
func New(id ID, kind Kind, base BaseStats) *Entity {
	return &Entity{
		ID:           id,
		Kind:         kind,
		BaseStats:    base,
		CurrentStats: DeriveCurrentStats(base, kind.NominalSpeed(), kind.AttackCadence()),
		Hitbox:       Rect{HalfWidth: 0.375, HalfHeight: 0.5},
		AttackBox:    Rect{HalfWidth: 0.25, HalfHeight: 0.25},
		AttackOffset: Vec2{X: 0.75, Y: 0.75},
		AttackState:  AttackState{Kind: Idle},
	}
}

// RefreshCurrentStats recomputes CurrentStats from BaseStats and Kind. It is
// the hook SPEC_FULL.md §3 leaves in place for future buffs/debuffs; today
// it is a pure function of Kind, matching the original's "no collision, no
// modifiers yet" stance.
func (e *Entity) RefreshCurrentStats() {
	e.CurrentStats = DeriveCurrentStats(e.BaseStats, e.Kind.NominalSpeed(), e.Kind.AttackCadence())
}

// ApplyDamage clamps HP to a minimum of zero and reports whether the entity
// died from this hit (spec.md §3 invariants).
func (e *Entity) ApplyDamage(amount int) (dead bool) {
	e.HP -= amount
	if e.HP <= 0 {
		e.HP = 0
		return true
	}
	return false
}

// Walk applies a Walk order: set orientation if a direction is given, and
// set the walking flag. A nil direction means "stop".
func (e *Entity) Walk(direction *Direction) {
	if direction != nil {
		e.Orientation = *direction
	}
	e.Walking = direction != nil
}

// AttackBoxForFacing returns the world-space attack box and its center for
// the entity's current orientation (original_source's attack_success).
func (e *Entity) AttackBoxForFacing() (box Rect, center Vec2) {
	switch e.Orientation {
	case North:
		return e.AttackBox.Rotated(), e.Position.Add(Vec2{Y: e.AttackOffset.Y})
	case South:
		return e.AttackBox.Rotated(), e.Position.Sub(Vec2{Y: e.AttackOffset.Y})
	case East:
		return e.AttackBox, e.Position.Add(Vec2{X: e.AttackOffset.X})
	case West:
		return e.AttackBox, e.Position.Sub(Vec2{X: e.AttackOffset.X})
	default:
		return e.AttackBox, e.Position
	}
}
