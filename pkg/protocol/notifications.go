package protocol

import "duskward/pkg/entity"

// NotificationKind tags the variant carried by a NetworkNotification.
type NotificationKind int

const (
	NotifyResponse NotificationKind = iota
	NotifyThisIsYou
	NotifyNewEntity
	NotifyWalk
	NotifySay
	NotifyGameUpdate
	NotifyEntityHasQuit
	NotifyDamage
	NotifyDeath
)

// ResponseCode is carried by NotifyResponse.
type ResponseCode int

const (
	ResponseSuccess ResponseCode = iota
	ResponseError
)

// EntitySnapshot is the per-entity payload of a GameUpdate notification.
type EntitySnapshot struct {
	EntityID entity.ID   `json:"entity_id"`
	Position entity.Vec2 `json:"position"`
	Velocity entity.Vec2 `json:"velocity"`
	HP       int         `json:"hp"`
}

// NetworkNotification is one server-authored event broadcast to clients
// (spec.md §6). Exactly the fields relevant to Kind are populated.
type NetworkNotification struct {
	Kind NotificationKind

	Code ResponseCode // NotifyResponse

	EntityID entity.ID // NotifyThisIsYou, NotifyWalk, NotifyEntityHasQuit, NotifyDeath

	// NotifyNewEntity
	NewEntity     entity.ID
	Position      entity.Vec2
	Skin          uint64
	HP            int
	NominalSpeed  float64

	// NotifyWalk
	Orientation *entity.Direction

	// NotifySay
	Message string

	// NotifyGameUpdate
	TickID   uint64
	Entities []EntitySnapshot

	// NotifyDamage
	Source entity.ID
	Victim entity.ID
	Amount int
}

// Response builds a Response notification.
func Response(code ResponseCode) NetworkNotification {
	return NetworkNotification{Kind: NotifyResponse, Code: code}
}

// ThisIsYou builds a ThisIsYou notification.
func ThisIsYou(id entity.ID) NetworkNotification {
	return NetworkNotification{Kind: NotifyThisIsYou, EntityID: id}
}

// NewEntityNotification builds a NewEntity notification describing e to a
// newly-informed client.
func NewEntityNotification(e *entity.Entity) NetworkNotification {
	return NetworkNotification{
		Kind:         NotifyNewEntity,
		NewEntity:    e.ID,
		Position:     e.Position,
		Skin:         e.Skin,
		HP:           e.HP,
		NominalSpeed: e.CurrentStats.Speed,
	}
}

// Walk builds a Walk notification.
func Walk(id entity.ID, orientation *entity.Direction) NetworkNotification {
	return NetworkNotification{Kind: NotifyWalk, EntityID: id, Orientation: orientation}
}

// Say builds a Say notification.
func Say(id entity.ID, message string) NetworkNotification {
	return NetworkNotification{Kind: NotifySay, EntityID: id, Message: message}
}

// EntityHasQuit builds an EntityHasQuit notification.
func EntityHasQuit(id entity.ID) NetworkNotification {
	return NetworkNotification{Kind: NotifyEntityHasQuit, EntityID: id}
}

// Damage builds a Damage notification.
func Damage(source, victim entity.ID, amount int) NetworkNotification {
	return NetworkNotification{Kind: NotifyDamage, Source: source, Victim: victim, Amount: amount}
}

// Death builds a Death notification.
func Death(id entity.ID) NetworkNotification {
	return NetworkNotification{Kind: NotifyDeath, EntityID: id}
}

// GameUpdate builds the per-tick world-state broadcast (spec.md §4.1 step 4).
func GameUpdate(tickID uint64, entities []EntitySnapshot) NetworkNotification {
	return NetworkNotification{Kind: NotifyGameUpdate, TickID: tickID, Entities: entities}
}
