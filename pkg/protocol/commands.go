package protocol

import "duskward/pkg/entity"

// CommandKind tags the variant carried by a NetworkCommand.
type CommandKind int

const (
	// CmdAuthenticate must be the first command a client sends.
	CmdAuthenticate CommandKind = iota
	// CmdEntityOrder carries a player-issued order for one of the
	// client's owned entities.
	CmdEntityOrder
	// CmdGameCommand is any other inbound variant; it is invalid once a
	// client has authenticated and causes the server to kick it.
	CmdGameCommand
)

// NetworkCommand is one already-decoded inbound protocol message
// (spec.md §6).
type NetworkCommand struct {
	Kind CommandKind

	// Populated when Kind == CmdAuthenticate.
	CharacterID string
	Token       string

	// Populated when Kind == CmdEntityOrder.
	EntityID entity.ID
	Order    Order
}

// OrderKind tags the variant carried by an Order.
type OrderKind int

const (
	OrderWalk OrderKind = iota
	OrderSay
	OrderAttack
)

// Order is a client-initiated intention applied to a specific entity
// (spec.md §4.2).
type Order struct {
	Kind OrderKind

	// Populated when Kind == OrderWalk. nil means "stop".
	Direction *entity.Direction

	// Populated when Kind == OrderSay.
	Message string
}
