package actor

import (
	"errors"

	"duskward/pkg/entity"
	"duskward/pkg/protocol"
)

// ErrAlreadyAttacking is returned by ApplyOrder when an Attack order targets
// an entity whose attack state is not Idle (spec.md §4.2).
var ErrAlreadyAttacking = errors.New("actor: entity is already attacking")

// ApplyOrder applies order to e, returning the notification it produces (if
// any). Applying is the only place order semantics live; both actor kinds
// call through it so NetworkActor and AiActor orders behave identically
// (spec.md §4.2):
//
//   - Walk: sets orientation (if a direction is given) and walking, and
//     always emits a Walk notification.
//   - Say: emits a Say notification with no state change.
//   - Attack: if the entity is Idle, transitions it to Attacking and emits
//     no notification (the next tick resolves the hit); otherwise fails
//     with ErrAlreadyAttacking.
func ApplyOrder(e *entity.Entity, order protocol.Order) (*protocol.NetworkNotification, error) {
	switch order.Kind {
	case protocol.OrderWalk:
		e.Walk(order.Direction)
		n := protocol.Walk(e.ID, order.Direction)
		return &n, nil

	case protocol.OrderSay:
		n := protocol.Say(e.ID, order.Message)
		return &n, nil

	case protocol.OrderAttack:
		if e.AttackState.Kind != entity.Idle {
			return nil, ErrAlreadyAttacking
		}
		e.AttackState = entity.AttackState{Kind: entity.Attacking}
		return nil, nil

	default:
		return nil, errors.New("actor: unknown order kind")
	}
}
