package instance

import (
	"time"

	"github.com/sirupsen/logrus"

	"duskward/pkg/actor"
	"duskward/pkg/combat"
	"duskward/pkg/entity"
	"duskward/pkg/entitystore"
	"duskward/pkg/protocol"
)

// calculateTick runs exactly one fixed-duration tick through the pipeline
// spec.md §4.1 fixes: execute orders, movement resolution, attack
// resolution, dead-entity collection, drain self-commands, broadcast,
// rotate buffers.
func (ins *Instance) calculateTick() {
	ins.executeOrders()
	ins.resolveMovements()
	ins.resolveAttacks()
	ins.collectDead()
	ins.drainSelfCommands()
	ins.broadcastTick()
	ins.rotateBuffers()

	ins.lastTickAt = time.Now()
	ins.metrics.ticks.WithLabelValues(ins.mapID).Inc()
	ins.metrics.entityCount.WithLabelValues(ins.mapID).Set(float64(ins.store.Len()))
}

// executeOrders visits every actor in a deterministic order — network
// actors first, then AI actors, each in insertion order — and runs its
// order-execution routine against the store (spec.md §4.1 step 1).
func (ins *Instance) executeOrders() {
	var network, ai []actor.Actor
	ins.actors.forEach(func(a actor.Actor) bool {
		if _, isAi := a.(*actor.AiActor); isAi {
			ai = append(ai, a)
		} else {
			network = append(network, a)
		}
		return true
	})

	for _, a := range network {
		a.ExecuteOrders(ins.store, &ins.nextNotifications, ins.prevNotifications)
	}
	for _, a := range ai {
		a.ExecuteOrders(ins.store, &ins.nextNotifications, ins.prevNotifications)
	}
}

// resolveMovements integrates every live entity's position from its
// walking/orientation state and current speed (spec.md §4.1 step 2a).
// There is no collision resolution; positions are unclamped (spec.md §9).
func (ins *Instance) resolveMovements() {
	dt := ins.tickPeriod.Seconds()
	ins.store.ForEach(func(e *entity.Entity) {
		if ins.deadThisTick[e.ID] {
			return
		}
		var unit entity.Vec2
		if e.Walking {
			unit = entity.Unit(e.Orientation)
		}
		velocity := unit.Scale(e.CurrentStats.Speed)
		e.Position = e.Position.Add(velocity.Scale(dt))
		e.Velocity = velocity
	})
}

// resolveAttacks double-iterates every entity, advancing its attack state
// machine and resolving hits for entities that just transitioned out of
// Attacking (spec.md §4.1 step 2b). A "killed this tick" entity is skipped
// both as an attacker and as a target for the remainder of the tick
// (spec.md §8 invariant).
func (ins *Instance) resolveAttacks() {
	dt := ins.tickPeriod.Seconds()
	it := ins.store.IterMutWrapper()
	for {
		e, others, ok := it.NextItem()
		if !ok {
			break
		}
		if ins.deadThisTick[e.ID] {
			continue
		}

		switch e.AttackState.Kind {
		case entity.Idle:
			// nothing to do

		case entity.Attacking:
			e.AttackState = entity.AttackState{Kind: entity.Reloading, Remaining: 1.0}
			ins.resolveHit(e, others)

		case entity.Reloading:
			remaining := e.AttackState.Remaining - e.CurrentStats.AttackSpeed*dt
			if remaining < 0 {
				e.AttackState = entity.AttackState{Kind: entity.Idle}
			} else {
				e.AttackState = entity.AttackState{Kind: entity.Reloading, Remaining: remaining}
			}
		}
	}
}

// resolveHit computes attacker's directional attack box and tests it
// against every other live entity's hitbox, invoking the combat rule
// evaluator on each intersection (spec.md §4.1 step 2b, §9).
func (ins *Instance) resolveHit(attacker *entity.Entity, others *entitystore.Others) {
	box, center := attacker.AttackBoxForFacing()

	others.ForEach(func(target *entity.Entity) bool {
		if ins.deadThisTick[target.ID] {
			return true
		}
		if !box.Intersects(center, target.Hitbox, target.Position) {
			return true
		}

		view := &combat.View{Source: attacker, Target: target}
		if err := ins.combatRules.Evaluate(view); err != nil {
			ins.logger.WithError(err).WithFields(logrus.Fields{
				"attacker": attacker.ID,
				"target":   target.ID,
			}).Error("combat rule evaluation failed, skipping this hit")
			return true
		}

		if !view.DamageDealt {
			return true
		}

		amount := int(view.DamageAmount)
		dead := target.ApplyDamage(amount)
		ins.broadcast(protocol.Damage(attacker.ID, target.ID, amount))
		if dead {
			ins.deadThisTick[target.ID] = true
		}
		return true
	})
}

// collectDead removes every entity marked dead this tick, emitting a
// Death and an EntityHasQuit notification for each (spec.md §4.1 step 2c).
func (ins *Instance) collectDead() {
	if len(ins.deadThisTick) == 0 {
		return
	}
	removed := ins.store.RemoveIf(func(e *entity.Entity) bool {
		return ins.deadThisTick[e.ID]
	})
	for _, e := range removed {
		ins.broadcast(protocol.Death(e.ID))
		ins.broadcast(protocol.EntityHasQuit(e.ID))
	}
	for id := range ins.deadThisTick {
		delete(ins.deadThisTick, id)
	}
}

// drainSelfCommands collects any instance-level commands actors enqueued
// while executing orders this tick (e.g. unregister-on-disconnect) and
// applies them immediately (spec.md §4.1 step 3).
func (ins *Instance) drainSelfCommands() {
	var pending []actor.Command
	ins.actors.forEach(func(a actor.Actor) bool {
		a.CollectCommands(&pending)
		return true
	})

	for _, cmd := range pending {
		switch cmd.Kind {
		case actor.CmdSelfUnregister:
			ins.unregisterActor(cmd.ActorID)
		default:
			ins.logger.WithField("kind", cmd.Kind).Warn("unknown self-requested actor command")
		}
	}
}

// broadcastTick builds the per-tick GameUpdate snapshot, appends it to the
// pending notifications, and pushes every pending notification to every
// NetworkActor. AiActors never receive notifications (spec.md §4.1 step 4).
func (ins *Instance) broadcastTick() {
	snapshot := make([]protocol.EntitySnapshot, 0, ins.store.Len())
	ins.store.ForEach(func(e *entity.Entity) {
		snapshot = append(snapshot, protocol.EntitySnapshot{
			EntityID: e.ID,
			Position: e.Position,
			Velocity: e.Velocity,
			HP:       e.HP,
		})
	})
	ins.broadcast(protocol.GameUpdate(ins.tickID, snapshot))

	ins.actors.forEach(func(a actor.Actor) bool {
		if _, isAi := a.(*actor.AiActor); isAi {
			return true
		}
		for _, n := range ins.nextNotifications {
			a.Send(n)
		}
		return true
	})
}

// rotateBuffers swaps pending and previous notifications, clears pending,
// and advances the tick id (spec.md §4.1 step 5).
func (ins *Instance) rotateBuffers() {
	ins.prevNotifications = ins.nextNotifications
	ins.nextNotifications = nil
	ins.tickID++
}
