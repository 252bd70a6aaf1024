package behaviortree

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"duskward/pkg/entity"
	"duskward/pkg/flavor"
	"duskward/pkg/protocol"
)

var leafLog = logrus.WithField("component", "behaviortree.leaves")

// printTextFactory builds the print_text leaf (spec.md §4.2): it logs a
// fixed message, emits it as a Say notification, and always succeeds.
func printTextFactory(opts Options) (Node, error) {
	msg, _ := opts["msg"].(string)
	return NodeFunc(func(ctx *Context) Status {
		leafLog.WithFields(logrus.Fields{
			"entity_id": ctx.Me.ID,
			"message":   msg,
		}).Info("print_text")
		ctx.Emit(protocol.Say(ctx.Me.ID, msg))
		return Success
	}), nil
}

// getClosestTargetFactory builds the get_closest_target leaf: it scans
// every other entity within max_sq_dist and writes the closest one's id
// into the blackboard's Target slot.
func getClosestTargetFactory(opts Options) (Node, error) {
	maxSqDist, err := toFloat(opts["max_sq_dist"])
	if err != nil {
		return nil, fmt.Errorf("behaviortree: get_closest_target: %w", err)
	}

	return NodeFunc(func(ctx *Context) Status {
		var (
			best    entity.ID
			bestSq  = maxSqDist
			found   bool
		)
		ctx.Others.ForEach(func(other *entity.Entity) bool {
			delta := other.Position.Sub(ctx.Me.Position)
			sq := delta.X*delta.X + delta.Y*delta.Y
			if sq <= bestSq {
				bestSq = sq
				best = other.ID
				found = true
			}
			return true
		})
		if !found {
			ctx.Storage.Target = nil
			return Failure
		}
		ctx.Storage.Target = &best
		return Success
	}), nil
}

// walkToTargetFactory builds the walk_to_target leaf: it reads the
// blackboard's Target, picks a direction toward it using the
// orientation-preserving heuristic (keep the current axis unless the other
// axis's delta is more than twice as large), and walks that way.
func walkToTargetFactory(Options) (Node, error) {
	return NodeFunc(func(ctx *Context) Status {
		if ctx.Storage.Target == nil {
			return Failure
		}
		target, ok := ctx.Others.Get(*ctx.Storage.Target)
		if !ok {
			ctx.Storage.Target = nil
			return Failure
		}

		delta := target.Position.Sub(ctx.Me.Position)
		dir := directionToward(delta, ctx.Me.Orientation)
		ctx.Me.Walk(&dir)
		return Running
	}), nil
}

// directionToward picks a cardinal direction from a delta vector, favoring
// the entity's current facing axis when the delta isn't lopsided toward the
// other axis (ratio within 2x), so AI movement doesn't zigzag when a target
// is roughly as far away on both axes.
func directionToward(delta entity.Vec2, current entity.Direction) entity.Direction {
	absX, absY := math.Abs(delta.X), math.Abs(delta.Y)
	onXAxis := current == entity.East || current == entity.West
	onYAxis := current == entity.North || current == entity.South

	useX := absX >= absY
	switch {
	case onXAxis && absX > 0 && absY/absX < 2:
		useX = true
	case onYAxis && absY > 0 && absX/absY < 2:
		useX = false
	}

	if useX {
		if delta.X >= 0 {
			return entity.East
		}
		return entity.West
	}
	if delta.Y >= 0 {
		return entity.North
	}
	return entity.South
}

// tauntFactory builds the taunt leaf (SPEC_FULL.md §4.2): it generates a
// line from the named Markov corpus, logs it, and emits it as a Say
// notification exactly like print_text, falling back to silence (but still
// Success) if generation fails.
func tauntFactory(book *flavor.Book) Factory {
	return func(opts Options) (Node, error) {
		corpus, _ := opts["corpus"].(string)
		if corpus == "" {
			return nil, fmt.Errorf("behaviortree: taunt: missing corpus")
		}

		return NodeFunc(func(ctx *Context) Status {
			line, err := book.Generate(corpus)
			if err != nil {
				leafLog.WithFields(logrus.Fields{
					"entity_id": ctx.Me.ID,
					"corpus":    corpus,
				}).WithError(err).Warn("taunt: generation failed")
				return Success
			}
			leafLog.WithFields(logrus.Fields{
				"entity_id": ctx.Me.ID,
				"message":   line,
			}).Info("taunt")
			ctx.Emit(protocol.Say(ctx.Me.ID, line))
			return Success
		}), nil
	}
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected numeric option, got %T", v)
	}
}
