package behaviortree

import (
	"testing"

	"duskward/pkg/entity"
	"duskward/pkg/entitystore"
	"duskward/pkg/flavor"
	"duskward/pkg/protocol"
)

func mkEntityAt(id entity.ID, x, y float64) *entity.Entity {
	e := entity.New(id, entity.Kind{Tag: entity.KindMonster}, entity.BaseStats{})
	e.Position = entity.Vec2{X: x, Y: y}
	return e
}

// ctxFor sets up a store with me at (0,0) plus others, and returns the
// Context for me as the double-iterator would yield it.
func ctxFor(t *testing.T, me *entity.Entity, others ...*entity.Entity) *Context {
	t.Helper()
	s := entitystore.New()
	if err := s.Insert(me); err != nil {
		t.Fatalf("insert me: %v", err)
	}
	for _, o := range others {
		if err := s.Insert(o); err != nil {
			t.Fatalf("insert other: %v", err)
		}
	}

	it := s.IterMutWrapper()
	for {
		e, acc, ok := it.NextItem()
		if !ok {
			t.Fatalf("entity %d not found during iteration", me.ID)
		}
		if e.ID == me.ID {
			notifications := make([]protocol.NetworkNotification, 0)
			return &Context{Me: e, Others: acc, Storage: NewBlackboard(), Notifications: &notifications}
		}
	}
}

func TestPrintTextAlwaysSucceeds(t *testing.T) {
	node, err := printTextFactory(Options{"msg": "hello"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ctx := ctxFor(t, mkEntityAt(1, 0, 0))
	if status := node.Tick(ctx); status != Success {
		t.Fatalf("expected Success, got %v", status)
	}
	if len(*ctx.Notifications) != 1 || (*ctx.Notifications)[0].Kind != protocol.NotifySay || (*ctx.Notifications)[0].Message != "hello" {
		t.Fatalf("expected a Say notification with message %q, got %v", "hello", *ctx.Notifications)
	}
}

func TestGetClosestTargetFindsNearest(t *testing.T) {
	node, err := getClosestTargetFactory(Options{"max_sq_dist": 100.0})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	me := mkEntityAt(1, 0, 0)
	near := mkEntityAt(2, 3, 0)
	far := mkEntityAt(3, 9, 0)
	ctx := ctxFor(t, me, near, far)

	if status := node.Tick(ctx); status != Success {
		t.Fatalf("expected Success, got %v", status)
	}
	if ctx.Storage.Target == nil || *ctx.Storage.Target != near.ID {
		t.Fatalf("expected target %d, got %v", near.ID, ctx.Storage.Target)
	}
}

func TestGetClosestTargetFailsWhenNothingInRange(t *testing.T) {
	node, err := getClosestTargetFactory(Options{"max_sq_dist": 1.0})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ctx := ctxFor(t, mkEntityAt(1, 0, 0), mkEntityAt(2, 50, 50))

	if status := node.Tick(ctx); status != Failure {
		t.Fatalf("expected Failure, got %v", status)
	}
	if ctx.Storage.Target != nil {
		t.Fatalf("expected no target recorded")
	}
}

func TestWalkToTargetFailsWithoutTarget(t *testing.T) {
	node, err := walkToTargetFactory(nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ctx := ctxFor(t, mkEntityAt(1, 0, 0))
	if status := node.Tick(ctx); status != Failure {
		t.Fatalf("expected Failure, got %v", status)
	}
}

func TestWalkToTargetWalksTowardTargetAndReturnsRunning(t *testing.T) {
	node, err := walkToTargetFactory(nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	me := mkEntityAt(1, 0, 0)
	target := mkEntityAt(2, 10, 0)
	ctx := ctxFor(t, me, target)
	ctx.Storage.Target = &target.ID

	if status := node.Tick(ctx); status != Running {
		t.Fatalf("expected Running, got %v", status)
	}
	if !ctx.Me.Walking {
		t.Fatalf("expected entity to be walking")
	}
	if ctx.Me.Orientation != entity.East {
		t.Fatalf("expected orientation East, got %v", ctx.Me.Orientation)
	}
}

func TestTauntFactoryRequiresCorpus(t *testing.T) {
	if _, err := tauntFactory(flavor.NewBook())(Options{}); err == nil {
		t.Fatalf("expected error for missing corpus")
	}
}

func TestTauntFactorySucceedsWithKnownCorpus(t *testing.T) {
	node, err := tauntFactory(flavor.NewBook())(Options{"corpus": "feral"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ctx := ctxFor(t, mkEntityAt(1, 0, 0))
	if status := node.Tick(ctx); status != Success {
		t.Fatalf("expected Success, got %v", status)
	}
	if len(*ctx.Notifications) != 1 || (*ctx.Notifications)[0].Kind != protocol.NotifySay {
		t.Fatalf("expected a Say notification, got %v", *ctx.Notifications)
	}
}

func TestDirectionTowardKeepsAxisWithinRatio(t *testing.T) {
	// Currently facing East, delta is mostly X with a small Y component
	// (ratio < 2): should keep the X axis.
	d := directionToward(entity.Vec2{X: 10, Y: 6}, entity.East)
	if d != entity.East {
		t.Fatalf("expected East, got %v", d)
	}

	// Currently facing East, delta strongly favors Y (ratio >= 2): should
	// switch axis.
	d = directionToward(entity.Vec2{X: 1, Y: 10}, entity.East)
	if d != entity.North {
		t.Fatalf("expected North, got %v", d)
	}
}
