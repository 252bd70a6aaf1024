package actor

import (
	"testing"

	"duskward/pkg/behaviortree"
	"duskward/pkg/entity"
	"duskward/pkg/entitystore"
	"duskward/pkg/protocol"
)

func TestAiActorTicksTreeAgainstOwnEntity(t *testing.T) {
	var gotMe entity.ID
	tree := behaviortree.NodeFunc(func(ctx *behaviortree.Context) behaviortree.Status {
		gotMe = ctx.Me.ID
		return behaviortree.Success
	})

	a := NewAiActor(1, tree)
	a.RegisterEntity(9)
	store := entitystore.New()
	store.Insert(entity.New(9, entity.Kind{Tag: entity.KindMonster}, entity.BaseStats{}))

	a.ExecuteOrders(store, nil, nil)
	if gotMe != 9 {
		t.Fatalf("expected tree to tick with entity 9, got %d", gotMe)
	}
}

func TestAiActorSkipsTickWhenEntityMissing(t *testing.T) {
	ticked := false
	tree := behaviortree.NodeFunc(func(ctx *behaviortree.Context) behaviortree.Status {
		ticked = true
		return behaviortree.Success
	})

	a := NewAiActor(1, tree)
	a.RegisterEntity(9)
	store := entitystore.New() // 9 was never inserted, e.g. it died earlier this tick

	a.ExecuteOrders(store, nil, nil)
	if ticked {
		t.Fatalf("expected tree not to tick when the entity is missing from the store")
	}
}

func TestAiActorForwardsTreeNotifications(t *testing.T) {
	tree := behaviortree.NodeFunc(func(ctx *behaviortree.Context) behaviortree.Status {
		ctx.Emit(protocol.Say(ctx.Me.ID, "grr"))
		return behaviortree.Success
	})

	a := NewAiActor(1, tree)
	a.RegisterEntity(9)
	store := entitystore.New()
	store.Insert(entity.New(9, entity.Kind{Tag: entity.KindMonster}, entity.BaseStats{}))

	var notifications []protocol.NetworkNotification
	a.ExecuteOrders(store, &notifications, nil)

	if len(notifications) != 1 || notifications[0].Kind != protocol.NotifySay || notifications[0].Message != "grr" {
		t.Fatalf("expected the tree's Say notification to reach the tick buffer, got %v", notifications)
	}
}

func TestAiActorOthersExcludesSelf(t *testing.T) {
	var sawSelf bool
	tree := behaviortree.NodeFunc(func(ctx *behaviortree.Context) behaviortree.Status {
		ctx.Others.ForEach(func(o *entity.Entity) bool {
			if o.ID == ctx.Me.ID {
				sawSelf = true
			}
			return true
		})
		return behaviortree.Success
	})

	a := NewAiActor(1, tree)
	a.RegisterEntity(9)
	store := entitystore.New()
	store.Insert(entity.New(9, entity.Kind{Tag: entity.KindMonster}, entity.BaseStats{}))
	store.Insert(entity.New(10, entity.Kind{Tag: entity.KindPlayer}, entity.BaseStats{}))

	a.ExecuteOrders(store, nil, nil)
	if sawSelf {
		t.Fatalf("expected Others to never yield the AI's own entity")
	}
}
