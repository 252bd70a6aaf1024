package instance

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"duskward/pkg/actor"
	"duskward/pkg/entity"
	"duskward/pkg/protocol"
)

type fakeClient struct {
	characterID uuid.UUID
	commands    chan protocol.NetworkCommand
	sent        []protocol.NetworkNotification
	closed      bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{characterID: uuid.New(), commands: make(chan protocol.NetworkCommand, 8)}
}

func (c *fakeClient) CharacterID() uuid.UUID                    { return c.characterID }
func (c *fakeClient) Commands() <-chan protocol.NetworkCommand { return c.commands }
func (c *fakeClient) Send(n protocol.NetworkNotification) bool {
	c.sent = append(c.sent, n)
	return true
}
func (c *fakeClient) Close() error { c.closed = true; return nil }

func mkPlayer(id entity.ID) *entity.Entity {
	e := entity.New(id, entity.Kind{Tag: entity.KindPlayer, Player: entity.PlayerData{CharacterID: uuid.New()}}, entity.BaseStats{Strength: 16, Constitution: 10})
	e.HP = 20
	return e
}

func newTestInstance(upstream chan Event) *Instance {
	return New(1, "test-map", nil, upstream, nil, WithTickPeriod(time.Millisecond))
}

func TestRegisterClientAnnouncesExistingAndNewEntities(t *testing.T) {
	ins := newTestInstance(nil)

	existing := mkPlayer(1)
	firstClient := newFakeClient()
	firstActor := actor.NewNetworkActor(1, firstClient, 100, 100)
	ins.registerClient(firstActor, []*entity.Entity{existing})

	secondClient := newFakeClient()
	secondActor := actor.NewNetworkActor(2, secondClient, 100, 100)
	newEntity := mkPlayer(2)
	ins.registerClient(secondActor, []*entity.Entity{newEntity})

	foundExisting := false
	for _, n := range secondClient.sent {
		if n.Kind == protocol.NotifyNewEntity && n.NewEntity == existing.ID {
			foundExisting = true
		}
	}
	if !foundExisting {
		t.Fatal("new client was not announced the existing entity")
	}

	foundNew := false
	for _, n := range firstClient.sent {
		if n.Kind == protocol.NotifyNewEntity && n.NewEntity == newEntity.ID {
			foundNew = true
		}
	}
	if !foundNew {
		t.Fatal("existing client was not announced the new entity")
	}

	if ins.store.Len() != 2 {
		t.Fatalf("store len = %d, want 2", ins.store.Len())
	}
}

func TestUnregisterActorRemovesEntitiesAndReportsUpstream(t *testing.T) {
	upstream := make(chan Event, 4)
	ins := newTestInstance(upstream)

	client := newFakeClient()
	a := actor.NewNetworkActor(1, client, 100, 100)
	e := mkPlayer(1)
	ins.registerClient(a, []*entity.Entity{e})

	ins.unregisterActor(a.ActorID())

	if ins.store.Len() != 0 {
		t.Fatalf("store len = %d, want 0 after unregister", ins.store.Len())
	}

	select {
	case ev := <-upstream:
		unreg, ok := ev.(UnregisteredActor)
		if !ok {
			t.Fatalf("event type = %T, want UnregisteredActor", ev)
		}
		if len(unreg.Entities) != 1 || unreg.Entities[0].ID != e.ID {
			t.Fatalf("unexpected entities in UnregisteredActor: %+v", unreg.Entities)
		}
	default:
		t.Fatal("expected an UnregisteredActor event upstream")
	}

}

func TestAssignEntityToMissingActorReportsOrphan(t *testing.T) {
	upstream := make(chan Event, 4)
	ins := newTestInstance(upstream)

	e := mkPlayer(9)
	ins.assignEntity(42, e)

	select {
	case ev := <-upstream:
		orphan, ok := ev.(EntityOrphaned)
		if !ok {
			t.Fatalf("event type = %T, want EntityOrphaned", ev)
		}
		if orphan.Entity.ID != e.ID {
			t.Fatalf("orphan entity id = %d, want %d", orphan.Entity.ID, e.ID)
		}
	default:
		t.Fatal("expected an EntityOrphaned event upstream")
	}

	if ins.store.Len() != 0 {
		t.Fatal("orphaned entity must not be inserted into the store")
	}
}

func TestAssignEntityToKnownActorInsertsAndAnnounces(t *testing.T) {
	ins := newTestInstance(nil)

	c1 := newFakeClient()
	a1 := actor.NewNetworkActor(1, c1, 100, 100)
	ins.registerClient(a1, nil)

	c2 := newFakeClient()
	a2 := actor.NewNetworkActor(2, c2, 100, 100)
	ins.registerClient(a2, nil)

	e := mkPlayer(3)
	ins.assignEntity(a1.ActorID(), e)

	if ins.store.Len() != 1 {
		t.Fatalf("store len = %d, want 1", ins.store.Len())
	}
	found := false
	for _, n := range c2.sent {
		if n.Kind == protocol.NotifyNewEntity && n.NewEntity == e.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("other actor was not announced the newly assigned entity")
	}
}

func TestShutdownDrainsActorsAndSendsEventUpstream(t *testing.T) {
	upstream := make(chan Event, 4)
	ins := newTestInstance(upstream)

	c := newFakeClient()
	a := actor.NewNetworkActor(1, c, 100, 100)
	e := mkPlayer(1)
	ins.registerClient(a, []*entity.Entity{e})

	ins.shutdown()

	if !ins.shuttingDown {
		t.Fatal("shuttingDown flag was not set")
	}

	select {
	case ev := <-upstream:
		sd, ok := ev.(ShuttingDown)
		if !ok {
			t.Fatalf("event type = %T, want ShuttingDown", ev)
		}
		if len(sd.Actors) != 1 || len(sd.Actors[0].Entities) != 1 {
			t.Fatalf("unexpected drained actors: %+v", sd.Actors)
		}
	default:
		t.Fatal("expected a ShuttingDown event upstream")
	}
}

func TestTickMovesWalkingEntity(t *testing.T) {
	ins := newTestInstance(nil)
	e := mkPlayer(1)
	e.Walking = true
	e.Orientation = entity.East
	if err := ins.store.Insert(e); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ins.Tick()

	want := e.CurrentStats.Speed * ins.tickPeriod.Seconds()
	got, _ := ins.store.Get(1)
	if got.Position.X < want-1e-9 || got.Position.X > want+1e-9 {
		t.Fatalf("position.X = %v, want %v", got.Position.X, want)
	}
	if ins.tickID != 1 {
		t.Fatalf("tickID = %d, want 1", ins.tickID)
	}
}

func TestTickResolvesAttackAndDamagesTarget(t *testing.T) {
	ins := newTestInstance(nil)

	attacker := mkPlayer(1)
	attacker.Orientation = entity.East
	attacker.AttackState = entity.AttackState{Kind: entity.Attacking}

	target := mkPlayer(2)
	targetHP := target.HP
	box, center := attacker.AttackBoxForFacing()
	target.Position = center
	_ = box

	if err := ins.store.Insert(attacker); err != nil {
		t.Fatalf("insert attacker: %v", err)
	}
	if err := ins.store.Insert(target); err != nil {
		t.Fatalf("insert target: %v", err)
	}

	ins.Tick()

	updatedTarget, _ := ins.store.Get(2)
	if updatedTarget.HP >= targetHP {
		t.Fatalf("target HP = %d, want less than %d", updatedTarget.HP, targetHP)
	}
	updatedAttacker, _ := ins.store.Get(1)
	if updatedAttacker.AttackState.Kind != entity.Reloading {
		t.Fatalf("attacker state = %v, want Reloading", updatedAttacker.AttackState.Kind)
	}
}

func TestTickRemovesDeadEntityAndEmitsNotifications(t *testing.T) {
	ins := newTestInstance(nil)

	attacker := mkPlayer(1)
	attacker.Orientation = entity.East
	attacker.AttackState = entity.AttackState{Kind: entity.Attacking}
	attacker.BaseStats.Strength = 30

	target := mkPlayer(2)
	target.HP = 1
	_, center := attacker.AttackBoxForFacing()
	target.Position = center

	if err := ins.store.Insert(attacker); err != nil {
		t.Fatalf("insert attacker: %v", err)
	}
	if err := ins.store.Insert(target); err != nil {
		t.Fatalf("insert target: %v", err)
	}

	client := newFakeClient()
	a := actor.NewNetworkActor(1, client, 100, 100)
	ins.actors.register(a)

	ins.Tick()

	if ins.store.Len() != 1 {
		t.Fatalf("store len = %d, want 1 after death", ins.store.Len())
	}

	var sawDeath, sawQuit, sawGameUpdate bool
	for _, n := range client.sent {
		switch n.Kind {
		case protocol.NotifyDeath:
			sawDeath = true
		case protocol.NotifyEntityHasQuit:
			sawQuit = true
		case protocol.NotifyGameUpdate:
			sawGameUpdate = true
		}
	}
	if !sawDeath || !sawQuit || !sawGameUpdate {
		t.Fatalf("missing expected notifications: death=%v quit=%v gameupdate=%v", sawDeath, sawQuit, sawGameUpdate)
	}
}

func TestEmitRosterReportsOnlyPlayers(t *testing.T) {
	upstream := make(chan Event, 4)
	ins := newTestInstance(upstream)

	player := mkPlayer(1)
	monster := entity.New(2, entity.Kind{Tag: entity.KindMonster}, entity.BaseStats{})
	if err := ins.store.Insert(player); err != nil {
		t.Fatalf("insert player: %v", err)
	}
	if err := ins.store.Insert(monster); err != nil {
		t.Fatalf("insert monster: %v", err)
	}

	ins.emitRoster()

	select {
	case ev := <-upstream:
		roster, ok := ev.(PlayerRosterUpdate)
		if !ok {
			t.Fatalf("event type = %T, want PlayerRosterUpdate", ev)
		}
		if len(roster.Players) != 1 || roster.Players[0].EntityID != player.ID {
			t.Fatalf("unexpected roster: %+v", roster.Players)
		}
	default:
		t.Fatal("expected a PlayerRosterUpdate event")
	}
}

func TestRunProcessesArbitraryCommand(t *testing.T) {
	ins := newTestInstance(nil)
	go ins.Run()

	done := make(chan struct{})
	var observedLen int
	ins.Commands() <- Arbitrary{
		Fn: func(in *Instance) {
			observedLen = in.Store().Len()
		},
		Done: done,
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("arbitrary command did not complete in time")
	}
	if observedLen != 0 {
		t.Fatalf("observed store len = %d, want 0", observedLen)
	}

	ins.Commands() <- Shutdown{}
	time.Sleep(20 * time.Millisecond)
}
