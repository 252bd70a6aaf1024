package actor

import (
	"testing"

	"github.com/google/uuid"

	"duskward/pkg/entity"
	"duskward/pkg/entitystore"
	"duskward/pkg/protocol"
)

type fakeClient struct {
	characterID uuid.UUID
	commands    chan protocol.NetworkCommand
	sent        []protocol.NetworkNotification
	closed      bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		characterID: uuid.New(),
		commands:    make(chan protocol.NetworkCommand, 8),
	}
}

func (c *fakeClient) CharacterID() uuid.UUID              { return c.characterID }
func (c *fakeClient) Commands() <-chan protocol.NetworkCommand { return c.commands }
func (c *fakeClient) Send(n protocol.NetworkNotification) bool {
	c.sent = append(c.sent, n)
	return true
}
func (c *fakeClient) Close() error { c.closed = true; return nil }

func storeWithEntity(t *testing.T, id entity.ID) *entitystore.Store {
	t.Helper()
	s := entitystore.New()
	if err := s.Insert(entity.New(id, entity.Kind{Tag: entity.KindPlayer}, entity.BaseStats{})); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return s
}

func TestNetworkActorAppliesOwnedEntityOrder(t *testing.T) {
	client := newFakeClient()
	a := NewNetworkActor(1, client, 100, 100)
	a.RegisterEntity(5)
	store := storeWithEntity(t, 5)

	east := entity.East
	client.commands <- protocol.NetworkCommand{
		Kind:     protocol.CmdEntityOrder,
		EntityID: 5,
		Order:    protocol.Order{Kind: protocol.OrderWalk, Direction: &east},
	}

	var notifications []protocol.NetworkNotification
	a.ExecuteOrders(store, &notifications, nil)

	if len(notifications) != 1 || notifications[0].Kind != protocol.NotifyWalk {
		t.Fatalf("expected one Walk notification, got %+v", notifications)
	}
	e, _ := store.Get(5)
	if !e.Walking {
		t.Fatalf("expected entity to be walking")
	}
}

func TestNetworkActorDropsOrderForNonOwnedEntity(t *testing.T) {
	client := newFakeClient()
	a := NewNetworkActor(1, client, 100, 100)
	a.RegisterEntity(5)
	store := storeWithEntity(t, 5)
	store.Insert(entity.New(6, entity.Kind{Tag: entity.KindPlayer}, entity.BaseStats{}))

	client.commands <- protocol.NetworkCommand{
		Kind:     protocol.CmdEntityOrder,
		EntityID: 6,
		Order:    protocol.Order{Kind: protocol.OrderSay, Message: "hi"},
	}

	var notifications []protocol.NetworkNotification
	a.ExecuteOrders(store, &notifications, nil)
	if len(notifications) != 0 {
		t.Fatalf("expected no notifications for a non-owned entity order, got %+v", notifications)
	}
}

func TestNetworkActorRateLimitDropsExcessOrders(t *testing.T) {
	client := newFakeClient()
	a := NewNetworkActor(1, client, 1, 1)
	a.RegisterEntity(5)
	store := storeWithEntity(t, 5)

	for i := 0; i < 3; i++ {
		client.commands <- protocol.NetworkCommand{
			Kind:     protocol.CmdEntityOrder,
			EntityID: 5,
			Order:    protocol.Order{Kind: protocol.OrderSay, Message: "spam"},
		}
	}

	var notifications []protocol.NetworkNotification
	a.ExecuteOrders(store, &notifications, nil)
	if len(notifications) != 1 {
		t.Fatalf("expected exactly one order to survive the rate limit burst of 1, got %d", len(notifications))
	}
}

func TestNetworkActorKicksOnPostAuthGameCommand(t *testing.T) {
	client := newFakeClient()
	a := NewNetworkActor(1, client, 100, 100)
	store := storeWithEntity(t, 5)

	client.commands <- protocol.NetworkCommand{Kind: protocol.CmdGameCommand}

	var notifications []protocol.NetworkNotification
	a.ExecuteOrders(store, &notifications, nil)

	var cmds []Command
	a.CollectCommands(&cmds)
	if len(cmds) != 1 || cmds[0].Kind != CmdSelfUnregister {
		t.Fatalf("expected a self-unregister command after a post-auth GameCommand, got %+v", cmds)
	}
}

func TestNetworkActorSelfUnregistersOnClosedCommandStream(t *testing.T) {
	client := newFakeClient()
	close(client.commands)
	a := NewNetworkActor(1, client, 100, 100)
	store := storeWithEntity(t, 5)

	var notifications []protocol.NetworkNotification
	a.ExecuteOrders(store, &notifications, nil)

	var cmds []Command
	a.CollectCommands(&cmds)
	if len(cmds) != 1 || cmds[0].Kind != CmdSelfUnregister {
		t.Fatalf("expected a self-unregister command after the client stream closed, got %+v", cmds)
	}
}

func TestNetworkActorSendReturnsFalseAfterClose(t *testing.T) {
	client := newFakeClient()
	close(client.commands)
	a := NewNetworkActor(1, client, 100, 100)
	store := storeWithEntity(t, 5)

	var notifications []protocol.NetworkNotification
	a.ExecuteOrders(store, &notifications, nil)

	if a.Send(protocol.Response(protocol.ResponseSuccess)) {
		t.Fatalf("expected Send to return false once the actor has self-unregistered")
	}
}
