package behaviortree

import (
	"testing"

	"duskward/pkg/entity"
	"duskward/pkg/protocol"
)

func TestContextEmitAppendsToNotifications(t *testing.T) {
	notifications := make([]protocol.NetworkNotification, 0)
	ctx := &Context{Notifications: &notifications}

	ctx.Emit(protocol.Say(entity.ID(1), "hi"))

	if len(notifications) != 1 || notifications[0].Message != "hi" {
		t.Fatalf("expected one Say notification, got %v", notifications)
	}
}

func TestContextEmitNilSafeWithoutNotifications(t *testing.T) {
	ctx := &Context{}
	ctx.Emit(protocol.Say(entity.ID(1), "hi")) // must not panic
}
