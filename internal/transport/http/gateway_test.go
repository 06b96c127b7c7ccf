package http

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/proto"
)

func newTestGateway(buffer int) *Gateway {
	logger := zerolog.Nop()
	return NewGateway(buffer, &logger)
}

func groupMembers(g *Gateway, room string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	members := make([]string, 0, len(g.groups[room]))
	for id := range g.groups[room] {
		members = append(members, id)
	}
	return members
}

func roomMessage(text string) *core.Event {
	return &core.Event{
		Kind:    core.EventRoomMessage,
		Room:    "lobby",
		Message: core.Message{Text: text, User: "anon-x", Date: time.Now()},
	}
}

func mustReceive(t *testing.T, queue <-chan proto.Outbound) proto.Outbound {
	t.Helper()
	select {
	case out := <-queue:
		return out
	default:
		t.Fatal("expected a queued outbound frame")
		return proto.Outbound{}
	}
}

func mustBeEmpty(t *testing.T, queue <-chan proto.Outbound) {
	t.Helper()
	select {
	case out := <-queue:
		t.Fatalf("unexpected outbound frame: %+v", out)
	default:
	}
}

func TestGatewayEmitToRoomReachesMembersOnly(t *testing.T) {
	g := newTestGateway(4)
	a := g.Register("a")
	b := g.Register("b")
	c := g.Register("c")

	g.JoinRoom("a", "lobby")
	g.JoinRoom("b", "lobby")
	g.JoinRoom("c", "kitchen")

	g.EmitToRoom("lobby", roomMessage("hi"))

	for _, q := range []<-chan proto.Outbound{a, b} {
		out := mustReceive(t, q)
		if out.Event != proto.EventMessage {
			t.Fatalf("unexpected event: %s", out.Event)
		}
		if msg, ok := out.Data.(proto.Message); !ok || msg.Text != "hi" {
			t.Fatalf("unexpected payload: %+v", out.Data)
		}
	}
	mustBeEmpty(t, c)
}

func TestGatewayLeaveAllRooms(t *testing.T) {
	g := newTestGateway(4)
	a := g.Register("a")

	g.JoinRoom("a", "lobby")
	g.JoinRoom("a", "kitchen")
	g.LeaveAllRooms("a")

	g.EmitToRoom("lobby", roomMessage("one"))
	g.EmitToRoom("kitchen", roomMessage("two"))
	mustBeEmpty(t, a)

	if members := groupMembers(g, "lobby"); len(members) != 0 {
		t.Fatalf("expected no members, got %v", members)
	}
}

func TestGatewayEmitIsPrivate(t *testing.T) {
	g := newTestGateway(4)
	a := g.Register("a")
	b := g.Register("b")
	g.JoinRoom("a", "lobby")
	g.JoinRoom("b", "lobby")

	g.Emit("a", &core.Event{Kind: core.EventHistory, Room: "lobby", Messages: []core.Message{}})

	out := mustReceive(t, a)
	if out.Event != proto.EventMessages {
		t.Fatalf("unexpected event: %s", out.Event)
	}
	mustBeEmpty(t, b)
}

func TestGatewayDropsWhenQueueFull(t *testing.T) {
	g := newTestGateway(1)
	a := g.Register("a")
	g.JoinRoom("a", "lobby")

	done := make(chan struct{})
	go func() {
		g.EmitToRoom("lobby", roomMessage("first"))
		g.EmitToRoom("lobby", roomMessage("second"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emission blocked on a full queue")
	}

	out := mustReceive(t, a)
	if msg := out.Data.(proto.Message); msg.Text != "first" {
		t.Fatalf("expected first message to survive, got %q", msg.Text)
	}
	mustBeEmpty(t, a)
}

func TestGatewayUnregisterClosesQueue(t *testing.T) {
	g := newTestGateway(2)
	a := g.Register("a")
	g.JoinRoom("a", "lobby")

	g.Unregister("a")
	g.Unregister("a")

	if _, ok := <-a; ok {
		t.Fatal("queue should be closed")
	}
	if members := groupMembers(g, "lobby"); len(members) != 0 {
		t.Fatalf("unregistered connection still grouped: %v", members)
	}

	// emitting to a gone connection is a no-op
	g.Emit("a", roomMessage("late"))
	g.EmitToRoom("lobby", roomMessage("late"))
	g.JoinRoom("a", "lobby")
	if members := groupMembers(g, "lobby"); len(members) != 0 {
		t.Fatalf("unknown connection joined a group: %v", members)
	}
}

func TestGatewayBroadcastReachesEveryone(t *testing.T) {
	g := newTestGateway(2)
	a := g.Register("a")
	b := g.Register("b")
	g.JoinRoom("a", "lobby")

	g.Broadcast(proto.Outbound{Event: proto.EventHello, Data: "world"})

	for _, q := range []<-chan proto.Outbound{a, b} {
		if out := mustReceive(t, q); out.Event != proto.EventHello || out.Data != "world" {
			t.Fatalf("unexpected frame: %+v", out)
		}
	}
}
