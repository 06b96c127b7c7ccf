package core

import (
	"sync"
	"time"
)

// recordingTransport keeps group membership in memory and records every
// event delivered to each client.
type recordingTransport struct {
	mu      sync.Mutex
	groups  map[string]map[string]struct{}
	inboxes map[string][]*Event
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{
		groups:  make(map[string]map[string]struct{}),
		inboxes: make(map[string][]*Event),
	}
}

func (t *recordingTransport) Emit(clientID string, event *Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deliver(clientID, event)
}

func (t *recordingTransport) EmitToRoom(room string, event *Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, rooms := range t.groups {
		if _, ok := rooms[room]; ok {
			t.deliver(id, event)
		}
	}
}

func (t *recordingTransport) JoinRoom(clientID, room string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.groups[clientID] == nil {
		t.groups[clientID] = make(map[string]struct{})
	}
	t.groups[clientID][room] = struct{}{}
}

func (t *recordingTransport) LeaveAllRooms(clientID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.groups, clientID)
}

func (t *recordingTransport) deliver(clientID string, event *Event) {
	t.inboxes[clientID] = append(t.inboxes[clientID], event)
}

func (t *recordingTransport) inbox(clientID string) []*Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Event(nil), t.inboxes[clientID]...)
}

func (t *recordingTransport) rooms(clientID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for room := range t.groups[clientID] {
		out = append(out, room)
	}
	return out
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
