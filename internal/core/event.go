package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomMessage notifies room members about a newly accepted message.
	EventRoomMessage EventKind = iota
	// EventHistory delivers a room's full history to a client upon joining.
	EventHistory
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	Message  Message
	Messages []Message // For EventHistory
}
