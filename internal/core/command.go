package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSendRoomMessage stores a chat message and fans it out to the room.
	CommandSendRoomMessage CommandKind = iota
	// CommandJoinRoom moves the client into a room and replays its history.
	CommandJoinRoom
)

func (k CommandKind) String() string {
	switch k {
	case CommandSendRoomMessage:
		return "message"
	case CommandJoinRoom:
		return "join"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Room string
	Text string
}
