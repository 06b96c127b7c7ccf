package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Transport is the delivery side the relay drives. Group membership lives
// entirely in the transport; the relay only invokes it.
//
// Emission is fire-and-forget: implementations must not block and the relay
// never learns whether an event reached its recipients.
type Transport interface {
	// Emit delivers an event to a single client.
	Emit(clientID string, event *Event)
	// EmitToRoom delivers an event to every client currently grouped under room.
	EmitToRoom(room string, event *Event)
	// JoinRoom adds the client to the room's group.
	JoinRoom(clientID, room string)
	// LeaveAllRooms drops every group membership the client holds.
	LeaveAllRooms(clientID string)
}

// Relay interprets client commands against the message store and decides
// what is emitted to whom.
type Relay struct {
	store     *MessageStore
	transport Transport
	log       *zerolog.Logger
	now       func() time.Time

	// roomLocks serialize store access and fanout per room, so live members
	// see messages in stored order and a joiner sees each message once.
	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
}

// NewRelay creates a relay over the given store and transport.
func NewRelay(store *MessageStore, transport Transport, logger *zerolog.Logger) *Relay {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Relay{
		store:     store,
		transport: transport,
		log:       logger,
		now:       time.Now,
		roomLocks: make(map[string]*sync.Mutex),
	}
}

func (r *Relay) lockRoom(room string) func() {
	r.mu.Lock()
	l, ok := r.roomLocks[room]
	if !ok {
		l = &sync.Mutex{}
		r.roomLocks[room] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Connect records a new session. Clients start out in no room.
func (r *Relay) Connect(c *Client) {
	r.log.Info().Str("client_id", c.ID).Msg("client connected")
}

// Disconnect clears the client's membership. Messages it already sent stay stored.
func (r *Relay) Disconnect(c *Client) {
	r.transport.LeaveAllRooms(c.ID)
	r.log.Info().Str("client_id", c.ID).Msg("client disconnected")
}

// Handle applies a single command on behalf of the client.
func (r *Relay) Handle(c *Client, cmd Command) error {
	switch cmd.Kind {
	case CommandJoinRoom:
		r.join(c, cmd.Room)
	case CommandSendRoomMessage:
		r.send(c, cmd.Room, cmd.Text)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownCommand, cmd.Kind)
	}
	return nil
}

// join moves the client into room and replays the room's history to it alone.
// Group join and history read happen under the room lock: a concurrent message
// lands either in the replayed history or in the joiner's broadcast, never both.
func (r *Relay) join(c *Client, room string) {
	r.transport.LeaveAllRooms(c.ID)

	unlock := r.lockRoom(room)
	r.transport.JoinRoom(c.ID, room)
	history := r.store.Get(room)
	unlock()

	r.log.Info().Str("client_id", c.ID).Str("room", room).Int("history", len(history)).Msg("client joined room")

	r.transport.Emit(c.ID, &Event{
		Kind:     EventHistory,
		Room:     room,
		Messages: history,
	})
}

// send stores a message under room and fans it out to the room's members.
// The sender does not have to be a member of room.
func (r *Relay) send(c *Client, room, text string) {
	unlock := r.lockRoom(room)
	defer unlock()

	msg := r.store.Insert(room, Message{
		Text: text,
		User: c.Name,
		Date: r.now().UTC(),
	})
	r.log.Debug().Str("client_id", c.ID).Str("room", room).Msg("message accepted")

	r.transport.EmitToRoom(room, &Event{
		Kind:    EventRoomMessage,
		Room:    room,
		Message: msg,
	})
}
