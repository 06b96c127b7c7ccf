package core

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// MessageStore keeps the ordered history of every room in memory.
// It is safe for concurrent use.
type MessageStore struct {
	mu    sync.RWMutex
	rooms map[string][]Message
}

// NewMessageStore creates an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{rooms: make(map[string][]Message)}
}

// Get returns a copy of the room's history in insertion order.
// Unknown rooms yield an empty, non-nil slice.
func (s *MessageStore) Get(room string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.rooms[room]
	out := make([]Message, len(history))
	copy(out, history)
	return out
}

// Insert appends msg to the room's history, creating the room on first use,
// and returns the message as stored. Dates never go backwards within a room:
// a message stamped earlier than the current tail is stored with the tail's date.
func (s *MessageStore) Insert(room string, msg Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.rooms[room]
	if n := len(history); n > 0 && msg.Date.Before(history[n-1].Date) {
		msg.Date = history[n-1].Date
	}
	s.rooms[room] = append(history, msg)
	return msg
}

// Rooms lists the names of all rooms with recorded history, sorted.
func (s *MessageStore) Rooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := lo.Keys(s.rooms)
	slices.Sort(names)
	return names
}
