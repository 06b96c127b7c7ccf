package http

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/metrics"
	"github.com/vovakirdan/roomrelay/internal/proto"
)

// connection is the gateway's view of one websocket: its id and the bounded
// queue drained by the connection's write loop.
type connection struct {
	id  string
	out chan proto.Outbound
}

// Gateway tracks live connections and the named groups they belong to.
// It implements core.Transport. All sends are non-blocking; an event for a
// recipient whose queue is full is dropped.
type Gateway struct {
	log    *zerolog.Logger
	buffer int

	mu     sync.RWMutex
	conns  map[string]*connection
	groups map[string]map[string]struct{} // group -> connection ids
	member map[string]map[string]struct{} // connection id -> groups
}

var _ core.Transport = (*Gateway)(nil)

// NewGateway creates an empty gateway whose connections queue up to buffer events.
func NewGateway(buffer int, logger *zerolog.Logger) *Gateway {
	if buffer <= 0 {
		buffer = 1
	}
	return &Gateway{
		log:    logger,
		buffer: buffer,
		conns:  make(map[string]*connection),
		groups: make(map[string]map[string]struct{}),
		member: make(map[string]map[string]struct{}),
	}
}

// Register adds a connection and returns the queue its writer should drain.
func (g *Gateway) Register(id string) <-chan proto.Outbound {
	c := &connection{id: id, out: make(chan proto.Outbound, g.buffer)}

	g.mu.Lock()
	g.conns[id] = c
	g.mu.Unlock()

	metrics.ConnectionsActive.Inc()
	return c.out
}

// Unregister drops the connection and all of its memberships and closes its queue.
func (g *Gateway) Unregister(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.conns[id]
	if !ok {
		return
	}
	g.leaveAllLocked(id)
	delete(g.conns, id)
	close(c.out)
	metrics.ConnectionsActive.Dec()
}

// Emit delivers an event to a single connection.
func (g *Gateway) Emit(clientID string, event *core.Event) {
	out := outboundFromEvent(event)

	g.mu.RLock()
	defer g.mu.RUnlock()

	if c, ok := g.conns[clientID]; ok {
		g.send(c, out)
	}
}

// EmitToRoom delivers an event to every connection grouped under room.
func (g *Gateway) EmitToRoom(room string, event *core.Event) {
	out := outboundFromEvent(event)

	g.mu.RLock()
	defer g.mu.RUnlock()

	for id := range g.groups[room] {
		if c, ok := g.conns[id]; ok {
			g.send(c, out)
		}
	}
}

// Broadcast delivers a frame to every connection regardless of membership.
func (g *Gateway) Broadcast(out proto.Outbound) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, c := range g.conns {
		g.send(c, out)
	}
}

// JoinRoom adds a registered connection to the room's group.
func (g *Gateway) JoinRoom(clientID, room string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.conns[clientID]; !ok {
		return
	}
	if g.groups[room] == nil {
		g.groups[room] = make(map[string]struct{})
	}
	g.groups[room][clientID] = struct{}{}
	if g.member[clientID] == nil {
		g.member[clientID] = make(map[string]struct{})
	}
	g.member[clientID][room] = struct{}{}
}

// LeaveAllRooms removes the connection from every group it belongs to.
func (g *Gateway) LeaveAllRooms(clientID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.leaveAllLocked(clientID)
}

func (g *Gateway) leaveAllLocked(clientID string) {
	for room := range g.member[clientID] {
		delete(g.groups[room], clientID)
		if len(g.groups[room]) == 0 {
			delete(g.groups, room)
		}
	}
	delete(g.member, clientID)
}

// send must be called with g.mu held; Unregister closes queues under the write lock.
func (g *Gateway) send(c *connection, out proto.Outbound) {
	select {
	case c.out <- out:
	default:
		metrics.OutboundDropped.Inc()
		g.log.Debug().Str("client_id", c.id).Str("event", out.Event).Msg("outbound queue full, dropping event")
	}
}
