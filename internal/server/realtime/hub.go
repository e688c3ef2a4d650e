// Package realtime fans task and activity events out to the websocket
// sessions of a user. Each user has one room ("user_<id>"); a socket enters
// it through an explicit join-user-room handshake and leaves it when the
// socket closes. Delivery is at-most-once and best effort: nothing is
// persisted for sockets that join later.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/logging"
)

var (
	ErrHubClosed   = fmt.Errorf("%w: hub closed", common.ErrBroadcast)
	ErrEmptyUserID = errors.New("empty user id")
	ErrForeignRoom = errors.New("socket may only join its own room")
)

const defaultSendBuffer = 64

var tracer = otel.Tracer("github.com/dmitrijs2005/tasksync/internal/server/realtime")

// RoomName returns the room identifier for userID.
func RoomName(userID string) string {
	return "user_" + userID
}

type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Conn]struct{}
	conns   map[*Conn]struct{}
	closed  bool
	log     logging.Logger
	metrics Metrics
	sendBuf int
}

type Option func(*Hub)

func WithMetrics(m Metrics) Option {
	return func(h *Hub) {
		if m != nil {
			h.metrics = m
		}
	}
}

// WithSendBuffer sets the per-socket outbound queue length.
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuf = n
		}
	}
}

func NewHub(log logging.Logger, opts ...Option) *Hub {
	h := &Hub{
		rooms:   make(map[string]map[*Conn]struct{}),
		conns:   make(map[*Conn]struct{}),
		log:     log.With("module", "realtime"),
		metrics: nopMetrics{},
		sendBuf: defaultSendBuffer,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Publish enqueues ev on every socket currently in the room of userID.
// It never blocks on a slow socket: a full queue drops that one delivery.
func (h *Hub) Publish(ctx context.Context, userID string, ev Event) error {
	ctx, span := tracer.Start(ctx, "realtime.Publish", trace.WithAttributes(
		attribute.String("realtime.room", RoomName(userID)),
		attribute.String("realtime.event", ev.Name()),
	))
	defer span.End()

	b, err := Encode(ev)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrBroadcast, err)
	}

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	members := make([]*Conn, 0, len(h.rooms[RoomName(userID)]))
	for c := range h.rooms[RoomName(userID)] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	span.SetAttributes(attribute.Int("realtime.members", len(members)))
	for _, c := range members {
		if c.enqueue(b) {
			h.metrics.Delivered(ev.Name())
			continue
		}
		h.metrics.Dropped(ev.Name())
		h.log.Warn(ctx, "outbound queue full, event dropped",
			"conn_id", c.id, "room", RoomName(userID), "event", ev.Name())
	}
	return nil
}

// Join adds c to the room of userID and acknowledges with room-joined.
// Joining a room twice is a no-op apart from the repeated ack.
func (h *Hub) Join(ctx context.Context, c *Conn, userID string) error {
	if userID == "" {
		h.log.Error(ctx, "join without user id", "conn_id", c.id)
		return ErrEmptyUserID
	}
	if c.authUserID != "" && c.authUserID != userID {
		h.log.Warn(ctx, "join for another user refused",
			"conn_id", c.id, "auth_user_id", c.authUserID, "user_id", userID)
		return ErrForeignRoom
	}

	room := RoomName(userID)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHubClosed
	}
	if _, ok := h.conns[c]; !ok {
		h.mu.Unlock()
		return fmt.Errorf("join on unregistered connection %s", c.id)
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Conn]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
	h.mu.Unlock()

	h.log.Info(ctx, "socket joined room", "conn_id", c.id, "room", room)

	ack, err := Encode(RoomJoined{UserID: userID, Room: room})
	if err != nil {
		return err
	}
	if !c.enqueue(ack) {
		h.metrics.Dropped(EventRoomJoined)
	}
	return nil
}

// RoomSize reports how many sockets are in the room of userID.
func (h *Hub) RoomSize(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[RoomName(userID)])
}

func (h *Hub) register(c *Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.conns[c] = struct{}{}
	h.metrics.ConnOpened()
	return nil
}

// unregister drops c from every room it joined. Frames already queued on c
// stay queued; the writer decides whether to flush them.
func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.metrics.ConnClosed()
}

// Close stops accepting publishes and disconnects every socket.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
