package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxInboundSize = 4096
)

// Conn is one live socket. Outbound frames go through send and are written
// by a single writer goroutine, which keeps per-socket ordering.
type Conn struct {
	id         string
	authUserID string
	hub        *Hub
	ws         *websocket.Conn
	send       chan []byte
	rooms      map[string]struct{} // guarded by hub.mu
	done       chan struct{}
	closeOnce  sync.Once
}

func newConn(h *Hub, ws *websocket.Conn, authUserID string) *Conn {
	return &Conn{
		id:         uuid.NewString(),
		authUserID: authUserID,
		hub:        h,
		ws:         ws,
		send:       make(chan []byte, h.sendBuf),
		rooms:      make(map[string]struct{}),
		done:       make(chan struct{}),
	}
}

func (c *Conn) ID() string { return c.id }

// enqueue never blocks. It reports false when the frame was dropped.
func (c *Conn) enqueue(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Close signals the writer to send a close frame and stop.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// serve runs the socket until the peer disconnects or the hub closes it.
func (c *Conn) serve(ctx context.Context, pingInterval time.Duration) {
	defer c.hub.unregister(c)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(ctx, pingInterval)
	}()

	c.readLoop(ctx, pingInterval)
	c.Close()
	<-writerDone
	_ = c.ws.Close()
}

func (c *Conn) readLoop(ctx context.Context, pingInterval time.Duration) {
	pongWait := pingInterval * 2
	c.ws.SetReadLimit(maxInboundSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn(ctx, "socket read failed", "conn_id", c.id, "error", err)
			}
			return
		}

		in, err := decodeInbound(msg)
		if err != nil {
			c.hub.log.Warn(ctx, "malformed frame ignored", "conn_id", c.id, "error", err)
			continue
		}

		switch in.event {
		case EventJoinUserRoom:
			_ = c.hub.Join(ctx, c, in.userID)
		default:
			c.hub.log.Debug(ctx, "unknown event ignored", "conn_id", c.id, "event", in.event)
		}
	}
}

func (c *Conn) writeLoop(ctx context.Context, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.log.Warn(ctx, "socket write failed", "conn_id", c.id, "error", err)
				c.Close()
				_ = c.ws.Close()
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.Close()
				_ = c.ws.Close()
				return
			}
		case <-c.done:
			c.flush()
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			// unblock the reader if the peer never answers the close frame
			_ = c.ws.SetReadDeadline(time.Now().Add(writeWait))
			return
		}
	}
}

// flush writes whatever is still queued without waiting for more.
func (c *Conn) flush() {
	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}
