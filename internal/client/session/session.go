// Package session keeps a syncstore.Store current from two channels: the
// direct responses of mutations issued through the API client, and the
// realtime events delivered to the user's room.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/tasksync/internal/client/client"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/client/syncstore"
	"github.com/dmitrijs2005/tasksync/internal/logging"
)

const (
	defaultReconnect = time.Second
	maxReconnect     = 30 * time.Second
	readWait         = 90 * time.Second
	writeWait        = 5 * time.Second
)

// errDisconnected ends one retry cycle after a socket that had joined
// dropped, so the next cycle starts from the base delay again.
var errDisconnected = errors.New("realtime connection lost")

type Session struct {
	api       *client.APIClient
	store     *syncstore.Store
	log       logging.Logger
	dialer    *websocket.Dialer
	reconnect time.Duration
	onEvent   func(syncstore.Event)

	mu     sync.Mutex
	filter models.TaskFilter
	loaded bool
}

type Option func(*Session)

// WithReconnectInterval sets the base delay of the reconnect backoff.
func WithReconnectInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.reconnect = d
		}
	}
}

// WithEventHook observes every decoded inbound event after it was applied.
func WithEventHook(fn func(syncstore.Event)) Option { return func(s *Session) { s.onEvent = fn } }

func New(api *client.APIClient, store *syncstore.Store, log logging.Logger, opts ...Option) *Session {
	s := &Session{
		api:       api,
		store:     store,
		log:       log.With("module", "session"),
		dialer:    websocket.DefaultDialer,
		reconnect: defaultReconnect,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) Store() *syncstore.Store { return s.store }

// Load replaces the local collection with the server listing for filter.
func (s *Session) Load(ctx context.Context, filter models.TaskFilter) error {
	tasks, err := s.api.ListTasks(ctx, filter)
	if err != nil {
		return err
	}
	s.store.Replace(tasks)

	s.mu.Lock()
	s.filter, s.loaded = filter, true
	s.mu.Unlock()
	return nil
}

func (s *Session) CreateTask(ctx context.Context, in models.NewTask) (*models.Task, error) {
	t, err := s.api.CreateTask(ctx, in)
	if err != nil {
		return nil, err
	}
	s.store.ApplyCreate(*t)
	return t, nil
}

func (s *Session) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	t, err := s.api.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.store.ApplyUpdate(*t)
	return t, nil
}

func (s *Session) DeleteTask(ctx context.Context, id string) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.store.ApplyDelete(id)
	return nil
}

// RefreshStats fetches the authoritative counters from the server.
func (s *Session) RefreshStats(ctx context.Context) (*models.Stats, error) {
	return s.api.Stats(ctx)
}

func (s *Session) backoff() retry.Backoff {
	return retry.WithCappedDuration(maxReconnect, retry.NewExponential(s.reconnect))
}

// Run keeps a realtime subscription open until ctx is cancelled,
// reconnecting with exponential backoff and re-joining on every connect.
func (s *Session) Run(ctx context.Context) error {
	for {
		err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
			joined, err := s.connectOnce(ctx)
			switch {
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, client.ErrNotLoggedIn):
				return err
			case joined:
				s.log.Warn(ctx, "realtime connection lost", "error", err)
				return errDisconnected
			default:
				s.log.Warn(ctx, "realtime connect failed, retrying", "error", err)
				return retry.RetryableError(err)
			}
		})
		if ctx.Err() != nil {
			return nil
		}
		if !errors.Is(err, errDisconnected) {
			return err
		}
	}
}

// connectOnce dials, joins and pumps events until the socket fails. joined
// reports whether the room handshake completed.
func (s *Session) connectOnce(ctx context.Context) (joined bool, err error) {
	ws, err := s.dial(ctx)
	if err != nil {
		return false, err
	}
	defer ws.Close()

	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()

	frame, err := syncstore.JoinFrame(s.api.Tokens().UserID)
	if err != nil {
		return false, err
	}
	if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return false, fmt.Errorf("send join: %w", err)
	}

	ws.SetPingHandler(func(data string) error {
		_ = ws.SetReadDeadline(time.Now().Add(readWait))
		return ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	for {
		_ = ws.SetReadDeadline(time.Now().Add(readWait))
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return joined, err
		}

		ev, err := syncstore.DecodeEvent(msg)
		if err != nil {
			s.log.Debug(ctx, "ignoring frame", "error", err)
			continue
		}

		if _, ok := ev.(syncstore.RoomJoined); ok {
			if joined {
				continue
			}
			joined = true
			s.resync(ctx)
		}
		s.store.Apply(ev)
		if s.onEvent != nil {
			s.onEvent(ev)
		}
	}
}

// resync reloads the listing after a (re)join, since events sent while
// disconnected are not replayed.
func (s *Session) resync(ctx context.Context) {
	s.mu.Lock()
	filter, loaded := s.filter, s.loaded
	s.mu.Unlock()
	if !loaded {
		return
	}
	if err := s.Load(ctx, filter); err != nil {
		s.log.Warn(ctx, "resync after join failed", "error", err)
	}
}

// dial opens the socket, refreshing the access token once if the server
// rejects it.
func (s *Session) dial(ctx context.Context) (*websocket.Conn, error) {
	for attempt := 0; ; attempt++ {
		u, err := s.api.WebSocketURL()
		if err != nil {
			return nil, err
		}
		ws, resp, err := s.dialer.DialContext(ctx, u, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err == nil {
			return ws, nil
		}
		if attempt == 0 && resp != nil && resp.StatusCode == http.StatusUnauthorized {
			if rerr := s.api.Refresh(ctx); rerr == nil {
				continue
			}
		}
		return nil, fmt.Errorf("dial realtime: %w", err)
	}
}
