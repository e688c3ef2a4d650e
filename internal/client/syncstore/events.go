package syncstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
)

// Wire names, mirrored from the server hub.
const (
	EventTaskCreate   = "task-create"
	EventTaskUpdate   = "task-update"
	EventTaskDelete   = "task-delete"
	EventNewActivity  = "new-activity"
	EventRoomJoined   = "room-joined"
	EventJoinUserRoom = "join-user-room"
)

var ErrUnknownEvent = errors.New("unknown event")

// Event is a decoded server broadcast.
type Event interface {
	event()
}

type TaskCreated struct{ Task models.Task }
type TaskUpdated struct{ Task models.Task }
type TaskDeleted struct{ ID string }
type ActivityLogged struct{ Activity models.Activity }
type RoomJoined struct {
	UserID string `json:"userId"`
	Room   string `json:"room"`
}

func (TaskCreated) event()    {}
func (TaskUpdated) event()    {}
func (TaskDeleted) event()    {}
func (ActivityLogged) event() {}
func (RoomJoined) event()     {}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeEvent parses one {"event","data"} frame.
func DecodeEvent(b []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch env.Event {
	case EventTaskCreate:
		var t models.Task
		if err := json.Unmarshal(env.Data, &t); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return TaskCreated{Task: t}, nil
	case EventTaskUpdate:
		var t models.Task
		if err := json.Unmarshal(env.Data, &t); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return TaskUpdated{Task: t}, nil
	case EventTaskDelete:
		var id string
		if err := json.Unmarshal(env.Data, &id); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return TaskDeleted{ID: id}, nil
	case EventNewActivity:
		var a models.Activity
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return ActivityLogged{Activity: a}, nil
	case EventRoomJoined:
		var r RoomJoined
		if err := json.Unmarshal(env.Data, &r); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

// JoinFrame is the handshake a client sends after connecting.
func JoinFrame(userID string) ([]byte, error) {
	data, err := json.Marshal(userID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Event: EventJoinUserRoom, Data: data})
}
