package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

// Wire names of the realtime events.
const (
	EventTaskCreate   = "task-create"
	EventTaskUpdate   = "task-update"
	EventTaskDelete   = "task-delete"
	EventNewActivity  = "new-activity"
	EventRoomJoined   = "room-joined"
	EventJoinUserRoom = "join-user-room"
)

// Event is the closed set of messages the hub delivers to sockets.
type Event interface {
	Name() string
	payload() any
}

type TaskCreated struct{ Task models.Task }

type TaskUpdated struct{ Task models.Task }

// TaskDeleted carries only the id of the removed task.
type TaskDeleted struct{ ID string }

type ActivityLogged struct{ Activity models.Activity }

type RoomJoined struct {
	UserID string `json:"userId"`
	Room   string `json:"room"`
}

func (TaskCreated) Name() string    { return EventTaskCreate }
func (TaskUpdated) Name() string    { return EventTaskUpdate }
func (TaskDeleted) Name() string    { return EventTaskDelete }
func (ActivityLogged) Name() string { return EventNewActivity }
func (RoomJoined) Name() string     { return EventRoomJoined }

func (e TaskCreated) payload() any    { return e.Task }
func (e TaskUpdated) payload() any    { return e.Task }
func (e TaskDeleted) payload() any    { return e.ID }
func (e ActivityLogged) payload() any { return e.Activity }
func (e RoomJoined) payload() any     { return e }

// Envelope is the JSON frame exchanged over the socket in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Encode renders ev as {"event": name, "data": payload}.
func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev.payload())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Name(), err)
	}
	return json.Marshal(Envelope{Event: ev.Name(), Data: data})
}

// inbound is a decoded client frame.
type inbound struct {
	event  string
	userID string
}

func decodeInbound(b []byte) (inbound, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return inbound{}, fmt.Errorf("decode frame: %w", err)
	}
	in := inbound{event: env.Event}
	if env.Event == EventJoinUserRoom && len(env.Data) > 0 {
		// data may be a bare id string or {"userId": "..."}
		if err := json.Unmarshal(env.Data, &in.userID); err != nil {
			var obj struct {
				UserID string `json:"userId"`
			}
			if err := json.Unmarshal(env.Data, &obj); err != nil {
				return inbound{}, fmt.Errorf("decode %s payload: %w", env.Event, err)
			}
			in.userID = obj.UserID
		}
	}
	return in, nil
}
