package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	due := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		ev    Event
		event string
		data  string
	}{
		{"delete carries bare id", TaskDeleted{ID: "t1"}, EventTaskDelete, `"t1"`},
		{"room joined", RoomJoined{UserID: "u1", Room: "user_u1"}, EventRoomJoined, `{"userId":"u1","room":"user_u1"}`},
		{
			"create carries full task",
			TaskCreated{Task: models.Task{ID: "t1", Title: "A", Status: "pending", Priority: "medium", DueDate: &due, Owner: "u1", Tags: []string{}}},
			EventTaskCreate,
			`{"id":"t1","title":"A","description":"","status":"pending","priority":"medium","dueDate":"2030-05-01T00:00:00Z","owner":"u1","tags":[],"createdAt":"0001-01-01T00:00:00Z","updatedAt":"0001-01-01T00:00:00Z"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Encode(tt.ev)
			require.NoError(t, err)
			var env Envelope
			require.NoError(t, json.Unmarshal(b, &env))
			assert.Equal(t, tt.event, env.Event)
			assert.JSONEq(t, tt.data, string(env.Data))
		})
	}
}

func TestDecodeInbound(t *testing.T) {
	in, err := decodeInbound([]byte(`{"event":"join-user-room","data":"u1"}`))
	require.NoError(t, err)
	assert.Equal(t, inbound{event: EventJoinUserRoom, userID: "u1"}, in)

	in, err = decodeInbound([]byte(`{"event":"join-user-room","data":{"userId":"u2"}}`))
	require.NoError(t, err)
	assert.Equal(t, "u2", in.userID)

	in, err = decodeInbound([]byte(`{"event":"join-user-room"}`))
	require.NoError(t, err)
	assert.Empty(t, in.userID)

	in, err = decodeInbound([]byte(`{"event":"other","data":[1,2]}`))
	require.NoError(t, err)
	assert.Equal(t, "other", in.event)

	_, err = decodeInbound([]byte(`{"event":"join-user-room","data":[1]}`))
	require.Error(t, err)

	_, err = decodeInbound([]byte(`nope`))
	require.Error(t, err)
}
