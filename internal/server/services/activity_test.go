package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/realtime"
)

func TestActivityService_RecordListClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.mustCreate(t, "u1", "Visible")
	f.pub.reset()

	_, err := f.tasks.Update(ctx, "u1", task.ID, UpdateTaskInput{Description: ptr("new")})
	require.NoError(t, err)
	rec, err := f.activities.Record(ctx, "u1", models.ActionCustom, "note")
	require.NoError(t, err)
	assert.Nil(t, rec.TaskID)

	acts, err := f.activities.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, "note", acts[0].Description, "newest first")
	require.NotNil(t, acts[1].Task)
	assert.Equal(t, "Visible", acts[1].Task.Title)
	assert.Equal(t, "new", acts[1].Task.Description)

	last := f.pub.events[len(f.pub.events)-1]
	assert.Equal(t, realtime.ActivityLogged{Activity: *rec}, last.ev)

	n, err := f.activities.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	acts, err = f.activities.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, acts)
}
