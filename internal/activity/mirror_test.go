package activity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/remote"
	"github.com/treatclock/treatclock/internal/storage"
)

func TestMirrorPublishClear(t *testing.T) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	client := remote.NewBadgerClient(db)

	mirror := NewMirror(client, "u1")
	timer := model.NewTreatmentTimer(time.Now().Add(time.Minute).UTC(), nil, "Family")

	mirror.Publish("r1", timer)

	data, err := client.Get(remote.ActivityPath("r1", "u1"))
	require.NoError(t, err)

	var rec Record
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, timer.ID, rec.TimerID)
	assert.True(t, timer.EndTime.Equal(rec.EndTime))
	assert.NotEmpty(t, rec.ActivityID)

	mirror.Clear("r1")
	_, err = client.Get(remote.ActivityPath("r1", "u1"))
	assert.ErrorIs(t, err, remote.ErrNotFound)

	// Clearing when absent is fine
	mirror.Clear("r1")
}
