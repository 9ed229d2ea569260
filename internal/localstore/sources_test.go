package localstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/storage"
)

func tempFileSource(t *testing.T) *FileSource {
	return NewFileSource(filepath.Join(t.TempDir(), "treatment_timer.json"))
}

func TestFileSourceRoundTrip(t *testing.T) {
	src := tempFileSource(t)

	// Missing file is not an error
	state, err := src.Load()
	require.NoError(t, err)
	assert.Nil(t, state)

	timer := model.NewTreatmentTimer(time.Now().Add(time.Minute).UTC(), []string{"i1"}, "Family")
	require.NoError(t, src.Save(&model.TimerState{Timer: timer}))

	state, err = src.Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	require.NotNil(t, state.Timer)
	assert.Equal(t, timer.ID, state.Timer.ID)
	assert.True(t, timer.EndTime.Equal(state.Timer.EndTime))

	require.NoError(t, src.Clear())
	state, err = src.Load()
	require.NoError(t, err)
	assert.Nil(t, state)

	// Clearing again is a no-op
	assert.NoError(t, src.Clear())
}

func TestFileSourceCorruptRecord(t *testing.T) {
	src := tempFileSource(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(src.Path()), 0755))
	require.NoError(t, os.WriteFile(src.Path(), []byte("{not json"), 0644))

	_, err := src.Load()
	assert.Error(t, err)
}

func TestKVSourceRoundTrip(t *testing.T) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	src := NewKVSource(db)

	state, err := src.Load()
	require.NoError(t, err)
	assert.Nil(t, state)

	timer := model.NewTreatmentTimer(time.Now().Add(time.Minute).UTC(), nil, "")
	require.NoError(t, src.Save(&model.TimerState{Timer: timer}))

	state, err = src.Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, timer.ID, state.Timer.ID)

	require.NoError(t, src.Clear())
	state, err = src.Load()
	require.NoError(t, err)
	assert.Nil(t, state)
}
