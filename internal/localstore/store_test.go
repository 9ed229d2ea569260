package localstore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treatclock/treatclock/internal/model"
)

// fakeSource is an in-memory Source with togglable failures.
type fakeSource struct {
	name     string
	state    *model.TimerState
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	clears   int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Load() (*model.TimerState, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.state, nil
}

func (f *fakeSource) Save(state *model.TimerState) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state = state
	return nil
}

func (f *fakeSource) Clear() error {
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.state = nil
	return nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func activeTimer(end time.Time) *model.TreatmentTimer {
	return model.NewTreatmentTimer(end, []string{"i1"}, "Family")
}

// =============================================================================
// Save Tests
// =============================================================================

func TestSaveWritesThroughAllSources(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	a := &fakeSource{name: "file"}
	b := &fakeSource{name: "kv"}
	store := New([]Source{a, b}, WithClock(fixedClock(now)))

	store.Save(activeTimer(now.Add(time.Minute)))

	require.NotNil(t, a.state)
	require.NotNil(t, b.state)
	assert.Equal(t, a.state.Timer.ID, b.state.Timer.ID)
}

func TestSaveIneffectiveTimerClears(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	t.Run("nil_timer", func(t *testing.T) {
		src := &fakeSource{name: "kv", state: &model.TimerState{Timer: activeTimer(now.Add(time.Minute))}}
		store := New([]Source{src}, WithClock(fixedClock(now)))

		store.Save(nil)
		assert.Nil(t, src.state)
		assert.Equal(t, 0, src.saves)
	})

	t.Run("expired_timer", func(t *testing.T) {
		src := &fakeSource{name: "kv", state: &model.TimerState{Timer: activeTimer(now.Add(time.Minute))}}
		store := New([]Source{src}, WithClock(fixedClock(now)))

		store.Save(activeTimer(now.Add(-time.Second)))
		assert.Nil(t, src.state)
	})

	t.Run("inactive_timer", func(t *testing.T) {
		src := &fakeSource{name: "kv"}
		store := New([]Source{src}, WithClock(fixedClock(now)))

		timer := activeTimer(now.Add(time.Minute))
		timer.IsActive = false
		store.Save(timer)
		assert.Equal(t, 0, src.saves)
		assert.Equal(t, 1, src.clears)
	})
}

func TestSaveDebounce(t *testing.T) {
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	now := base
	src := &fakeSource{name: "kv"}
	store := New([]Source{src},
		WithClock(func() time.Time { return now }),
		WithDebounce(5*time.Second))

	store.Save(activeTimer(base.Add(time.Hour)))
	assert.Equal(t, 1, src.saves)

	// Inside the window: dropped
	now = base.Add(2 * time.Second)
	store.Save(activeTimer(base.Add(time.Hour)))
	assert.Equal(t, 1, src.saves)

	// Past the window: written
	now = base.Add(6 * time.Second)
	store.Save(activeTimer(base.Add(time.Hour)))
	assert.Equal(t, 2, src.saves)
}

func TestClearBypassesDebounce(t *testing.T) {
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{name: "kv"}
	store := New([]Source{src},
		WithClock(fixedClock(base)),
		WithDebounce(time.Hour))

	store.Save(activeTimer(base.Add(time.Hour)))
	require.NotNil(t, src.state)

	// Debounce window is still open, but a clear goes through
	store.Save(nil)
	assert.Nil(t, src.state)
}

func TestSaveErrorDoesNotStopOtherSources(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	failing := &fakeSource{name: "file", saveErr: errors.New("disk full")}
	healthy := &fakeSource{name: "kv"}
	store := New([]Source{failing, healthy}, WithClock(fixedClock(now)))

	store.Save(activeTimer(now.Add(time.Minute)))
	require.NotNil(t, healthy.state)
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoadPrefersLaterEndTime(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	early := activeTimer(now.Add(time.Minute))
	late := activeTimer(now.Add(10 * time.Minute))

	a := &fakeSource{name: "file", state: &model.TimerState{Timer: early}}
	b := &fakeSource{name: "kv", state: &model.TimerState{Timer: late}}
	store := New([]Source{a, b}, WithClock(fixedClock(now)))

	got := store.Load()
	require.NotNil(t, got)
	assert.Equal(t, late.ID, got.ID)
}

func TestLoadClearsStaleRecords(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	stale := &fakeSource{name: "file", state: &model.TimerState{Timer: activeTimer(now.Add(-time.Minute))}}
	fresh := &fakeSource{name: "kv", state: &model.TimerState{Timer: activeTimer(now.Add(time.Minute))}}
	store := New([]Source{stale, fresh}, WithClock(fixedClock(now)))

	got := store.Load()
	require.NotNil(t, got)
	assert.Nil(t, stale.state)
	assert.Equal(t, 1, stale.clears)
}

func TestLoadClearsCorruptSource(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	corrupt := &fakeSource{name: "file", loadErr: errors.New("bad json")}
	store := New([]Source{corrupt}, WithClock(fixedClock(now)))

	assert.Nil(t, store.Load())
	assert.Equal(t, 1, corrupt.clears)
}

func TestLoadEmpty(t *testing.T) {
	store := New([]Source{&fakeSource{name: "kv"}})
	assert.Nil(t, store.Load())
}
