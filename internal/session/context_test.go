package session

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/remote"
	"github.com/treatclock/treatclock/internal/storage"
)

func setupSession(t *testing.T) (*Context, *storage.DB) {
	t.Helper()

	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	shared, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		shared.Close()
		db.Close()
	})

	sess := New(
		storage.NewRoomRepo(db),
		storage.NewItemRepo(db),
		storage.NewDoseLogRepo(db),
		storage.NewStateRepo(db),
		remote.NewBadgerClient(shared),
	)
	return sess, db
}

func TestCurrentRoomID(t *testing.T) {
	sess, db := setupSession(t)
	state := storage.NewStateRepo(db)

	assert.Empty(t, sess.CurrentRoomID())

	require.NoError(t, state.SetActiveRoom("r1"))
	assert.Equal(t, "r1", sess.CurrentRoomID())

	require.NoError(t, state.ClearActiveRoom())
	assert.Empty(t, sess.CurrentRoomID())
}

func TestRoomName(t *testing.T) {
	sess, db := setupSession(t)
	rooms := storage.NewRoomRepo(db)

	room, err := rooms.Create("Family", "u1", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "Family", sess.RoomName(room.ID))
	// Unknown rooms fall back to the id
	assert.Equal(t, "ghost", sess.RoomName("ghost"))
}

func TestQualifyingItemsForToday(t *testing.T) {
	sess, db := setupSession(t)
	items := storage.NewItemRepo(db)
	logs := storage.NewDoseLogRepo(db)

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	sess.SetClock(func() time.Time { return now })

	peanut, err := items.Create("r1", "peanut", model.CategoryTreatment)
	require.NoError(t, err)
	milk, err := items.Create("r1", "milk", model.CategoryTreatment)
	require.NoError(t, err)
	_, err = items.Create("r1", "vitamins", model.CategoryMaintenance)
	require.NoError(t, err)

	t.Run("all_unlogged", func(t *testing.T) {
		unlogged, err := sess.QualifyingItemsForToday("r1")
		require.NoError(t, err)
		require.Len(t, unlogged, 2)
		assert.True(t, sort.StringsAreSorted(unlogged))
	})

	t.Run("logged_items_drop_out", func(t *testing.T) {
		_, err := logs.Log("r1", peanut.ID, "u1", now)
		require.NoError(t, err)

		unlogged, err := sess.QualifyingItemsForToday("r1")
		require.NoError(t, err)
		assert.Equal(t, []string{milk.ID}, unlogged)
	})

	t.Run("yesterdays_logs_do_not_count", func(t *testing.T) {
		sess.SetClock(func() time.Time { return now.AddDate(0, 0, 1) })
		defer sess.SetClock(func() time.Time { return now })

		unlogged, err := sess.QualifyingItemsForToday("r1")
		require.NoError(t, err)
		assert.Len(t, unlogged, 2)
	})

	t.Run("all_logged_is_empty", func(t *testing.T) {
		_, err := logs.Log("r1", milk.ID, "u1", now)
		require.NoError(t, err)

		unlogged, err := sess.QualifyingItemsForToday("r1")
		require.NoError(t, err)
		assert.Empty(t, unlogged)
	})
}

func TestEffectiveDuration(t *testing.T) {
	sess, db := setupSession(t)
	_ = db

	t.Run("no_override_uses_default", func(t *testing.T) {
		assert.Equal(t, 15*time.Minute, sess.EffectiveDuration("r1"))
	})

	t.Run("enabled_override_wins", func(t *testing.T) {
		require.NoError(t, remote.NewOverrideMirror(sess.client, "r1").Set(
			&model.TreatmentTimerOverride{Enabled: true, DurationSeconds: 60}))
		assert.Equal(t, time.Minute, sess.EffectiveDuration("r1"))
	})

	t.Run("disabled_override_uses_default", func(t *testing.T) {
		require.NoError(t, remote.NewOverrideMirror(sess.client, "r1").Set(
			&model.TreatmentTimerOverride{Enabled: false, DurationSeconds: 60}))
		assert.Equal(t, 15*time.Minute, sess.EffectiveDuration("r1"))
	})
}
