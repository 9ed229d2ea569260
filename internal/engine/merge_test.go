package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/treatclock/treatclock/internal/model"
)

func TestMerge(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	valid := func(end time.Time) *model.TreatmentTimer {
		return model.NewTreatmentTimer(end, nil, "")
	}

	t.Run("both_nil", func(t *testing.T) {
		assert.Nil(t, merge(nil, nil, now))
	})

	t.Run("only_local_valid", func(t *testing.T) {
		local := valid(now.Add(time.Minute))
		assert.Same(t, local, merge(local, nil, now))
	})

	t.Run("only_remote_valid", func(t *testing.T) {
		remote := valid(now.Add(time.Minute))
		assert.Same(t, remote, merge(nil, remote, now))
	})

	t.Run("later_local_wins", func(t *testing.T) {
		local := valid(now.Add(10 * time.Minute))
		remote := valid(now.Add(5 * time.Minute))
		assert.Same(t, local, merge(local, remote, now))
	})

	t.Run("later_remote_wins", func(t *testing.T) {
		local := valid(now.Add(5 * time.Minute))
		remote := valid(now.Add(10 * time.Minute))
		assert.Same(t, remote, merge(local, remote, now))
	})

	t.Run("tie_prefers_remote", func(t *testing.T) {
		end := now.Add(5 * time.Minute)
		local := valid(end)
		remote := valid(end)
		assert.Same(t, remote, merge(local, remote, now))
	})

	t.Run("expired_local_never_wins", func(t *testing.T) {
		local := valid(now.Add(-time.Second))
		remote := valid(now.Add(time.Minute))
		assert.Same(t, remote, merge(local, remote, now))
	})

	t.Run("inactive_remote_never_wins", func(t *testing.T) {
		local := valid(now.Add(time.Minute))
		remote := valid(now.Add(10 * time.Minute))
		remote.IsActive = false
		assert.Same(t, local, merge(local, remote, now))
	})

	t.Run("both_stale_is_no_timer", func(t *testing.T) {
		local := valid(now.Add(-time.Minute))
		remote := valid(now.Add(-time.Second))
		assert.Nil(t, merge(local, remote, now))
	})
}
