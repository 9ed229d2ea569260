package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRuntimeConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()

	assert.Equal(t, 15*time.Minute, cfg.Timer.DefaultDuration)
	assert.Equal(t, 5*time.Minute, cfg.Timer.SnoozeDuration)
	assert.Equal(t, time.Second, cfg.Timer.MinScheduleDelay)
	assert.Equal(t, time.Second, cfg.Timer.TickInterval)
	assert.Equal(t, 5*time.Second, cfg.LocalStore.SaveDebounce)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.NotEmpty(t, cfg.RetryQueue.BackoffSchedule)
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("valid_overrides", func(t *testing.T) {
		t.Setenv("TREATCLOCK_DEFAULT_DURATION", "30m")
		t.Setenv("TREATCLOCK_SNOOZE_DURATION", "90s")
		t.Setenv("TREATCLOCK_SAVE_DEBOUNCE", "10s")
		t.Setenv("TREATCLOCK_HTTP_MAX_RETRIES", "5")

		cfg := DefaultRuntimeConfig()
		cfg.LoadFromEnv()

		assert.Equal(t, 30*time.Minute, cfg.Timer.DefaultDuration)
		assert.Equal(t, 90*time.Second, cfg.Timer.SnoozeDuration)
		assert.Equal(t, 10*time.Second, cfg.LocalStore.SaveDebounce)
		assert.Equal(t, 5, cfg.HTTP.MaxRetries)
	})

	t.Run("invalid_values_are_ignored", func(t *testing.T) {
		t.Setenv("TREATCLOCK_DEFAULT_DURATION", "not-a-duration")
		t.Setenv("TREATCLOCK_SNOOZE_DURATION", "-5m")
		t.Setenv("TREATCLOCK_HTTP_MAX_RETRIES", "-1")

		cfg := DefaultRuntimeConfig()
		cfg.LoadFromEnv()

		assert.Equal(t, 15*time.Minute, cfg.Timer.DefaultDuration)
		assert.Equal(t, 5*time.Minute, cfg.Timer.SnoozeDuration)
		assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	})

	t.Run("unset_keeps_defaults", func(t *testing.T) {
		cfg := DefaultRuntimeConfig()
		cfg.LoadFromEnv()
		assert.Equal(t, DefaultRuntimeConfig().Timer, cfg.Timer)
	})
}
