// Package config provides centralized configuration for Treatclock runtime values.
package config

import (
	"os"
	"strconv"
	"time"
)

// RuntimeConfig holds all runtime configuration values that would otherwise
// be scattered as magic numbers throughout the codebase.
type RuntimeConfig struct {
	// Timer configuration
	Timer TimerConfig

	// LocalStore configuration
	LocalStore LocalStoreConfig

	// HTTP client configuration
	HTTP HTTPConfig

	// Retry queue configuration
	RetryQueue RetryQueueConfig
}

// TimerConfig holds treatment timer configuration.
type TimerConfig struct {
	// DefaultDuration is the timer duration when no room override is active.
	// Default: 15m
	DefaultDuration time.Duration

	// SnoozeDuration is the default snooze extension.
	// Default: 5m
	SnoozeDuration time.Duration

	// MinScheduleDelay is the floor on notification scheduling delay; the
	// platform scheduler rejects zero delays.
	// Default: 1s
	MinScheduleDelay time.Duration

	// TickInterval is how often the engine re-evaluates the foreground
	// room's timer for expiry.
	// Default: 1s
	TickInterval time.Duration
}

// LocalStoreConfig holds local timer store configuration.
type LocalStoreConfig struct {
	// SaveDebounce is the minimum interval between persisted saves; save
	// requests inside the window are dropped.
	// Default: 5s
	SaveDebounce time.Duration
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	// Timeout is the default HTTP request timeout.
	// Default: 30s
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3
	MaxRetries int

	// RetryDelays are the delays between retry attempts.
	// Default: [0s, 5s, 30s]
	RetryDelays []time.Duration
}

// RetryQueueConfig holds retry queue configuration.
type RetryQueueConfig struct {
	// CheckInterval is how often the queue checks for ready notifications.
	// Default: 30s
	CheckInterval time.Duration

	// BackoffSchedule is the exponential backoff schedule for failed notifications.
	// Default: [5s, 30s, 2m, 5m, 15m]
	BackoffSchedule []time.Duration
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Timer: TimerConfig{
			DefaultDuration:  15 * time.Minute,
			SnoozeDuration:   5 * time.Minute,
			MinScheduleDelay: time.Second,
			TickInterval:     time.Second,
		},
		LocalStore: LocalStoreConfig{
			SaveDebounce: 5 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryDelays: []time.Duration{
				0,
				5 * time.Second,
				30 * time.Second,
			},
		},
		RetryQueue: RetryQueueConfig{
			CheckInterval: 30 * time.Second,
			BackoffSchedule: []time.Duration{
				5 * time.Second,
				30 * time.Second,
				2 * time.Minute,
				5 * time.Minute,
				15 * time.Minute,
			},
		},
	}
}

// Global is the process-wide runtime configuration.
var Global = DefaultRuntimeConfig()

// LoadFromEnv applies TREATCLOCK_* environment overrides to the config.
func (c *RuntimeConfig) LoadFromEnv() {
	if d, ok := envDuration("TREATCLOCK_DEFAULT_DURATION"); ok {
		c.Timer.DefaultDuration = d
	}
	if d, ok := envDuration("TREATCLOCK_SNOOZE_DURATION"); ok {
		c.Timer.SnoozeDuration = d
	}
	if d, ok := envDuration("TREATCLOCK_TICK_INTERVAL"); ok {
		c.Timer.TickInterval = d
	}
	if d, ok := envDuration("TREATCLOCK_SAVE_DEBOUNCE"); ok {
		c.LocalStore.SaveDebounce = d
	}
	if d, ok := envDuration("TREATCLOCK_HTTP_TIMEOUT"); ok {
		c.HTTP.Timeout = d
	}
	if n, ok := envInt("TREATCLOCK_HTTP_MAX_RETRIES"); ok {
		c.HTTP.MaxRetries = n
	}
}

func envDuration(name string) (time.Duration, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
