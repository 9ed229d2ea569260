package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		valid bool
	}{
		{"15m", 15 * time.Minute, true},
		{"900s", 900 * time.Second, true},
		{"1h", time.Hour, true},
		{"1h30m", 90 * time.Minute, true},
		{"2.5h", 150 * time.Minute, true},
		{"10 minutes", 10 * time.Minute, true},
		{"1 hour 30 minutes", 90 * time.Minute, true},
		{"45 sec", 45 * time.Second, true},
		{"  20m  ", 20 * time.Minute, true},
		{"15M", 15 * time.Minute, true},

		// Bare numbers are minutes
		{"15", 15 * time.Minute, true},

		{"", 0, false},
		{"abc", 0, false},
		{"0", 0, false},
		{"-5m", 0, false},
		{"m", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDuration(tt.input)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Duration)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Run("now", func(t *testing.T) {
		got := ParseTimestamp("now")
		assert.NoError(t, got.Error)
		assert.WithinDuration(t, time.Now(), got.Time, time.Second)
	})

	t.Run("empty_is_now", func(t *testing.T) {
		got := ParseTimestamp("")
		assert.NoError(t, got.Error)
		assert.WithinDuration(t, time.Now(), got.Time, time.Second)
	})

	t.Run("relative", func(t *testing.T) {
		got := ParseTimestamp("in 20 minutes")
		assert.NoError(t, got.Error)
		assert.WithinDuration(t, time.Now().Add(20*time.Minute), got.Time, time.Minute)
	})

	t.Run("clock_time", func(t *testing.T) {
		got := ParseTimestamp("14:30")
		assert.NoError(t, got.Error)
		assert.Equal(t, 14, got.Time.Hour())
		assert.Equal(t, 30, got.Time.Minute())
	})

	t.Run("garbage", func(t *testing.T) {
		got := ParseTimestamp("definitely not a time")
		assert.Error(t, got.Error)
	})
}
