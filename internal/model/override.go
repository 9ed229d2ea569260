package model

import "time"

// DefaultTimerDurationSeconds is the treatment timer duration used when no
// room override is active (15 minutes).
const DefaultTimerDurationSeconds = 900

// DefaultSnoozeDurationSeconds is the default snooze extension (5 minutes).
const DefaultSnoozeDurationSeconds = 300

// TreatmentTimerOverride is a room-wide, super-admin-configurable override
// of the default timer duration. Created lazily with defaults.
type TreatmentTimerOverride struct {
	Enabled         bool `json:"enabled"`
	DurationSeconds int  `json:"durationSeconds"`
}

// NewTreatmentTimerOverride returns a disabled override carrying the
// default duration.
func NewTreatmentTimerOverride() *TreatmentTimerOverride {
	return &TreatmentTimerOverride{
		Enabled:         false,
		DurationSeconds: DefaultTimerDurationSeconds,
	}
}

// EffectiveDuration returns the duration a new timer should run for:
// the override value when enabled, the default otherwise.
func (o *TreatmentTimerOverride) EffectiveDuration() time.Duration {
	if o != nil && o.Enabled && o.DurationSeconds > 0 {
		return time.Duration(o.DurationSeconds) * time.Second
	}
	return DefaultTimerDurationSeconds * time.Second
}
