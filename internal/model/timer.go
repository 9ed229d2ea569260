package model

import (
	"time"

	"github.com/google/uuid"
)

// TreatmentTimer is the shared countdown that gates reaction observation
// after treatment doses. EndTime is the only authoritative deadline; no
// duration counter is ever decremented.
type TreatmentTimer struct {
	ID                string    `json:"id"`
	IsActive          bool      `json:"isActive"`
	EndTime           time.Time `json:"endTime"`
	AssociatedItemIDs []string  `json:"associatedItemIds"`
	NotificationIDs   []string  `json:"notificationIds,omitempty"`
	// RoomName is the display label captured when the timer started.
	// It is used in notification text and never re-looked-up.
	RoomName string `json:"roomName,omitempty"`
}

// NewTreatmentTimer creates a timer with a fresh id ending at end.
func NewTreatmentTimer(end time.Time, itemIDs []string, roomName string) *TreatmentTimer {
	return &TreatmentTimer{
		ID:                uuid.New().String(),
		IsActive:          true,
		EndTime:           end,
		AssociatedItemIDs: itemIDs,
		RoomName:          roomName,
	}
}

// IsEffective returns true if the timer counts as running at the given
// instant. Inactive or expired timers mean "no timer".
func (t *TreatmentTimer) IsEffective(now time.Time) bool {
	if t == nil {
		return false
	}
	return t.IsActive && t.EndTime.After(now)
}

// Remaining returns the time left on the timer, never negative.
func (t *TreatmentTimer) Remaining(now time.Time) time.Duration {
	if t == nil {
		return 0
	}
	d := t.EndTime.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Clone returns a deep copy of the timer.
func (t *TreatmentTimer) Clone() *TreatmentTimer {
	if t == nil {
		return nil
	}
	c := *t
	c.AssociatedItemIDs = append([]string(nil), t.AssociatedItemIDs...)
	c.NotificationIDs = append([]string(nil), t.NotificationIDs...)
	return &c
}

// TimerState is the persisted envelope around a timer. A present envelope
// with a nil Timer is a valid "no timer" record, distinct from a missing
// or unreadable one.
type TimerState struct {
	Timer *TreatmentTimer `json:"timer"`
}
