// Package activity mirrors timer progress into per-member presence
// records and a local display surface. Pure presentation sync: nothing
// here feeds back into timer decisions.
package activity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/treatclock/treatclock/internal/logging"
	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/remote"
)

// Display is a local progress surface for the foreground room's timer.
// The TUI implements it; a headless run uses NopDisplay.
type Display interface {
	ShowTimer(t *model.TreatmentTimer)
	UpdateRemaining(t *model.TreatmentTimer, remaining time.Duration)
	ClearTimer()
}

// NopDisplay ignores all display calls.
type NopDisplay struct{}

func (NopDisplay) ShowTimer(*model.TreatmentTimer)                      {}
func (NopDisplay) UpdateRemaining(*model.TreatmentTimer, time.Duration) {}
func (NopDisplay) ClearTimer()                                          {}

// Record is one member's published live activity.
type Record struct {
	ActivityID string    `json:"activityId"`
	TimerID    string    `json:"timerId"`
	EndTime    time.Time `json:"endTime"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Mirror publishes this user's live activity existence to the shared
// store so other devices in the room can reflect progress.
type Mirror struct {
	client remote.Client
	userID string
}

// NewMirror creates a mirror publishing as the given user.
func NewMirror(client remote.Client, userID string) *Mirror {
	return &Mirror{client: client, userID: userID}
}

// Publish writes this user's activity record for the room's timer.
// Publish failures are logged and dropped: presence is best effort.
func (m *Mirror) Publish(roomID string, t *model.TreatmentTimer) {
	rec := Record{
		ActivityID: uuid.New().String(),
		TimerID:    t.ID,
		EndTime:    t.EndTime,
		UpdatedAt:  time.Now(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		logging.Error("activity record encode failed", logging.KeyError, err)
		return
	}
	if err := m.client.Set(remote.ActivityPath(roomID, m.userID), data); err != nil {
		logging.Warn("activity publish failed",
			logging.KeyRoom, roomID,
			logging.KeyError, err)
	}
}

// Clear removes this user's activity record for the room.
func (m *Mirror) Clear(roomID string) {
	if err := m.client.Remove(remote.ActivityPath(roomID, m.userID)); err != nil {
		logging.Warn("activity clear failed",
			logging.KeyRoom, roomID,
			logging.KeyError, err)
	}
}
