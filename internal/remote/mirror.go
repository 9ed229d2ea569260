package remote

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/treatclock/treatclock/internal/model"
)

// TimerMirror is the per-room view of the shared timer record.
type TimerMirror struct {
	client Client
	roomID string
}

// NewTimerMirror creates a mirror for one room's timer.
func NewTimerMirror(client Client, roomID string) *TimerMirror {
	return &TimerMirror{client: client, roomID: roomID}
}

// RoomID returns the room this mirror is scoped to.
func (m *TimerMirror) RoomID() string {
	return m.roomID
}

// Get fetches the room's timer. An absent record returns (nil, nil).
func (m *TimerMirror) Get() (*model.TreatmentTimer, error) {
	data, err := m.client.Get(TimerPath(m.roomID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	timer := &model.TreatmentTimer{}
	if err := json.Unmarshal(data, timer); err != nil {
		return nil, err
	}
	return timer, nil
}

// Set writes the room's timer record, or deletes it when timer is nil.
func (m *TimerMirror) Set(timer *model.TreatmentTimer) error {
	if timer == nil {
		return m.Clear()
	}
	data, err := json.Marshal(timer)
	if err != nil {
		return err
	}
	return m.client.Set(TimerPath(m.roomID), data)
}

// Clear deletes the room's timer record.
func (m *TimerMirror) Clear() error {
	return m.client.Remove(TimerPath(m.roomID))
}

// Watch fires fn on every change to the room's timer record, nil for
// deletions. Undecodable payloads are delivered as nil as well: a record
// we cannot read is a record we do not have.
func (m *TimerMirror) Watch(ctx context.Context, fn func(*model.TreatmentTimer)) (CancelFunc, error) {
	return m.client.Watch(ctx, TimerPath(m.roomID), func(value []byte) {
		if value == nil {
			fn(nil)
			return
		}
		timer := &model.TreatmentTimer{}
		if err := json.Unmarshal(value, timer); err != nil {
			fn(nil)
			return
		}
		fn(timer)
	})
}

// OverrideMirror is the per-room view of the timer duration override.
type OverrideMirror struct {
	client Client
	roomID string
}

// NewOverrideMirror creates a mirror for one room's override settings.
func NewOverrideMirror(client Client, roomID string) *OverrideMirror {
	return &OverrideMirror{client: client, roomID: roomID}
}

// Get fetches the room's override, creating the default lazily so the
// record always exists once read.
func (m *OverrideMirror) Get() (*model.TreatmentTimerOverride, error) {
	data, err := m.client.Get(OverridePath(m.roomID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			override := model.NewTreatmentTimerOverride()
			if serr := m.Set(override); serr != nil {
				return nil, serr
			}
			return override, nil
		}
		return nil, err
	}

	override := &model.TreatmentTimerOverride{}
	if err := json.Unmarshal(data, override); err != nil {
		return nil, err
	}
	return override, nil
}

// Set writes the room's override record.
func (m *OverrideMirror) Set(override *model.TreatmentTimerOverride) error {
	data, err := json.Marshal(override)
	if err != nil {
		return err
	}
	return m.client.Set(OverridePath(m.roomID), data)
}

// Watch fires fn on every change to the override record.
func (m *OverrideMirror) Watch(ctx context.Context, fn func(*model.TreatmentTimerOverride)) (CancelFunc, error) {
	return m.client.Watch(ctx, OverridePath(m.roomID), func(value []byte) {
		if value == nil {
			fn(model.NewTreatmentTimerOverride())
			return
		}
		override := &model.TreatmentTimerOverride{}
		if err := json.Unmarshal(value, override); err != nil {
			return
		}
		fn(override)
	})
}
