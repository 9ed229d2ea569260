// Package remote mirrors timer state through a shared realtime key-path
// store so every device in a room converges on one timer.
package remote

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a path has no record.
var ErrNotFound = errors.New("remote: path not found")

// CancelFunc tears down a watch. Safe to call more than once.
type CancelFunc func()

// Client is the narrow interface over the realtime backend. The wire
// protocol behind it is out of scope; anything that can read, write,
// delete, and watch a key path can serve.
type Client interface {
	// Get reads the record at path. Returns ErrNotFound if absent.
	Get(path string) ([]byte, error)
	// Set writes the record at path.
	Set(path string, value []byte) error
	// Remove deletes the record at path. Removing an absent record is
	// a no-op.
	Remove(path string) error
	// Watch invokes fn with the record value on every write to path,
	// including this client's own writes echoed back. A delete invokes
	// fn with nil. The watch runs until cancelled or ctx is done.
	Watch(ctx context.Context, path string, fn func(value []byte)) (CancelFunc, error)
}

// TimerPath returns the key path of a room's shared timer record.
func TimerPath(roomID string) string {
	return fmt.Sprintf("rooms/%s/treatment_timer", roomID)
}

// OverridePath returns the key path of a room's timer duration override.
func OverridePath(roomID string) string {
	return fmt.Sprintf("rooms/%s/room_settings/treatment_timer_override", roomID)
}

// ActivityPath returns the key path of one member's live activity record.
func ActivityPath(roomID, userID string) string {
	return fmt.Sprintf("rooms/%s/live_activity/%s", roomID, userID)
}
