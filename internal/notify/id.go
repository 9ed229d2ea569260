// Package notify schedules per-member treatment timer notifications and
// delivers fired ones through configured webhooks.
package notify

import (
	"fmt"
	"strings"
)

// ID identifies one scheduled notification: one timer instance, one room,
// one member. Cancellation compares fields instead of string formats.
type ID struct {
	TimerID string
	RoomID  string
	UserID  string
}

// NewID creates a notification identifier.
func NewID(timerID, roomID, userID string) ID {
	return ID{TimerID: timerID, RoomID: roomID, UserID: userID}
}

// String returns the canonical wire form of the identifier.
func (id ID) String() string {
	return fmt.Sprintf("%s_room_%s_user_%s", id.TimerID, id.RoomID, id.UserID)
}

// Matches reports whether the identifier belongs to the given timer in
// the given room.
func (id ID) Matches(timerID, roomID string) bool {
	return id.TimerID == timerID && id.RoomID == roomID
}

// ParseID parses the canonical wire form. Returns false for strings in
// older or foreign formats; callers fall back to prefix matching for those.
func ParseID(s string) (ID, bool) {
	roomIdx := strings.Index(s, "_room_")
	if roomIdx < 0 {
		return ID{}, false
	}
	rest := s[roomIdx+len("_room_"):]
	userIdx := strings.LastIndex(rest, "_user_")
	if userIdx < 0 {
		return ID{}, false
	}

	id := ID{
		TimerID: s[:roomIdx],
		RoomID:  rest[:userIdx],
		UserID:  rest[userIdx+len("_user_"):],
	}
	if id.TimerID == "" || id.RoomID == "" || id.UserID == "" {
		return ID{}, false
	}
	return id, true
}
