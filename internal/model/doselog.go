package model

import (
	"fmt"
	"time"
)

// DateLayout is the day-granularity layout used for dose log keys.
const DateLayout = "2006-01-02"

// DoseLog records that an item was consumed on a given day. At most one
// log exists per item per day; un-logging deletes the record.
type DoseLog struct {
	Key      string    `json:"key"`
	RoomID   string    `json:"room_id"`
	ItemID   string    `json:"item_id"`
	Date     string    `json:"date"`
	UserID   string    `json:"user_id,omitempty"`
	LoggedAt time.Time `json:"logged_at"`
}

// SetKey sets the database key for this dose log.
func (d *DoseLog) SetKey(key string) {
	d.Key = key
}

// GetKey returns the database key for this dose log.
func (d *DoseLog) GetKey() string {
	return d.Key
}

// NewDoseLog creates a log entry for the given item on the given day.
func NewDoseLog(roomID, itemID, userID string, day time.Time) *DoseLog {
	date := day.Format(DateLayout)
	return &DoseLog{
		Key:      GenerateDoseLogKey(roomID, date, itemID),
		RoomID:   roomID,
		ItemID:   itemID,
		Date:     date,
		UserID:   userID,
		LoggedAt: time.Now(),
	}
}

// GenerateDoseLogKey generates a database key for a dose log. Keys are
// scoped room-then-date so "today's logs for room X" is one prefix scan.
func GenerateDoseLogKey(roomID, date, itemID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", PrefixDoseLog, roomID, date, itemID)
}

// DoseLogKeyPrefix returns the scan prefix for a room's logs on one day.
func DoseLogKeyPrefix(roomID, date string) string {
	return fmt.Sprintf("%s:%s:%s:", PrefixDoseLog, roomID, date)
}
