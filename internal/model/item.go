package model

import (
	"fmt"
	"strings"
	"time"
)

// Item categories. Only treatment-category items gate the timer.
const (
	CategoryTreatment   = "treatment"
	CategoryMaintenance = "maintenance"
	CategoryOther       = "other"
)

// ValidCategory returns true for a recognized item category.
func ValidCategory(c string) bool {
	switch strings.ToLower(c) {
	case CategoryTreatment, CategoryMaintenance, CategoryOther:
		return true
	}
	return false
}

// Item is a dosing-schedule entry in a room. Treatment-category items are
// the "qualifying items" a running timer is associated with.
type Item struct {
	Key       string    `json:"key"`
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// SetKey sets the database key for this item.
func (i *Item) SetKey(key string) {
	i.Key = key
}

// GetKey returns the database key for this item.
func (i *Item) GetKey() string {
	return i.Key
}

// IsTreatment returns true if the item belongs to the treatment category.
func (i *Item) IsTreatment() bool {
	return strings.EqualFold(i.Category, CategoryTreatment)
}

// GenerateItemKey generates a database key for an item, scoped by room so
// a room's items are a single prefix scan.
func GenerateItemKey(roomID, itemID string) string {
	return fmt.Sprintf("%s:%s:%s", PrefixItem, roomID, itemID)
}

// ItemKeyPrefix returns the scan prefix for all items in a room.
func ItemKeyPrefix(roomID string) string {
	return fmt.Sprintf("%s:%s:", PrefixItem, roomID)
}
