package model

import (
	"time"
)

// NotificationType defines the type of notification.
type NotificationType string

// Notification types.
const (
	NotifyTimerDone    NotificationType = "timer_done"
	NotifyTimerSnoozed NotificationType = "timer_snoozed"
	NotifyTest         NotificationType = "test"
)

// Notification represents a notification to be delivered.
type Notification struct {
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Color     int               `json:"color,omitempty"` // Hex color for embeds
}

// NewNotification creates a new notification.
func NewNotification(t NotificationType, title, message string) *Notification {
	return &Notification{
		Type:      t,
		Title:     title,
		Message:   message,
		Fields:    make(map[string]string),
		Timestamp: time.Now(),
	}
}

// WithField adds a field to the notification.
func (n *Notification) WithField(key, value string) *Notification {
	if n.Fields == nil {
		n.Fields = make(map[string]string)
	}
	n.Fields[key] = value
	return n
}

// Notification colors (webhook-embed hex values).
const (
	ColorSuccess = 0x57F287 // Green
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x5865F2 // Blue
)

// DefaultColorForType returns the embed color for a notification type.
func DefaultColorForType(t NotificationType) int {
	switch t {
	case NotifyTimerDone:
		return ColorWarning
	case NotifyTimerSnoozed:
		return ColorInfo
	default:
		return ColorSuccess
	}
}
