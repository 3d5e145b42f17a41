package models

import "time"

// Event types written to the operational log.
const (
	EventStatusChange    = "STATUS_CHANGE"
	EventError           = "ERROR"
	EventErrorCleared    = "ERROR_CLEARED"
	EventUnavailable     = "UNAVAILABLE"
	EventAvailable       = "AVAILABLE"
	EventSettingsChanged = "SETTINGS_CHANGED"
)

// IsEventType reports whether t is one of the event types above.
func IsEventType(t string) bool {
	switch t {
	case EventStatusChange, EventError, EventErrorCleared, EventUnavailable, EventAvailable, EventSettingsChanged:
		return true
	}
	return false
}

// DeviceEvent is a single log entry.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // STATUS_CHANGE | ERROR | ERROR_CLEARED | UNAVAILABLE | AVAILABLE | SETTINGS_CHANGED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
