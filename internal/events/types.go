// Package events provides the in-process event bus used to push panel changes to the browser.
package events

import "time"

// EventType identifies a kind of event
type EventType string

const (
	// ConnectivityChanged is emitted when the controller goes online or offline
	ConnectivityChanged EventType = "CONNECTIVITY_CHANGED"
	// IndicatorChanged is emitted when the footer indicator text or visibility changes
	IndicatorChanged EventType = "INDICATOR_CHANGED"
	// ToastRaised is emitted for every notification shown to the operator
	ToastRaised EventType = "TOAST_RAISED"
	// FormUpdated is emitted when the timing form is populated from the controller
	FormUpdated EventType = "FORM_UPDATED"
	// SwitchChanged is emitted when the on/off switch changes
	SwitchChanged EventType = "SWITCH_CHANGED"
	// ErrorOccurred is emitted for internal failures that are not shown as toasts
	ErrorOccurred EventType = "ERROR_OCCURRED"
)

// AllEventTypes lists every event type streamed to clients
var AllEventTypes = []EventType{
	ConnectivityChanged,
	IndicatorChanged,
	ToastRaised,
	FormUpdated,
	SwitchChanged,
	ErrorOccurred,
}

// Event is a single published event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Module    string                 `json:"module"`
	Data      map[string]interface{} `json:"data,omitempty"`

	typed EventData
}

// GetTypedData returns the typed payload if the event was emitted with one
func (e *Event) GetTypedData() EventData {
	return e.typed
}
