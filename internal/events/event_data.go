package events

import (
	"encoding/json"
	"time"
)

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// ConnectivityChangedData contains data for ConnectivityChanged events
type ConnectivityChangedData struct {
	Online    bool   `json:"online"`
	Previous  string `json:"previous"`
	Timestamp string `json:"timestamp"`
}

// EventType returns the event type for ConnectivityChangedData
func (d *ConnectivityChangedData) EventType() EventType {
	return ConnectivityChanged
}

// IndicatorChangedData contains data for IndicatorChanged events
type IndicatorChangedData struct {
	Text    string `json:"text"`
	Visible bool   `json:"visible"`
}

// EventType returns the event type for IndicatorChangedData
func (d *IndicatorChangedData) EventType() EventType {
	return IndicatorChanged
}

// ToastRaisedData contains data for ToastRaised events
type ToastRaisedData struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// EventType returns the event type for ToastRaisedData
func (d *ToastRaisedData) EventType() EventType {
	return ToastRaised
}

// FormUpdatedData contains data for FormUpdated events
type FormUpdatedData struct {
	GreenDuration     string `json:"greenDuration"`
	YellowDuration    string `json:"yellowDuration"`
	YellowRedDuration string `json:"yellowRedDuration"`
	RedLower          string `json:"redLower"`
	RedUpper          string `json:"redUpper"`
}

// EventType returns the event type for FormUpdatedData
func (d *FormUpdatedData) EventType() EventType {
	return FormUpdated
}

// SwitchChangedData contains data for SwitchChanged events
type SwitchChangedData struct {
	On bool `json:"on"`
}

// EventType returns the event type for SwitchChangedData
func (d *SwitchChangedData) EventType() EventType {
	return SwitchChanged
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// EventWithData represents an event with typed data, as sent over the WebSocket stream
type EventWithData struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// NewEventWithData builds the typed wire form of an event
func NewEventWithData(event *Event) *EventWithData {
	data := event.GetTypedData()
	if data == nil {
		data = &GenericEventData{Type: event.Type, Data: event.Data}
	}
	return &EventWithData{
		Type:      event.Type,
		Timestamp: event.Timestamp,
		Module:    event.Module,
		Data:      data,
	}
}

// MarshalJSON customizes JSON serialization for EventWithData
func (e *EventWithData) MarshalJSON() ([]byte, error) {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if e.Data != nil {
		dataBytes, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		aux.Data = dataBytes
	}

	return json.Marshal(aux)
}

// UnmarshalJSON customizes JSON deserialization for EventWithData
func (e *EventWithData) UnmarshalJSON(data []byte) error {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if len(aux.Data) == 0 || string(aux.Data) == "null" {
		return nil
	}

	var eventData EventData
	switch aux.Type {
	case ConnectivityChanged:
		eventData = &ConnectivityChangedData{}
	case IndicatorChanged:
		eventData = &IndicatorChangedData{}
	case ToastRaised:
		eventData = &ToastRaisedData{}
	case FormUpdated:
		eventData = &FormUpdatedData{}
	case SwitchChanged:
		eventData = &SwitchChangedData{}
	case ErrorOccurred:
		eventData = &ErrorEventData{}
	default:
		eventData = &GenericEventData{Type: aux.Type}
	}

	if err := json.Unmarshal(aux.Data, eventData); err != nil {
		return err
	}
	e.Data = eventData
	return nil
}

// GenericEventData is a fallback for events that don't have a specific type
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the event type for GenericEventData
func (d *GenericEventData) EventType() EventType {
	return d.Type
}

// MarshalJSON customizes JSON serialization for GenericEventData
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// UnmarshalJSON customizes JSON deserialization for GenericEventData
func (d *GenericEventData) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Data)
}
