package events

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Manager stamps and publishes events on a bus
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a manager publishing to bus
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("component", "event_manager").Logger(),
	}
}

// Emit publishes an untyped event
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	m.publish(&Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Module:    module,
		Data:      data,
	})
}

// EmitTyped publishes an event carrying typed data. The map form of the data is
// derived from its JSON encoding so stream clients see the same field names.
func (m *Manager) EmitTyped(eventType EventType, module string, data EventData) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Module:    module,
		typed:     data,
	}

	raw, err := json.Marshal(data)
	if err != nil {
		m.log.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to encode event data")
	} else if err := json.Unmarshal(raw, &event.Data); err != nil {
		m.log.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to decode event data")
	}

	m.publish(event)
}

// EmitError publishes an ErrorOccurred event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	m.EmitTyped(ErrorOccurred, module, &ErrorEventData{Error: err.Error(), Context: context})
}

func (m *Manager) publish(event *Event) {
	m.log.Debug().
		Str("event_type", string(event.Type)).
		Str("module", event.Module).
		Msg("Emitting event")
	m.bus.Publish(event)
}
