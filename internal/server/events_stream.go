package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/trafficpanel/internal/events"
	"github.com/rs/zerolog"
)

const (
	streamBufferSize  = 100
	heartbeatInterval = 30 * time.Second
)

// EventsStreamHandler streams bus events to the browser as Server-Sent Events.
type EventsStreamHandler struct {
	eventBus *events.Bus
	log      zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler.
func NewEventsStreamHandler(eventBus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		eventBus: eventBus,
		log:      log.With().Str("component", "events_stream").Logger(),
	}
}

// ServeHTTP handles GET /api/events/stream requests (SSE).
// An optional ?types=A,B query narrows the stream.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	typesFilter := r.URL.Query().Get("types")
	eventChan, unsubscribe := subscribe(h.eventBus, parseTypes(typesFilter), h.log)
	defer unsubscribe()

	h.log.Info().Str("types_filter", typesFilter).Msg("Client connected to event stream")

	fmt.Fprintf(w, "data: %s\n\n", encodeEvent(map[string]interface{}{
		"type":    "connected",
		"message": "Connected to event stream",
	}))
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Info().Msg("Client disconnected from event stream")
			return

		case event := <-eventChan:
			payload, err := json.Marshal(events.NewEventWithData(event))
			if err != nil {
				h.log.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to encode event")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprintf(w, "data: %s\n\n", encodeEvent(map[string]interface{}{
				"type":      "heartbeat",
				"timestamp": time.Now().Format(time.RFC3339),
			}))
			flusher.Flush()
		}
	}
}

// subscribe registers a buffered channel for the given types. Events are
// dropped when a client falls behind.
func subscribe(bus *events.Bus, types []events.EventType, log zerolog.Logger) (<-chan *events.Event, func()) {
	eventChan := make(chan *events.Event, streamBufferSize)

	handler := func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			log.Warn().Str("event_type", string(event.Type)).Msg("Event channel full, dropping event")
		}
	}

	ids := make([]events.SubscriptionID, 0, len(types))
	for _, eventType := range types {
		ids = append(ids, bus.Subscribe(eventType, handler))
	}

	return eventChan, func() {
		for _, id := range ids {
			bus.Unsubscribe(id)
		}
	}
}

// parseTypes returns the requested event types, or all of them for an empty filter
func parseTypes(filter string) []events.EventType {
	if strings.TrimSpace(filter) == "" {
		return events.AllEventTypes
	}

	var types []events.EventType
	for _, t := range strings.Split(filter, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, events.EventType(t))
		}
	}
	return types
}

func encodeEvent(event map[string]interface{}) string {
	data, err := json.Marshal(event)
	if err != nil {
		return `{"type":"error","message":"failed to encode event"}`
	}
	return string(data)
}
