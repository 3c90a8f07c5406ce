package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/trafficpanel/internal/events"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

const socketWriteTimeout = 5 * time.Second

// EventsSocketHandler pushes bus events over a websocket. It carries the same
// payloads as the SSE stream for clients that prefer a socket.
type EventsSocketHandler struct {
	eventBus *events.Bus
	log      zerolog.Logger
}

// NewEventsSocketHandler creates a new websocket events handler
func NewEventsSocketHandler(eventBus *events.Bus, log zerolog.Logger) *EventsSocketHandler {
	return &EventsSocketHandler{
		eventBus: eventBus,
		log:      log.With().Str("component", "events_socket").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws
func (h *EventsSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	eventChan, unsubscribe := subscribe(h.eventBus, parseTypes(r.URL.Query().Get("types")), h.log)
	defer unsubscribe()

	// The panel never sends anything; CloseRead handles control frames and
	// cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	h.log.Info().Msg("Client connected to event socket")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event socket")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event := <-eventChan:
			payload, err := json.Marshal(events.NewEventWithData(event))
			if err != nil {
				h.log.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to encode event")
				continue
			}
			if err := h.write(ctx, conn, payload); err != nil {
				h.log.Debug().Err(err).Msg("Websocket write failed")
				return
			}

		case <-heartbeat.C:
			pingCtx, cancel := context.WithTimeout(ctx, socketWriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("Websocket ping failed")
				return
			}
		}
	}
}

func (h *EventsSocketHandler) write(ctx context.Context, conn *websocket.Conn, payload []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, socketWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, payload)
}
