package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/trafficpanel/internal/events"
	"github.com/aristath/trafficpanel/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store persists toasts
type Store interface {
	Insert(ctx context.Context, toast Toast) error
	List(ctx context.Context, limit int) ([]Toast, error)
}

// EventEmitter publishes toast events and activity log failures
type EventEmitter interface {
	EmitTyped(eventType events.EventType, module string, data events.EventData)
	EmitError(module string, err error, context map[string]interface{})
}

const defaultBufferSize = 50

// Notifier raises toasts. The most recent ones are kept in memory for the
// panel view, every toast is also written to the activity log.
type Notifier struct {
	store   Store
	emitter EventEmitter
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu     sync.RWMutex
	recent []Toast // oldest first
	size   int
}

// NewNotifier creates a notifier. store, emitter and m may be nil.
func NewNotifier(store Store, emitter EventEmitter, m *metrics.Metrics, bufferSize int, log zerolog.Logger) *Notifier {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Notifier{
		store:   store,
		emitter: emitter,
		metrics: m,
		log:     log.With().Str("component", "notifier").Logger(),
		recent:  make([]Toast, 0, bufferSize),
		size:    bufferSize,
	}
}

// Success raises a success toast
func (n *Notifier) Success(text string) Toast {
	return n.Raise(KindSuccess, text, nil)
}

// Message raises an informational toast
func (n *Notifier) Message(text string) Toast {
	return n.Raise(KindMessage, text, nil)
}

// Error raises an error toast
func (n *Notifier) Error(text string) Toast {
	return n.Raise(KindError, text, nil)
}

// Validation raises a toast listing invalid form fields. details carries the
// per-field reasons into the activity log.
func (n *Notifier) Validation(text string, details map[string]interface{}) Toast {
	return n.Raise(KindValidation, text, details)
}

// Raise records a toast of any kind with optional details
func (n *Notifier) Raise(kind Kind, text string, details map[string]interface{}) Toast {
	toast := Toast{
		ID:        uuid.New().String(),
		Kind:      kind,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Details:   details,
	}

	n.mu.Lock()
	if len(n.recent) == n.size {
		copy(n.recent, n.recent[1:])
		n.recent = n.recent[:n.size-1]
	}
	n.recent = append(n.recent, toast)
	n.mu.Unlock()

	n.log.Info().
		Str("kind", string(kind)).
		Str("text", text).
		Msg("Toast raised")

	if n.metrics != nil {
		n.metrics.ToastsTotal.WithLabelValues(string(kind)).Inc()
	}

	if n.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := n.store.Insert(ctx, toast); err != nil {
			n.log.Error().Err(err).Str("id", toast.ID).Msg("Failed to persist toast")
			if n.emitter != nil {
				n.emitter.EmitError("notifications", err, map[string]interface{}{
					"toast_id": toast.ID,
					"kind":     string(toast.Kind),
				})
			}
		}
		cancel()
	}

	if n.emitter != nil {
		n.emitter.EmitTyped(events.ToastRaised, "notifications", &events.ToastRaisedData{
			ID:        toast.ID,
			Kind:      string(toast.Kind),
			Text:      toast.Text,
			CreatedAt: toast.CreatedAt,
		})
	}

	return toast
}

// Recent returns up to limit in-memory toasts, newest first. limit <= 0 returns all.
func (n *Notifier) Recent(limit int) []Toast {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if limit <= 0 || limit > len(n.recent) {
		limit = len(n.recent)
	}

	result := make([]Toast, 0, limit)
	for i := len(n.recent) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, n.recent[i])
	}
	return result
}

// Latest returns the most recent toast, or nil before the first one
func (n *Notifier) Latest() *Toast {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if len(n.recent) == 0 {
		return nil
	}
	latest := n.recent[len(n.recent)-1]
	return &latest
}

// History reads toasts from the activity log, newest first
func (n *Notifier) History(ctx context.Context, limit int) ([]Toast, error) {
	if n.store == nil {
		return n.Recent(limit), nil
	}
	if limit <= 0 {
		limit = n.size
	}
	return n.store.List(ctx, limit)
}
