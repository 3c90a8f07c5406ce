package connectivity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aristath/trafficpanel/internal/events"
	"github.com/aristath/trafficpanel/internal/metrics"
	"github.com/aristath/trafficpanel/internal/scheduler"
	"github.com/rs/zerolog"
)

// Prober checks whether the controller answers
type Prober interface {
	Heartbeat(ctx context.Context) error
}

// RetryScheduler runs the offline retry poll
type RetryScheduler interface {
	Every(interval time.Duration, job scheduler.Job) scheduler.EntryID
	Remove(id scheduler.EntryID)
}

// EventEmitter publishes monitor events
type EventEmitter interface {
	EmitTyped(eventType events.EventType, module string, data events.EventData)
}

// Config holds the monitor timings
type Config struct {
	RetryInterval time.Duration
	IndicatorTTL  time.Duration
	ProbeTimeout  time.Duration
}

// Monitor owns the online/offline state. While offline it polls the heartbeat
// until the controller answers again.
type Monitor struct {
	prober  Prober
	sched   RetryScheduler
	emitter EventEmitter
	metrics *metrics.Metrics
	cfg     Config
	log     zerolog.Logger

	// emitMu orders transitions with their events. Taken before mu.
	emitMu sync.Mutex

	mu        sync.Mutex
	state     State
	indicator Indicator
	retryID   scheduler.EntryID
	retrying  bool
	hideTimer *time.Timer
	hideGen   uint64

	probing atomic.Bool
}

// NewMonitor creates a monitor in the unknown state. emitter and m may be nil.
func NewMonitor(prober Prober, sched RetryScheduler, emitter EventEmitter, m *metrics.Metrics, cfg Config, log zerolog.Logger) *Monitor {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 5 * time.Second
	}
	if cfg.IndicatorTTL <= 0 {
		cfg.IndicatorTTL = 7 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = cfg.RetryInterval
	}

	return &Monitor{
		prober:  prober,
		sched:   sched,
		emitter: emitter,
		metrics: m,
		cfg:     cfg,
		log:     log.With().Str("component", "connectivity").Logger(),
		state:   StateUnknown,
	}
}

// SetOnline records the controller state. Repeating the current state is a no-op.
func (m *Monitor) SetOnline(online bool) {
	next := StateOffline
	if online {
		next = StateOnline
	}

	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	if m.state == next {
		m.mu.Unlock()
		return
	}
	previous := m.state
	m.state = next
	m.indicator = Indicator{Text: string(next), Visible: true}
	m.stopHideTimerLocked()

	if online {
		m.stopRetryLocked()
		m.hideGen++
		gen := m.hideGen
		m.hideTimer = time.AfterFunc(m.cfg.IndicatorTTL, func() { m.hideIndicator(gen) })
	} else {
		m.startRetryLocked()
	}
	indicator := m.indicator
	m.mu.Unlock()

	if m.metrics != nil {
		if online {
			m.metrics.ControllerOnline.Set(1)
		} else {
			m.metrics.ControllerOnline.Set(0)
		}
	}

	m.log.Info().
		Str("previous", string(previous)).
		Str("state", string(next)).
		Msg("Controller connectivity changed")

	m.emit(events.ConnectivityChanged, &events.ConnectivityChangedData{
		Online:    online,
		Previous:  string(previous),
		Timestamp: time.Now().Format(time.RFC3339),
	})
	m.emit(events.IndicatorChanged, &events.IndicatorChangedData{
		Text:    indicator.Text,
		Visible: indicator.Visible,
	})
}

// Probe sends one heartbeat and reports whether it succeeded
func (m *Monitor) Probe(ctx context.Context) bool {
	if err := m.prober.Heartbeat(ctx); err != nil {
		m.log.Debug().Err(err).Msg("Heartbeat failed")
		return false
	}
	return true
}

// State returns the current connectivity state
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns state, indicator and retry status together
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{State: m.state, Indicator: m.indicator, Retrying: m.retrying}
}

// Stop cancels the retry poll and the indicator timer
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopRetryLocked()
	m.stopHideTimerLocked()
}

func (m *Monitor) startRetryLocked() {
	if m.retrying || m.sched == nil {
		return
	}
	m.retryID = m.sched.Every(m.cfg.RetryInterval, &retryJob{monitor: m})
	m.retrying = true
	m.log.Debug().Dur("interval", m.cfg.RetryInterval).Msg("Retry poll started")
}

func (m *Monitor) stopRetryLocked() {
	if !m.retrying {
		return
	}
	m.sched.Remove(m.retryID)
	m.retrying = false
	m.log.Debug().Msg("Retry poll stopped")
}

func (m *Monitor) stopHideTimerLocked() {
	if m.hideTimer != nil {
		m.hideTimer.Stop()
		m.hideTimer = nil
	}
}

func (m *Monitor) hideIndicator(gen uint64) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	if gen != m.hideGen || m.state != StateOnline || !m.indicator.Visible {
		m.mu.Unlock()
		return
	}
	m.indicator.Visible = false
	indicator := m.indicator
	m.mu.Unlock()

	m.emit(events.IndicatorChanged, &events.IndicatorChangedData{
		Text:    indicator.Text,
		Visible: indicator.Visible,
	})
}

// retry runs one tick of the offline poll. Ticks that overlap a running probe are skipped.
func (m *Monitor) retry() {
	if !m.probing.CompareAndSwap(false, true) {
		m.log.Debug().Msg("Previous heartbeat still running, skipping tick")
		return
	}
	defer m.probing.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ProbeTimeout)
	defer cancel()

	alive := m.Probe(ctx)
	m.log.Debug().Bool("alive", alive).Msg("sync result")

	if alive {
		m.SetOnline(true)
	}
}

func (m *Monitor) emit(eventType events.EventType, data events.EventData) {
	if m.emitter == nil {
		return
	}
	m.emitter.EmitTyped(eventType, "connectivity", data)
}

type retryJob struct {
	monitor *Monitor
}

func (j *retryJob) Run() error {
	j.monitor.retry()
	return nil
}

func (j *retryJob) Name() string {
	return "controller_heartbeat_retry"
}
