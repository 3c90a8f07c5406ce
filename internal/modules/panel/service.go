package panel

import (
	"context"
	"errors"
	"sync"

	"github.com/aristath/trafficpanel/internal/clients/controller"
	"github.com/aristath/trafficpanel/internal/domain"
	"github.com/aristath/trafficpanel/internal/events"
	"github.com/aristath/trafficpanel/internal/modules/connectivity"
	"github.com/aristath/trafficpanel/internal/modules/notifications"
	"github.com/rs/zerolog"
)

// Connectivity is the part of the connectivity monitor the panel drives
type Connectivity interface {
	SetOnline(online bool)
	Probe(ctx context.Context) bool
	Snapshot() connectivity.Snapshot
}

// EventEmitter publishes panel events
type EventEmitter interface {
	EmitTyped(eventType events.EventType, module string, data events.EventData)
}

// Service runs the panel operations. Operations are serialized so a sync
// never interleaves with an update.
type Service struct {
	client   domain.ControllerClient
	monitor  Connectivity
	notifier *notifications.Notifier
	emitter  EventEmitter
	log      zerolog.Logger

	opMu sync.Mutex

	mu   sync.RWMutex
	form domain.Form
	on   bool
}

// NewService creates the panel service. emitter may be nil.
func NewService(
	client domain.ControllerClient,
	monitor Connectivity,
	notifier *notifications.Notifier,
	emitter EventEmitter,
	log zerolog.Logger,
) *Service {
	return &Service{
		client:   client,
		monitor:  monitor,
		notifier: notifier,
		emitter:  emitter,
		log:      log.With().Str("service", "panel").Logger(),
	}
}

// Sync checks the heartbeat and, when the controller answers, reloads the
// configuration and then the running state. It reports whether a
// configuration was loaded; without one the running state is not asked for.
func (s *Service) Sync(ctx context.Context) (bool, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	alive := s.monitor.Probe(ctx)
	s.monitor.SetOnline(alive)
	if !alive {
		s.notifier.Error(string(domain.MsgNoConnection))
		return false, domain.MsgNoConnection
	}

	loaded, err := s.loadConfig(ctx)
	if err != nil || !loaded {
		return false, err
	}
	return true, s.loadRunningState(ctx)
}

// LoadConfig fetches the stored configuration into the form and reports
// whether the controller had one
func (s *Service) LoadConfig(ctx context.Context) (bool, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	return s.loadConfig(ctx)
}

// LoadRunningState fetches whether the lights are running into the switch
func (s *Service) LoadRunningState(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	return s.loadRunningState(ctx)
}

// Update validates the form, stores it on the controller and then starts or
// stops the lights according to the switch.
func (s *Service) Update(ctx context.Context, form domain.Form, on bool) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.form = form
	s.mu.Unlock()
	s.setSwitch(on)

	cfg, err := form.Parse()
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.notifier.Validation(domain.InvalidFieldsReport(verr.Fields), fieldDetails(verr.Fields))
		}
		s.log.Debug().Err(err).Msg("Some fields seem to be invalid")
		return err
	}

	if err := s.client.SaveConfig(ctx, cfg); err != nil {
		if controller.IsUnreachable(err) {
			return s.fail(domain.MsgNoConnection)
		}
		s.log.Warn().Err(err).Msg("Controller rejected configuration")
		return s.fail(domain.MsgUpdateFailed)
	}

	ack, err := s.toggle(ctx, on)
	if err != nil {
		return err
	}

	switch {
	case ack.Silent:
		s.succeed(domain.MsgConfigUpdated)
	case on:
		s.succeed(domain.MsgUpdatedAndStarted)
	default:
		s.succeed(domain.MsgUpdatedAndStopped)
	}
	return nil
}

// Switch starts or stops the lights without sending the form
func (s *Service) Switch(ctx context.Context, on bool) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setSwitch(on)
	if _, err := s.toggle(ctx, on); err != nil {
		return err
	}

	if on {
		s.succeed(domain.MsgStarted)
	} else {
		s.succeed(domain.MsgStopped)
	}
	return nil
}

// toggle calls /start or /stop and maps failures to the catalog
func (s *Service) toggle(ctx context.Context, on bool) (domain.Ack, error) {
	call, operation := s.client.Stop, "stopped"
	if on {
		call, operation = s.client.Start, "started"
	}

	ack, err := call(ctx)
	if err != nil {
		switch {
		case controller.IsUnreachable(err):
			return ack, s.fail(domain.MsgNoConnection)
		case controller.StatusCode(err) == 500:
			return ack, s.fail(domain.MsgOnOffFailed)
		default:
			s.log.Warn().Err(err).Str("operation", operation).Msg("Unexpected start/stop answer")
			return ack, s.fail(domain.MsgUnexpectedStartStop)
		}
	}
	return ack, nil
}

// SetSwitch changes the on/off switch without contacting the controller
func (s *Service) SetSwitch(on bool) {
	s.setSwitch(on)
}

// Form returns the current form values
func (s *Service) Form() domain.Form {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.form
}

// On returns the switch position
func (s *Service) On() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.on
}

// State returns a snapshot of the panel
func (s *Service) State() State {
	s.mu.RLock()
	form, on := s.form, s.on
	s.mu.RUnlock()

	return State{
		Form:         form,
		On:           on,
		Connectivity: s.monitor.Snapshot(),
		LatestToast:  s.notifier.Latest(),
	}
}

// loadConfig reports whether a configuration was loaded. A missing
// configuration is a hint, not an error.
func (s *Service) loadConfig(ctx context.Context) (bool, error) {
	cfg, err := s.client.GetConfig(ctx)
	switch {
	case errors.Is(err, controller.ErrNoConfiguration):
		s.notifier.Message(string(domain.MsgNoCurrentConfig))
		return false, nil
	case controller.IsUnreachable(err):
		return false, s.fail(domain.MsgNoConnection)
	case err != nil:
		s.log.Warn().Err(err).Msg("Failed to load configuration")
		return false, s.fail(domain.MsgUnexpectedUpdate)
	}

	form := domain.FormFromConfig(*cfg)
	s.mu.Lock()
	s.form = form
	s.mu.Unlock()

	s.emit(events.FormUpdated, &events.FormUpdatedData{
		GreenDuration:     form.GreenDuration,
		YellowDuration:    form.YellowDuration,
		YellowRedDuration: form.YellowRedDuration,
		RedLower:          form.RedLower,
		RedUpper:          form.RedUpper,
	})

	s.succeed(domain.MsgConfigLoaded)
	return true, nil
}

func (s *Service) loadRunningState(ctx context.Context) error {
	running, err := s.client.Running(ctx)
	if err != nil {
		var statusErr *controller.StatusError
		switch {
		case controller.IsUnreachable(err):
			return s.fail(domain.MsgNoConnection)
		case errors.As(err, &statusErr) && !statusErr.Successful():
			return s.fail(domain.MsgControllerDown)
		default:
			return s.fail(domain.MsgUnexpectedUpdate)
		}
	}

	s.setSwitch(running)
	return nil
}

func (s *Service) setSwitch(on bool) {
	s.mu.Lock()
	changed := s.on != on
	s.on = on
	s.mu.Unlock()

	if changed {
		s.emit(events.SwitchChanged, &events.SwitchChangedData{On: on})
	}
}

// fail shows an error toast. Losing the connection also flips the panel offline.
func (s *Service) fail(msg domain.Message) error {
	s.notifier.Error(string(msg))
	if msg == domain.MsgNoConnection {
		s.monitor.SetOnline(false)
	}
	return msg
}

// succeed shows a success toast. Any success proves the controller is reachable.
func (s *Service) succeed(msg domain.Message) {
	s.notifier.Success(string(msg))
	s.monitor.SetOnline(true)
}

func (s *Service) emit(eventType events.EventType, data events.EventData) {
	if s.emitter == nil {
		return
	}
	s.emitter.EmitTyped(eventType, "panel", data)
}

func fieldDetails(errs []domain.FieldError) map[string]interface{} {
	fields := make([]interface{}, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, map[string]interface{}{
			"field":  string(e.Field),
			"label":  e.Label,
			"value":  e.Value,
			"reason": e.Reason,
		})
	}
	return map[string]interface{}{"fields": fields}
}
