package di

import (
	"fmt"

	"github.com/aristath/trafficpanel/internal/clients/controller"
	"github.com/aristath/trafficpanel/internal/config"
	"github.com/aristath/trafficpanel/internal/events"
	"github.com/aristath/trafficpanel/internal/metrics"
	"github.com/aristath/trafficpanel/internal/modules/connectivity"
	"github.com/aristath/trafficpanel/internal/modules/notifications"
	"github.com/aristath/trafficpanel/internal/modules/panel"
	"github.com/aristath/trafficpanel/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices creates the event system, metrics, scheduler, controller
// client and panel services. Order matters: the monitor and notifier are
// handed to the panel service.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}
	if container.PanelDB == nil {
		return fmt.Errorf("panel database not initialized")
	}

	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	container.Registry = metrics.NewRegistry()
	container.Metrics = metrics.NewMetrics(container.Registry)

	container.Scheduler = scheduler.New(log)

	container.ControllerClient = controller.NewClient(
		cfg.Controller.BaseURL(),
		cfg.Controller.Timeout,
		container.Metrics,
		log,
	)

	container.Monitor = connectivity.NewMonitor(
		container.ControllerClient,
		container.Scheduler,
		container.EventManager,
		container.Metrics,
		connectivity.Config{
			RetryInterval: cfg.Connectivity.RetryInterval,
			IndicatorTTL:  cfg.Connectivity.IndicatorTTL,
			ProbeTimeout:  cfg.Controller.Timeout,
		},
		log,
	)

	container.NotificationRepo = notifications.NewRepository(container.PanelDB.Conn(), container.EventManager, log)
	container.Notifier = notifications.NewNotifier(
		container.NotificationRepo,
		container.EventManager,
		container.Metrics,
		cfg.Notifications.BufferSize,
		log,
	)

	container.PanelService = panel.NewService(
		container.ControllerClient,
		container.Monitor,
		container.Notifier,
		container.EventManager,
		log,
	)

	log.Info().Str("controller", container.ControllerClient.BaseURL()).Msg("Services initialized")

	return nil
}
