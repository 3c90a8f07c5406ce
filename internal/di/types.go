// Package di provides dependency injection type definitions.
package di

import (
	"github.com/aristath/trafficpanel/internal/clients/controller"
	"github.com/aristath/trafficpanel/internal/config"
	"github.com/aristath/trafficpanel/internal/database"
	"github.com/aristath/trafficpanel/internal/events"
	"github.com/aristath/trafficpanel/internal/metrics"
	"github.com/aristath/trafficpanel/internal/modules/connectivity"
	"github.com/aristath/trafficpanel/internal/modules/notifications"
	"github.com/aristath/trafficpanel/internal/modules/panel"
	"github.com/aristath/trafficpanel/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
)

// Container holds all dependencies for the application.
// It is the single source of truth for service instances and is handed to
// the HTTP server.
type Container struct {
	Config *config.Config

	// Database
	PanelDB *database.DB

	// Event system
	EventBus     *events.Bus
	EventManager *events.Manager

	// Metrics
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Scheduling
	Scheduler *scheduler.Scheduler

	// Controller access
	ControllerClient *controller.Client

	// Services
	Monitor          *connectivity.Monitor
	NotificationRepo *notifications.Repository
	Notifier         *notifications.Notifier
	PanelService     *panel.Service
}

// Close stops background work and closes the database.
func (c *Container) Close() error {
	if c.Monitor != nil {
		c.Monitor.Stop()
	}
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.PanelDB != nil {
		return c.PanelDB.Close()
	}
	return nil
}
