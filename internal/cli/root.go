// Package cli implements panelctl, a headless client that runs the panel
// operations against a controller from the terminal.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aristath/trafficpanel/internal/clients/controller"
	"github.com/aristath/trafficpanel/internal/config"
	"github.com/aristath/trafficpanel/internal/domain"
	"github.com/aristath/trafficpanel/internal/modules/connectivity"
	"github.com/aristath/trafficpanel/internal/modules/notifications"
	"github.com/aristath/trafficpanel/internal/modules/panel"
	"github.com/aristath/trafficpanel/pkg/logger"
	"github.com/spf13/cobra"
)

// PanelCtlApp holds the global flags
type PanelCtlApp struct {
	URL      string
	Timeout  time.Duration
	LogLevel string
}

// session is one command run: a panel service with an in-memory toast feed
type session struct {
	client   *controller.Client
	service  *panel.Service
	notifier *notifications.Notifier
	monitor  *connectivity.Monitor
}

func (a *PanelCtlApp) newSession(stderr io.Writer) *session {
	log := logger.New(logger.Config{
		Level:  a.LogLevel,
		Pretty: true,
		Output: stderr,
	})

	client := controller.NewClient(a.URL, a.Timeout, nil, log)
	// No retry poll: a command is a single attempt.
	monitor := connectivity.NewMonitor(client, nil, nil, nil, connectivity.Config{ProbeTimeout: a.Timeout}, log)
	notifier := notifications.NewNotifier(nil, nil, nil, 0, log)

	return &session{
		client:   client,
		service:  panel.NewService(client, monitor, notifier, nil, log),
		notifier: notifier,
		monitor:  monitor,
	}
}

// printToasts writes the toasts raised during the command, oldest first
func (s *session) printToasts(w io.Writer) {
	toasts := s.notifier.Recent(0)
	for i := len(toasts) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "[%s] %s\n", toasts[i].Kind, toasts[i].Text)
	}
}

// NewRootCmd builds the command tree
func NewRootCmd(app *PanelCtlApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "panelctl",
		Short:         "Operate a traffic light controller from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := config.Defaults()
	defaultURL := defaults.Controller.BaseURL()
	if env := os.Getenv("CONTROLLER_URL"); env != "" {
		defaultURL = env
	}

	cmd.PersistentFlags().StringVar(&app.URL, "url", defaultURL, "Controller base URL")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", defaults.Controller.Timeout, "Timeout for each controller call")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "warn", "Log level written to stderr")

	cmd.AddCommand(NewHeartbeatCmd(app))
	cmd.AddCommand(NewSyncCmd(app))
	cmd.AddCommand(NewRunningCmd(app))
	cmd.AddCommand(NewSwitchCmd(app, true))
	cmd.AddCommand(NewSwitchCmd(app, false))
	cmd.AddCommand(NewConfigCmd(app))

	return cmd
}

// ExitCode runs the root command and maps the outcome to a process exit code.
// Catalog failures were already printed as toasts; anything else is printed here.
func ExitCode(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var msg domain.Message
	if !errors.As(err, &msg) && !errors.Is(err, domain.ErrInvalidForm) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}
