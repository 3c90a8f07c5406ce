package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aristath/trafficpanel/internal/clients/controller"
	"github.com/aristath/trafficpanel/internal/domain"
	"github.com/spf13/cobra"
)

// NewHeartbeatCmd builds "heartbeat", which only checks that the controller answers
func NewHeartbeatCmd(app *PanelCtlApp) *cobra.Command {
	return &cobra.Command{
		Use:   "heartbeat",
		Short: "Check whether the controller answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.newSession(cmd.ErrOrStderr())
			if err := s.client.Heartbeat(ctx(cmd)); err != nil {
				msg := domain.MsgControllerDown
				if controller.IsUnreachable(err) {
					msg = domain.MsgNoConnection
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[error] %s\n", msg)
				return msg
			}
			fmt.Fprintf(cmd.OutOrStdout(), "controller at %s is online\n", s.client.BaseURL())
			return nil
		},
	}
}

// NewSyncCmd builds "sync". The form and switch are printed only when the
// controller has a stored configuration.
func NewSyncCmd(app *PanelCtlApp) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Check the heartbeat, then load the configuration and running state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.newSession(cmd.ErrOrStderr())
			defer s.monitor.Stop()

			loaded, err := s.service.Sync(ctx(cmd))
			s.printToasts(cmd.OutOrStdout())
			if err != nil || !loaded {
				return err
			}
			printForm(cmd.OutOrStdout(), s.service.Form())
			printSwitch(cmd.OutOrStdout(), s.service.On())
			return nil
		},
	}
}

// NewRunningCmd builds "running"
func NewRunningCmd(app *PanelCtlApp) *cobra.Command {
	return &cobra.Command{
		Use:   "running",
		Short: "Show whether the traffic lights are running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.newSession(cmd.ErrOrStderr())
			defer s.monitor.Stop()

			err := s.service.LoadRunningState(ctx(cmd))
			s.printToasts(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			printSwitch(cmd.OutOrStdout(), s.service.On())
			return nil
		},
	}
}

// NewSwitchCmd builds "start" or "stop"
func NewSwitchCmd(app *PanelCtlApp, on bool) *cobra.Command {
	use, short := "stop", "Stop the traffic lights"
	if on {
		use, short = "start", "Start the traffic lights"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.newSession(cmd.ErrOrStderr())
			defer s.monitor.Stop()

			err := s.service.Switch(ctx(cmd), on)
			s.printToasts(cmd.OutOrStdout())
			return err
		},
	}
}

// NewConfigCmd builds the "config" group with its get and set subcommands
func NewConfigCmd(app *PanelCtlApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or write the timing configuration",
	}

	cmd.AddCommand(newConfigGetCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))

	return cmd
}

func newConfigGetCmd(app *PanelCtlApp) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the configuration stored on the controller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.newSession(cmd.ErrOrStderr())
			defer s.monitor.Stop()

			loaded, err := s.service.LoadConfig(ctx(cmd))
			s.printToasts(cmd.OutOrStdout())
			if err != nil || !loaded {
				return err
			}
			printForm(cmd.OutOrStdout(), s.service.Form())
			return nil
		},
	}
}

func newConfigSetCmd(app *PanelCtlApp) *cobra.Command {
	var form domain.Form
	var on bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Validate and store a configuration, then start or stop the lights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.newSession(cmd.ErrOrStderr())
			defer s.monitor.Stop()

			err := s.service.Update(ctx(cmd), form, on)
			s.printToasts(cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&form.GreenDuration, "green", "", domain.FieldGreen.Label())
	cmd.Flags().StringVar(&form.YellowDuration, "yellow", "", domain.FieldYellow.Label())
	cmd.Flags().StringVar(&form.YellowRedDuration, "yellow-red", "", domain.FieldYellowRed.Label())
	cmd.Flags().StringVar(&form.RedLower, "lower", "", domain.FieldRedLower.Label())
	cmd.Flags().StringVar(&form.RedUpper, "upper", "", domain.FieldRedUpper.Label())
	cmd.Flags().BoolVar(&on, "on", false, "Start the lights after storing (stops them otherwise)")

	return cmd
}

func ctx(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}

func printForm(w io.Writer, form domain.Form) {
	for _, id := range domain.FieldOrder {
		fmt.Fprintf(w, "%-36s %s\n", id.Label()+":", form.Value(id))
	}
}

func printSwitch(w io.Writer, on bool) {
	if on {
		fmt.Fprintln(w, "traffic lights: running")
		return
	}
	fmt.Fprintln(w, "traffic lights: stopped")
}
