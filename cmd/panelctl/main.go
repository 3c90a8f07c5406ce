package main

import (
	"os"

	"github.com/aristath/trafficpanel/internal/cli"
)

func main() {
	os.Exit(cli.ExitCode(cli.NewRootCmd(&cli.PanelCtlApp{}), os.Stderr))
}
