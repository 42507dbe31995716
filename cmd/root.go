package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "omxctl",
	Short: "Control omxplayer playback on a Raspberry Pi",
	Long: `omxctl launches and controls a single omxplayer instance.

The play command starts the player in the foreground and drives it through
its D-Bus control channel: progress sampling, position triggers, resume
checkpoints, and graceful shutdown.

The pause, resume, stop, seek, status and tui commands attach to an already
running player by its D-Bus name, so an omxctl-launched player can be
controlled from another shell or a status bar.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
