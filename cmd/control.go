package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jfmyers9/omxctl/internal/config"
	"github.com/jfmyers9/omxctl/internal/omx"
	"github.com/spf13/cobra"
)

const controlTimeout = 5 * time.Second

// pauseCmd represents the pause command
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running player",
	Long:  `Pause the running player. The video holds on the current frame.`,
	RunE:  runPause,
}

// resumeCmd represents the resume command
var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the running player",
	Long:  `Resume the running player. Also releases a player opened with --wait-on-black.`,
	RunE:  runResume,
}

// stopCmd represents the stop command
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running player",
	Long:  `Stop the running player. The player process exits.`,
	RunE:  runStop,
}

// seekCmd represents the seek command
var seekCmd = &cobra.Command{
	Use:   "seek <position>",
	Short: "Seek the running player to an absolute position",
	Long: `Seek the running player to an absolute position.

The position is a Go duration, e.g. 90s, 1m30s or 1h2m.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeek,
}

func init() {
	for _, c := range []*cobra.Command{pauseCmd, resumeCmd, stopCmd, seekCmd} {
		c.Flags().String("dbus-name", "", "D-Bus name of the player to control (default from config)")
		rootCmd.AddCommand(c)
	}
}

// attachClient connects to the player named by the --dbus-name flag, falling
// back to the configured default.
func attachClient(cmd *cobra.Command) (*omx.DBusClient, error) {
	name, _ := cmd.Flags().GetString("dbus-name")
	if name == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		name = cfg.DBusName
	}

	client, err := omx.NewDBusClient(name)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to player: %w", err)
	}
	return client, nil
}

func runPause(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	client, err := attachClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Pause(ctx); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	client, err := attachClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Resume(ctx); err != nil {
		return fmt.Errorf("failed to resume: %w", err)
	}
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	client, err := attachClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop: %w", err)
	}
	return nil
}

func runSeek(cmd *cobra.Command, args []string) error {
	pos, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("invalid position %q: %w", args[0], err)
	}
	if pos < 0 {
		return fmt.Errorf("position must not be negative")
	}

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	client, err := attachClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.SetPosition(ctx, pos); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}
