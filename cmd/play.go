package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jfmyers9/omxctl/internal/config"
	"github.com/jfmyers9/omxctl/internal/history"
	"github.com/jfmyers9/omxctl/internal/omx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	playOutput       string
	playLayer        int
	playDBusName     string
	playBackground   string
	playNoBackground bool
	playLoop         bool
	playWaitOnBlack  bool
	playResume       bool
	playStopAt       time.Duration
	playTest         bool
	playLogFile      string
	playLogLevel     string
	playDataDir      string
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "Play a video file with omxplayer",
	Long: `Launch omxplayer for the given file and drive it until it exits.

The command runs in the foreground. It:
- Launches the player with its stdin fed from a per-layer FIFO
- Probes the D-Bus control channel until the player answers
- Samples playback position and records resume checkpoints
- Stops playback cleanly on SIGINT/SIGTERM (second signal forces exit)

With --test, no process is started; the command line that would have run is
printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVarP(&playOutput, "output", "o", "", "Video output: hdmi, local or both (default from config)")
	playCmd.Flags().IntVar(&playLayer, "layer", 0, "Display layer to render on")
	playCmd.Flags().StringVar(&playDBusName, "dbus-name", "", "D-Bus name for the control channel (default from config)")
	playCmd.Flags().StringVarP(&playBackground, "background", "b", "", "Background color behind the video, ARGB hex")
	playCmd.Flags().BoolVar(&playNoBackground, "no-background", false, "Disable background blanking")
	playCmd.Flags().BoolVar(&playLoop, "loop", false, "Loop the file")
	playCmd.Flags().BoolVar(&playWaitOnBlack, "wait-on-black", false, "Hold on a blank screen until resumed")
	playCmd.Flags().BoolVar(&playResume, "resume", false, "Seek to the last recorded position for this file")
	playCmd.Flags().DurationVar(&playStopAt, "stop-at", 0, "Stop playback when this position is reached")
	playCmd.Flags().BoolVar(&playTest, "test", false, "Print the launch command instead of running it")
	playCmd.Flags().StringVar(&playLogFile, "log-file", "", "Log file path (default: stderr)")
	playCmd.Flags().StringVar(&playLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	playCmd.Flags().StringVar(&playDataDir, "data-dir", "", "Data directory for the history database (default: ~/.local/share/omxctl)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(playLogFile, playLogLevel)

	opts := playerOptions(cmd, cfg)
	controller := omx.New(logger, opts...)
	if playTest {
		controller.EnableTestMode()
	}

	sub := controller.Subscribe()

	ctx := context.Background()
	if playStopAt > 0 {
		controller.RegisterPositionTrigger(playStopAt, func() {
			logger.Info().Dur("position", playStopAt).Msg("Stop trigger reached")
			if err := controller.Stop(ctx); err != nil {
				logger.Warn().Err(err).Msg("Stop trigger failed")
			}
		})
	}

	result, err := controller.Open(ctx, args[0], playWaitOnBlack)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}

	if playTest {
		fmt.Println(result.Command)
		return nil
	}

	logger.Info().Str("command", result.Command).Msg("Player launched")

	store, sessionID, err := openSession(ctx, cfg, result.Path)
	if err != nil {
		// History is best-effort; playback goes on without it.
		logger.Warn().Err(err).Msg("History unavailable")
	}
	if store != nil {
		defer store.Close()
	}

	var resumePoint time.Duration
	if playResume && store != nil {
		if point, ok, err := store.ResumePoint(ctx, result.Path); err != nil {
			logger.Warn().Err(err).Msg("Failed to look up resume point")
		} else if ok {
			resumePoint = point
		}
	}

	// First signal asks the player to stop, second forces exit.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("Shutdown signal received, stopping playback")
		if err := controller.Stop(ctx); err != nil {
			logger.Warn().Err(err).Msg("Stop failed")
		}
		<-sigChan
		logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	var lastRatio float64
	for {
		select {
		case ev := <-sub.Ready:
			logger.Info().Int("attempts", ev.Attempts).Str("status", ev.Status).Msg("Control channel ready")
			if resumePoint > 0 {
				logger.Info().Dur("position", resumePoint).Msg("Resuming from checkpoint")
				if err := controller.Seek(ctx, resumePoint); err != nil {
					logger.Warn().Err(err).Msg("Resume seek failed")
				}
			}
		case ev := <-sub.Progress:
			lastRatio = ev.Progress
			if store != nil {
				if err := store.Checkpoint(ctx, sessionID, ev.Position, ev.Duration); err != nil {
					logger.Debug().Err(err).Msg("Checkpoint failed")
				}
			}
		case <-sub.Paused:
			logger.Info().Msg("Paused")
		case <-sub.Resumed:
			logger.Info().Msg("Resumed")
		case <-sub.Stopped:
			logger.Info().Msg("Stopped")
		case ev := <-sub.Error:
			logger.Warn().Err(ev.Err).Str("op", ev.Op).Msg("Playback error")
		case ev := <-sub.Closed:
			if ev.Err != nil {
				logger.Warn().Err(ev.Err).Str("stderr", ev.Stderr).Msg("Player closed")
			} else {
				logger.Info().Msg("Player closed")
			}
			if store != nil {
				// Near the end counts as watched; anything earlier keeps
				// its resume point.
				completed := lastRatio >= 0.98
				if err := store.Finish(ctx, sessionID, completed); err != nil {
					logger.Debug().Err(err).Msg("Failed to finish session")
				}
			}
			return nil
		}
	}
}

// playerOptions builds controller options from config defaults with
// explicitly-set flags taking precedence key by key.
func playerOptions(cmd *cobra.Command, cfg *config.Config) []omx.Option {
	output := cfg.Output
	if cmd.Flags().Changed("output") {
		output = playOutput
	}
	layer := cfg.Layer
	if cmd.Flags().Changed("layer") {
		layer = playLayer
	}
	dbusName := cfg.DBusName
	if cmd.Flags().Changed("dbus-name") {
		dbusName = playDBusName
	}
	loop := cfg.Loop
	if cmd.Flags().Changed("loop") {
		loop = playLoop
	}

	opts := []omx.Option{
		omx.WithOutput(omx.Output(output)),
		omx.WithLayer(layer),
		omx.WithDBusName(dbusName),
		omx.WithLoop(loop),
	}

	switch {
	case cmd.Flags().Changed("no-background") && playNoBackground:
		opts = append(opts, omx.WithNoBackground())
	case cmd.Flags().Changed("background"):
		opts = append(opts, omx.WithBackgroundColor(playBackground))
	case cfg.NoBackground:
		opts = append(opts, omx.WithNoBackground())
	case cfg.BackgroundColor != "":
		opts = append(opts, omx.WithBackgroundColor(cfg.BackgroundColor))
	}

	return opts
}

// openSession opens the history store and starts a session for path.
func openSession(ctx context.Context, cfg *config.Config, path string) (*history.Store, int64, error) {
	dataDir := playDataDir
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, 0, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := history.Open(filepath.Join(dataDir, "history.db"))
	if err != nil {
		return nil, 0, err
	}

	id, err := store.Start(ctx, path)
	if err != nil {
		store.Close()
		return nil, 0, err
	}
	return store, id, nil
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
