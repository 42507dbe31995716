package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jfmyers9/omxctl/internal/config"
	"github.com/jfmyers9/omxctl/internal/history"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded playback sessions",
	Long: `List recorded playback sessions, newest first.

Sessions that were not watched to the end keep a resume checkpoint; playing
the same file with --resume seeks back to it.`,
	RunE: runHistory,
}

// historyClearCmd represents the history clear command
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded playback sessions",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)

	historyCmd.PersistentFlags().String("data-dir", "", "Data directory for the history database (default: ~/.local/share/omxctl)")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of sessions to show")
}

// openHistory opens the store without creating missing directories: an
// absent database just means nothing has been played yet.
func openHistory(cmd *cobra.Command) (*history.Store, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		dataDir = cfg.DataDir
	}

	dbPath := filepath.Join(dataDir, "history.db")
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("no playback history at %s", dbPath)
	}
	return history.Open(dbPath)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	sessions, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No playback history.")
		return nil
	}

	for _, s := range sessions {
		mark := " "
		if s.Completed {
			mark = "*"
		}
		name := runewidth.Truncate(filepath.Base(s.Path), 48, "…")
		name = runewidth.FillRight(name, 48)
		fmt.Printf("%s %s %s  %s/%s\n",
			mark,
			s.StartedAt.Format(time.DateTime),
			name,
			formatClock(s.Position),
			formatClock(s.Duration),
		)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	removed, err := store.Clear(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d sessions.\n", removed)
	return nil
}
