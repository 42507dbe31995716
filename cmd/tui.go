package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Display a terminal UI for the running player",
	Long: `Display a terminal-based user interface showing the running player's
playback state with real-time updates.

The TUI polls the player's control channel directly, so it can attach to a
player started elsewhere. It shows the play state and a progress bar, and
polling backs off while the player is unreachable.

Keys: space pauses/resumes, 'q' quits.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().String("dbus-name", "", "D-Bus name of the player to attach to (default from config)")
}

// tuiSample is one successful poll of the player.
type tuiSample struct {
	status   string
	position time.Duration
	duration time.Duration
}

func runTUI(cmd *cobra.Command, args []string) error {
	client, err := attachClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	app := tview.NewApplication()

	state := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	state.SetBorder(true).
		SetTitle(" omxctl ").
		SetTitleAlign(tview.AlignLeft)

	progress := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	progress.SetBorder(true)

	status := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]space pause/resume | q quit[-]")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(state, 0, 3, false).
		AddItem(progress, 3, 1, false).
		AddItem(status, 1, 1, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q', 'Q':
			app.Stop()
			return nil
		case ' ':
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
				defer cancel()
				st, err := client.PlayStatus(ctx)
				if err != nil {
					return
				}
				if st == "Paused" {
					_ = client.Resume(ctx)
				} else {
					_ = client.Pause(ctx)
				}
			}()
			return nil
		}
		return event
	})

	// Change detection caches
	var lastState string
	var lastProgress string
	var lastBarWidth int

	updateDisplay := func(sample *tuiSample) {
		app.QueueUpdateDraw(func() {
			var stateText string
			var progText string

			if sample == nil {
				stateText = "\n\n[gray]Player not reachable[-]"
				progText = ""
			} else {
				icon := "[green]▶[-]"
				if sample.status == "Paused" {
					icon = "[yellow]⏸[-]"
				}
				stateText = fmt.Sprintf("\n\n[white::b]%s[-:-:-]\n\n%s", sample.status, icon)

				_, _, width, _ := progress.GetInnerRect()
				barWidth := width - 16
				if barWidth > 0 {
					lastBarWidth = barWidth
				}
				if lastBarWidth < 10 {
					lastBarWidth = 10
				}
				bar := tuiBuildProgressBar(sample.position, sample.duration, lastBarWidth)
				progText = fmt.Sprintf("%s %s %s",
					formatClock(sample.position), bar, formatClock(sample.duration))
			}

			if stateText != lastState {
				lastState = stateText
				state.SetText(stateText)
			}
			if progText != lastProgress {
				lastProgress = progText
				progress.SetText(progText)
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		const (
			baseInterval = 1 * time.Second
			maxInterval  = 16 * time.Second
		)
		interval := baseInterval
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		poll := func() *tuiSample {
			pollCtx, pollCancel := context.WithTimeout(ctx, controlTimeout)
			defer pollCancel()

			st, err := client.PlayStatus(pollCtx)
			if err != nil {
				return nil
			}
			posMicros, err := client.GetFloat(pollCtx, "Position")
			if err != nil {
				return nil
			}
			durMicros, err := client.GetFloat(pollCtx, "Duration")
			if err != nil {
				return nil
			}
			return &tuiSample{
				status:   st,
				position: time.Duration(posMicros) * time.Microsecond,
				duration: time.Duration(durMicros) * time.Microsecond,
			}
		}

		updateDisplay(poll())

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sample := poll()
				updateDisplay(sample)
				if sample == nil {
					// Exponential backoff while unreachable
					if interval < maxInterval {
						interval *= 2
						if interval > maxInterval {
							interval = maxInterval
						}
						ticker.Reset(interval)
					}
					continue
				}
				if interval != baseInterval {
					interval = baseInterval
					ticker.Reset(interval)
				}
			}
		}
	}()

	if err := app.SetRoot(flex, true).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// tuiBuildProgressBar creates a text-based progress bar
func tuiBuildProgressBar(position, duration time.Duration, width int) string {
	if width <= 0 {
		return ""
	}
	if duration == 0 {
		return strings.Repeat("-", width)
	}

	ratio := float64(position) / float64(duration)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}

	filled := int(ratio * float64(width))
	empty := width - filled

	return "[green]" + strings.Repeat("█", filled) + "[-]" +
		"[gray]" + strings.Repeat("░", empty) + "[-]"
}
