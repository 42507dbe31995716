package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

// statusInfo is the data available to the status output template.
type statusInfo struct {
	Status   string
	Position string
	Duration string
	Percent  int
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the running player's playback status",
	Long: `Query the running player and print a one-line playback status.

The output format is a Go template over .Status, .Position, .Duration and
.Percent, suitable for tmux status lines or other status bars.

Exit codes:
  0 - Player is reachable and playing
  1 - Player paused, stopped, or not reachable`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().String("dbus-name", "", "D-Bus name of the player to query (default from config)")
	statusCmd.Flags().StringP("format", "f", "{{.Status}} {{.Position}}/{{.Duration}}", "Output format template")
	statusCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	client, err := attachClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	status, err := client.PlayStatus(ctx)
	if err != nil {
		// Not reachable: nothing is playing as far as a status bar cares.
		os.Exit(1)
		return nil
	}

	posMicros, err := client.GetFloat(ctx, "Position")
	if err != nil {
		return fmt.Errorf("failed to query position: %w", err)
	}
	durMicros, err := client.GetFloat(ctx, "Duration")
	if err != nil {
		return fmt.Errorf("failed to query duration: %w", err)
	}

	pos := time.Duration(posMicros) * time.Microsecond
	dur := time.Duration(durMicros) * time.Microsecond

	info := statusInfo{
		Status:   status,
		Position: formatClock(pos),
		Duration: formatClock(dur),
	}
	if durMicros > 0 {
		info.Percent = int(posMicros / durMicros * 100)
	}

	format, _ := cmd.Flags().GetString("format")
	output, err := formatStatus(info, format)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if width, _ := cmd.Flags().GetInt("width"); width > 0 {
		output = fitWidth(output, width)
	}
	fmt.Println(output)

	if status != "Playing" {
		os.Exit(1)
	}
	return nil
}

// formatStatus renders the status template.
func formatStatus(info statusInfo, format string) (string, error) {
	tmpl, err := template.New("status").Parse(format)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, info); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}

// fitWidth truncates or pads the output to a fixed display width.
func fitWidth(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// formatClock renders a duration as m:ss or h:mm:ss.
func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
