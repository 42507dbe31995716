package omx

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
)

const playerBinary = "omxplayer"

// LaunchResult is what a launch attempt yields once it has been accepted.
type LaunchResult struct {
	Command   string // full command line, space-joined
	Synthetic bool   // true in test mode: no process was spawned
}

// launcher starts the player process with its stdin attached to a named
// conduit, and reports process exit asynchronously. One launcher serves one
// launch.
type launcher struct {
	settings Settings
	logger   zerolog.Logger

	cmd    *exec.Cmd
	exited chan Closed
}

func newLauncher(settings Settings, logger zerolog.Logger) *launcher {
	return &launcher{
		settings: settings,
		logger:   logger.With().Str("component", "launcher").Logger(),
	}
}

// buildArgs constructs the player argv deterministically from settings.
// Flag order matters only for readability in logs and ps output.
func buildArgs(settings Settings, path string) []string {
	args := []string{playerBinary, "-o", string(settings.Output)}
	if !settings.NoBackground {
		args = append(args, "--blank="+settings.BackgroundColor)
	}
	args = append(args, "--dbus_name", settings.DBusName)
	if settings.Loop {
		args = append(args, "--loop")
	}
	args = append(args, "--layer", strconv.Itoa(settings.Layer), path)
	return args
}

// conduitPath returns the per-layer FIFO path used to feed the player's stdin.
func conduitPath(layer int) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("omxctl.%d.fifo", layer))
}

// Launch starts the player for the given absolute path.
//
// Real mode: creates the per-layer conduit (pre-existing is fine), starts the
// process reading from it, then writes a one-byte sentinel into the conduit
// to unblock the player's initial stdin read. Conduit or sentinel failures
// fail the launch; a process that starts and then dies is reported through
// Exited, not here.
//
// Test mode: returns the command line that would have run, no I/O.
func (l *launcher) Launch(path string) (LaunchResult, error) {
	args := buildArgs(l.settings, path)
	command := strings.Join(args, " ")

	if l.settings.TestMode {
		l.logger.Debug().Str("command", command).Msg("Synthetic launch")
		return LaunchResult{Command: command, Synthetic: true}, nil
	}

	fifo := conduitPath(l.settings.Layer)
	if err := syscall.Mkfifo(fifo, 0o644); err != nil && !errors.Is(err, syscall.EEXIST) {
		return LaunchResult{}, &LaunchError{Stage: "conduit", Err: err}
	}

	// Open the read end non-blocking so we don't wait for a writer. The child
	// inherits this end as stdin; holding it open here also guarantees the
	// sentinel write below cannot block on a missing reader.
	rd, err := os.OpenFile(fifo, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return LaunchResult{}, &LaunchError{Stage: "attach", Err: err}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = rd
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	l.cmd = cmd
	l.exited = make(chan Closed, 1)

	// Start synchronously so a later Kill observes a settled process. A
	// spawn failure is still observed the same way a crash is, through the
	// exit notification, never as a launch failure.
	defer rd.Close()
	if err := cmd.Start(); err != nil {
		l.exited <- Closed{Err: err}
	} else {
		go func() {
			err := cmd.Wait()
			l.exited <- Closed{Err: err, Stdout: stdout.String(), Stderr: stderr.String()}
		}()
	}

	wr, err := os.OpenFile(fifo, os.O_WRONLY, 0)
	if err != nil {
		l.Kill()
		return LaunchResult{}, &LaunchError{Stage: "sentinel", Err: err}
	}
	if _, err := wr.Write([]byte(".")); err != nil {
		wr.Close()
		l.Kill()
		return LaunchResult{}, &LaunchError{Stage: "sentinel", Err: err}
	}
	wr.Close()

	l.logger.Debug().Str("command", command).Str("conduit", fifo).Msg("Launched player")
	return LaunchResult{Command: command}, nil
}

// Exited delivers exactly one exit notification once the process terminates.
// Nil for synthetic launches.
func (l *launcher) Exited() <-chan Closed {
	return l.exited
}

// Kill force-terminates the player process if it is still around.
func (l *launcher) Kill() {
	if l.cmd != nil && l.cmd.Process != nil {
		_ = l.cmd.Process.Kill()
	}
}
