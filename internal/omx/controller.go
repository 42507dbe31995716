// Package omx controls a single externally-spawned omxplayer process: launch,
// pause/resume/stop/seek, progress sampling, and position-based triggers,
// observed through an event subscription.
//
// The player binary itself is a black box reached two ways: a named conduit
// feeding its stdin at launch, and an MPRIS-shaped D-Bus interface for
// everything after. The controller's job is the lifecycle around those.
package omx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the controller lifecycle state.
type State int

const (
	StateUnopened State = iota
	StateLaunching
	StateAwaitingControl
	StateReady
	StateStopped
	StateClosed
)

// String returns a human-readable representation of the State.
func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateLaunching:
		return "launching"
	case StateAwaitingControl:
		return "awaiting-control"
	case StateReady:
		return "ready"
	case StateStopped:
		return "stopped"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrAlreadyOpened is returned by Open when the controller already owns a
// playback session. One controller serves one session.
var ErrAlreadyOpened = errors.New("omx: controller already opened")

// errNoControl is the failure for commands issued before the control channel
// became usable.
var errNoControl = errors.New("control channel not available")

// OpenResult is returned by Open once the launch has been accepted.
type OpenResult struct {
	Path    string
	Command string
	Playing bool
}

// Controller orchestrates one playback session. It owns the trigger list,
// the sampler, and the event subscriptions; the spawned process is owned by
// the OS and only observed here.
type Controller struct {
	logger zerolog.Logger

	// newClient builds the control channel at launch time. Swappable so
	// tests can substitute a fake collaborator.
	newClient func(name string) (ControlClient, error)

	// Readiness probe pacing. Fixed after construction.
	probeInterval    time.Duration
	probeMaxAttempts int

	mu       sync.Mutex
	settings Settings
	state    State
	client   ControlClient
	launcher *launcher
	sampler  *sampler
	triggers []*positionTrigger
	subs     []*Subscription
}

// New creates a Controller with the given option overrides applied over the
// documented defaults.
func New(logger zerolog.Logger, opts ...Option) *Controller {
	return &Controller{
		logger:   logger.With().Str("component", "controller").Logger(),
		settings: newSettings(opts...),
		state:    StateUnopened,
		newClient: func(name string) (ControlClient, error) {
			return NewDBusClient(name)
		},
		probeInterval:    probeInterval,
		probeMaxAttempts: probeMaxAttempts,
	}
}

// Subscribe returns a new event subscription. Delivery is best-effort.
func (c *Controller) Subscribe() *Subscription {
	s := newSubscription()
	c.mu.Lock()
	c.subs = append(c.subs, s)
	c.mu.Unlock()
	return s
}

// Settings returns the effective configuration.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// EnableTestMode makes subsequent launches synthetic: no process is spawned,
// no control channel is exercised, and Open resolves with the command line
// that would have run.
func (c *Controller) EnableTestMode() {
	c.mu.Lock()
	c.settings.TestMode = true
	c.mu.Unlock()
}

// RegisterPositionTrigger registers handler to fire when sampled position
// crosses pos upward. Triggers re-arm when position is later observed below
// pos again. No deduplication; handlers at the same position run in
// registration order within a tick but that ordering is not guaranteed.
func (c *Controller) RegisterPositionTrigger(pos time.Duration, handler func()) {
	c.mu.Lock()
	c.triggers = append(c.triggers, &positionTrigger{target: pos, handler: handler})
	c.mu.Unlock()
}

// Open validates the file, launches the player, and emits Opened. Launch
// acceptance and control readiness are independent milestones: Open returns
// at launch time, and the readiness probe runs on afterwards, ending in
// either a Ready event (sampling starts) or an Error event. Probe failure
// never fails Open.
//
// With waitOnBlack the player holds on a blank screen until resumed, and
// the Opened event reports Playing=false.
func (c *Controller) Open(ctx context.Context, path string, waitOnBlack bool) (OpenResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return OpenResult{}, fmt.Errorf("resolve path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return OpenResult{}, fmt.Errorf("%w: %s", ErrFileNotFound, abs)
	}

	c.mu.Lock()
	if c.state != StateUnopened {
		c.mu.Unlock()
		return OpenResult{}, ErrAlreadyOpened
	}
	c.state = StateLaunching
	settings := c.settings
	c.launcher = newLauncher(settings, c.logger)
	launcher := c.launcher
	c.mu.Unlock()

	result, err := launcher.Launch(abs)
	if err != nil {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		return OpenResult{}, err
	}

	open := OpenResult{Path: abs, Command: result.Command, Playing: !waitOnBlack}
	c.logger.Info().
		Str("path", abs).
		Bool("synthetic", result.Synthetic).
		Msg("Opened")
	c.emitOpened(Opened(open))

	if result.Synthetic {
		// No process, no channel: the session is open and that is all.
		c.mu.Lock()
		c.state = StateReady
		c.mu.Unlock()
		return open, nil
	}

	c.mu.Lock()
	c.state = StateAwaitingControl
	c.mu.Unlock()

	go c.watchExit(launcher)
	go c.awaitControl(ctx, settings)

	return open, nil
}

// awaitControl builds the control channel and probes it until it answers,
// then starts the sampler.
func (c *Controller) awaitControl(ctx context.Context, settings Settings) {
	client, err := c.newClient(settings.DBusName)
	if err != nil {
		c.logger.Error().Err(err).Msg("Control channel setup failed")
		c.emitError(ErrorEvent{Op: "probe", Err: err})
		return
	}

	res, err := probeReady(ctx, client, c.probeInterval, c.probeMaxAttempts)
	if err != nil {
		c.logger.Error().Err(err).Int("attempts", res.Attempts).Msg("Control channel never became ready")
		c.emitError(ErrorEvent{Op: "probe", Err: err})
		return
	}

	c.mu.Lock()
	if c.state != StateAwaitingControl {
		// Stopped or closed while probing; too late to become ready.
		c.mu.Unlock()
		return
	}
	c.state = StateReady
	c.client = client
	c.sampler = newSampler(client, settings.SampleInterval, c.logger)
	c.sampler.evaluate = c.evaluateTriggers
	c.sampler.progress = c.emitProgress
	c.sampler.failure = func(err error) { c.emitError(ErrorEvent{Op: "sample", Err: err}) }
	sampler := c.sampler
	c.mu.Unlock()

	c.logger.Info().Int("attempts", res.Attempts).Str("status", res.Status).Msg("Control channel ready")
	c.emitReady(Ready{Status: res.Status, Attempts: res.Attempts})
	sampler.start()
}

// watchExit forwards the single process-exit notification.
func (c *Controller) watchExit(launcher *launcher) {
	ev := <-launcher.Exited()

	c.mu.Lock()
	c.state = StateClosed
	sampler := c.sampler
	c.mu.Unlock()

	if sampler != nil {
		sampler.stop()
	}

	c.logger.Info().Err(ev.Err).Msg("Player process closed")
	c.emitClosed(ev)
}

// Pause suspends playback. Emits Paused on success, Error on failure.
func (c *Controller) Pause(ctx context.Context) error {
	client := c.controlClient()
	if client == nil {
		return c.commandFailed("pause", errNoControl)
	}
	if err := client.Pause(ctx); err != nil {
		return c.commandFailed("pause", err)
	}
	c.emitPaused()
	return nil
}

// Resume resumes playback. Emits Resumed on success, Error on failure.
func (c *Controller) Resume(ctx context.Context) error {
	client := c.controlClient()
	if client == nil {
		return c.commandFailed("resume", errNoControl)
	}
	if err := client.Resume(ctx); err != nil {
		return c.commandFailed("resume", err)
	}
	c.emitResumed()
	return nil
}

// Stop latches the stopped state and halts the sampler first, then issues
// the remote stop: once a stop has been requested no further progress may be
// observed, even when the request arrives while the readiness probe is still
// running. Emits Stopped on success, Error on failure.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUnopened && c.state != StateClosed {
		c.state = StateStopped
	}
	sampler := c.sampler
	client := c.client
	c.mu.Unlock()

	if sampler != nil {
		sampler.stop()
	}
	if client == nil {
		return c.commandFailed("stop", errNoControl)
	}
	if err := client.Stop(ctx); err != nil {
		return c.commandFailed("stop", err)
	}

	c.emitStopped()
	return nil
}

// Seek jumps to an absolute position. Emits Error on failure and nothing on
// success; successful seeks are observable only through subsequent progress.
func (c *Controller) Seek(ctx context.Context, pos time.Duration) error {
	client := c.controlClient()
	if client == nil {
		return c.commandFailed("seek", errNoControl)
	}
	if err := client.SetPosition(ctx, pos); err != nil {
		return c.commandFailed("seek", err)
	}
	c.logger.Debug().Dur("position", pos).Msg("Seeked")
	return nil
}

func (c *Controller) controlClient() ControlClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

func (c *Controller) commandFailed(op string, err error) error {
	cmdErr := &CommandError{Op: op, Err: err}
	c.logger.Error().Err(err).Str("op", op).Msg("Command failed")
	c.emitError(ErrorEvent{Op: op, Err: cmdErr})
	return cmdErr
}

// evaluateTriggers sweeps the trigger list for one sampled position. Runs on
// the sampler goroutine, so one tick's sweep is atomic with respect to the
// next.
func (c *Controller) evaluateTriggers(pos time.Duration) {
	c.mu.Lock()
	triggers := make([]*positionTrigger, len(c.triggers))
	copy(triggers, c.triggers)
	c.mu.Unlock()

	for _, t := range triggers {
		t.evaluate(pos)
	}
}

func (c *Controller) subscribers() []*Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	subs := make([]*Subscription, len(c.subs))
	copy(subs, c.subs)
	return subs
}

func (c *Controller) emitOpened(e Opened) {
	for _, s := range c.subscribers() {
		s.sendOpened(e)
	}
}

func (c *Controller) emitReady(e Ready) {
	for _, s := range c.subscribers() {
		s.sendReady(e)
	}
}

func (c *Controller) emitPaused() {
	for _, s := range c.subscribers() {
		s.sendPaused()
	}
}

func (c *Controller) emitResumed() {
	for _, s := range c.subscribers() {
		s.sendResumed()
	}
}

func (c *Controller) emitStopped() {
	for _, s := range c.subscribers() {
		s.sendStopped()
	}
}

func (c *Controller) emitProgress(e Progress) {
	for _, s := range c.subscribers() {
		s.sendProgress(e)
	}
}

func (c *Controller) emitClosed(e Closed) {
	for _, s := range c.subscribers() {
		s.sendClosed(e)
	}
}

func (c *Controller) emitError(e ErrorEvent) {
	for _, s := range c.subscribers() {
		s.sendError(e)
	}
}
