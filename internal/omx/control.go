package omx

import (
	"context"
	"time"
)

// ControlClient is the out-of-process control channel to a running player.
// Every call is independent; every failure is retryable by the caller and
// never fatal to the controller. Before the player has finished starting up
// all calls fail; that window is what the readiness prober covers.
type ControlClient interface {
	// GetFloat queries a numeric property. Time-valued properties
	// ("Position", "Duration") are reported in the channel's native
	// microseconds.
	GetFloat(ctx context.Context, property string) (float64, error)

	// PlayStatus queries the playback status ("Playing" or "Paused").
	// Also serves as the readiness probe.
	PlayStatus(ctx context.Context) (string, error)

	// SetPosition seeks to an absolute position.
	SetPosition(ctx context.Context, pos time.Duration) error

	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stop(ctx context.Context) error
}
