package omx

import (
	"errors"
	"fmt"
)

// ErrFileNotFound is returned by Open when the target file does not exist.
var ErrFileNotFound = errors.New("omx: file not found")

// LaunchError reports a failure to get the player process off the ground:
// creating the stdin conduit, attaching it, or delivering the unblocking
// sentinel. Spawn failures are not LaunchErrors; they surface later through
// the Closed event.
type LaunchError struct {
	Stage string // "conduit", "attach", "sentinel"
	Err   error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("omx: launch failed (%s): %v", e.Stage, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ControlTimeoutError reports that readiness probing exhausted its retry
// budget without a single successful status query. It is surfaced only
// through the Error event, never from Open.
type ControlTimeoutError struct {
	Attempts int   // attempt count at rejection (budget + 1)
	Err      error // last probe failure
}

func (e *ControlTimeoutError) Error() string {
	return fmt.Sprintf("omx: control channel not ready after %d attempts: %v", e.Attempts-1, e.Err)
}

func (e *ControlTimeoutError) Unwrap() error { return e.Err }

// CommandError reports a failed remote command. Every CommandError is
// retryable by the caller; none is fatal to the controller.
type CommandError struct {
	Op  string // "pause", "resume", "stop", "seek", "sample"
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("omx: %s command failed: %v", e.Op, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Is matches CommandErrors by operation, so callers can use errors.Is
// with a zero-valued target like &CommandError{Op: "pause"}.
func (e *CommandError) Is(target error) bool {
	t, ok := target.(*CommandError)
	if !ok {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}
