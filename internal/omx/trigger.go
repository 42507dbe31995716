package omx

import "time"

// positionTrigger is a handler latched to a playback position. It fires at
// most once per upward crossing of its target and re-arms when the sampled
// position falls back below the target, so loops and backward seeks can
// fire it again.
type positionTrigger struct {
	target  time.Duration
	handler func()
	fired   bool
}

// evaluate inspects one sampled position and fires or re-arms the trigger.
func (t *positionTrigger) evaluate(pos time.Duration) {
	switch {
	case pos >= t.target && !t.fired:
		t.fired = true
		t.handler()
	case pos < t.target && t.fired:
		t.fired = false
	}
}
