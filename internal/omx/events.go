package omx

import "time"

// Opened is emitted as soon as the launch has been accepted, before the
// control channel is known to be usable.
type Opened struct {
	Path    string // absolute path of the opened file
	Command string // the launch command line (the only output in test mode)
	Playing bool   // false when opened with waitOnBlack
}

// Ready is emitted once the control channel answers its first status query.
type Ready struct {
	Status   string // play status reported by the first successful query
	Attempts int    // probe attempts it took
}

// Paused is emitted after a successful pause command.
type Paused struct{}

// Resumed is emitted after a successful resume command.
type Resumed struct{}

// Stopped is emitted after a successful stop command.
type Stopped struct{}

// Progress is emitted on every successful sample tick.
type Progress struct {
	Position time.Duration
	Duration time.Duration
	Progress float64 // Position / Duration
}

// Closed is emitted when the player process terminates, which may be long
// after Open returned. Informational; never an error return.
type Closed struct {
	Err    error // exit error, nil on clean exit
	Stdout string
	Stderr string
}

// ErrorEvent is emitted for failures whose triggering operation has already
// returned: readiness probe exhaustion and remote command failures.
type ErrorEvent struct {
	Op  string // e.g. "probe", "pause", "sample"
	Err error
}

const eventBufferSize = 16

// Subscription provides per-event channels for one subscriber. Delivery is
// best-effort: events are dropped when a subscriber's buffer is full.
type Subscription struct {
	Opened   <-chan Opened
	Ready    <-chan Ready
	Paused   <-chan Paused
	Resumed  <-chan Resumed
	Stopped  <-chan Stopped
	Progress <-chan Progress
	Closed   <-chan Closed
	Error    <-chan ErrorEvent

	openedCh   chan Opened
	readyCh    chan Ready
	pausedCh   chan Paused
	resumedCh  chan Resumed
	stoppedCh  chan Stopped
	progressCh chan Progress
	closedCh   chan Closed
	errorCh    chan ErrorEvent
}

func newSubscription() *Subscription {
	s := &Subscription{
		openedCh:   make(chan Opened, eventBufferSize),
		readyCh:    make(chan Ready, eventBufferSize),
		pausedCh:   make(chan Paused, eventBufferSize),
		resumedCh:  make(chan Resumed, eventBufferSize),
		stoppedCh:  make(chan Stopped, eventBufferSize),
		progressCh: make(chan Progress, eventBufferSize),
		closedCh:   make(chan Closed, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
	}
	s.Opened = s.openedCh
	s.Ready = s.readyCh
	s.Paused = s.pausedCh
	s.Resumed = s.resumedCh
	s.Stopped = s.stoppedCh
	s.Progress = s.progressCh
	s.Closed = s.closedCh
	s.Error = s.errorCh
	return s
}

func (s *Subscription) sendOpened(e Opened) {
	select {
	case s.openedCh <- e:
	default:
	}
}

func (s *Subscription) sendReady(e Ready) {
	select {
	case s.readyCh <- e:
	default:
	}
}

func (s *Subscription) sendPaused() {
	select {
	case s.pausedCh <- Paused{}:
	default:
	}
}

func (s *Subscription) sendResumed() {
	select {
	case s.resumedCh <- Resumed{}:
	default:
	}
}

func (s *Subscription) sendStopped() {
	select {
	case s.stoppedCh <- Stopped{}:
	default:
	}
}

func (s *Subscription) sendProgress(e Progress) {
	select {
	case s.progressCh <- e:
	default:
	}
}

func (s *Subscription) sendClosed(e Closed) {
	select {
	case s.closedCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
