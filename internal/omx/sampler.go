package omx

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// sampler periodically queries position and duration, evaluates position
// triggers, and reports progress. Queries run inline in the sampler's own
// goroutine, so ticks are serialized: a slow control channel delays the next
// tick instead of overlapping it, and missed ticks are dropped.
type sampler struct {
	client   ControlClient
	interval time.Duration
	logger   zerolog.Logger

	evaluate func(pos time.Duration) // trigger sweep, runs on the sampler goroutine
	progress func(Progress)
	failure  func(error)

	mu       sync.Mutex
	disabled bool
	cancel   context.CancelFunc
	done     chan struct{}
}

func newSampler(client ControlClient, interval time.Duration, logger zerolog.Logger) *sampler {
	return &sampler{
		client:   client,
		interval: interval,
		logger:   logger.With().Str("component", "sampler").Logger(),
	}
}

// start begins periodic sampling. No-op if already started.
func (s *sampler) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil || s.disabled {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx)
}

// stop disables sampling and halts the loop. An in-flight sample from
// before the stop still completes but emits nothing: neither its error nor
// a trailing progress event escapes after stop.
func (s *sampler) stop() {
	s.mu.Lock()
	s.disabled = true
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// wait blocks until the sampling loop has exited. Only valid after stop.
func (s *sampler) wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *sampler) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

func (s *sampler) run(ctx context.Context) {
	defer close(s.done)

	s.logger.Debug().Dur("interval", s.interval).Msg("Sampler started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("Sampler stopped")
			return
		case <-ticker.C:
			s.sample(ctx)
		}
	}
}

// sample performs one tick: position, then duration (the channel does not
// reliably tolerate concurrent queries, so the two are strictly sequential),
// then trigger evaluation and the progress report.
func (s *sampler) sample(ctx context.Context) {
	if s.stopped() {
		return
	}

	posMicros, err := s.client.GetFloat(ctx, "Position")
	if err != nil {
		s.fail(err)
		return
	}

	durMicros, err := s.client.GetFloat(ctx, "Duration")
	if err != nil {
		s.fail(err)
		return
	}

	pos := time.Duration(posMicros) * time.Microsecond
	dur := time.Duration(durMicros) * time.Microsecond

	var ratio float64
	if durMicros > 0 {
		ratio = posMicros / durMicros
	}

	if s.stopped() {
		return
	}

	s.evaluate(pos)
	s.progress(Progress{Position: pos, Duration: dur, Progress: ratio})
}

// fail reports a sample failure unless sampling was disabled while the
// query was in flight; stale errors after an explicit stop are noise.
func (s *sampler) fail(err error) {
	if s.stopped() {
		return
	}
	s.logger.Debug().Err(err).Msg("Sample failed")
	s.failure(&CommandError{Op: "sample", Err: err})
}
