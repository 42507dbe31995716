package omx

import (
	"context"
	"time"
)

// Readiness probing defaults. The player claims its bus name a moment after
// launch with small, roughly constant latency, so a fixed period is enough;
// backoff would only delay the ready signal.
const (
	probeInterval    = 500 * time.Millisecond
	probeMaxAttempts = 20
)

// probeResult carries the first successful status query and how many
// attempts it took.
type probeResult struct {
	Status   string
	Attempts int
}

// probeReady polls the status query on a fixed interval until it succeeds
// once, the attempt budget runs out, or ctx is cancelled. Failures before
// exhaustion are expected and swallowed; only the final one is reported,
// wrapped in a ControlTimeoutError whose attempt count is maxAttempts+1.
func probeReady(ctx context.Context, client ControlClient, interval time.Duration, maxAttempts int) (probeResult, error) {
	var lastErr error

	attempt := 0
	for {
		attempt++
		if attempt > maxAttempts {
			return probeResult{Attempts: attempt}, &ControlTimeoutError{Attempts: attempt, Err: lastErr}
		}

		status, err := client.PlayStatus(ctx)
		if err == nil {
			return probeResult{Status: status, Attempts: attempt}, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return probeResult{Attempts: attempt}, ctx.Err()
		case <-time.After(interval):
		}
	}
}
