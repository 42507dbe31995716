package omx

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestProbeSucceedsAfterTransientFailures(t *testing.T) {
	fake := &fakeClient{statusFailures: 2, status: "Playing"}

	res, err := probeReady(context.Background(), fake, time.Millisecond, 5)
	if err != nil {
		t.Fatalf("probeReady: %v", err)
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
	if res.Status != "Playing" {
		t.Errorf("Status = %q, want Playing", res.Status)
	}
	if got := fake.statusQueries(); got != 3 {
		t.Errorf("status queries = %d, want 3 (no queries after success)", got)
	}
}

func TestProbeExhaustsBudget(t *testing.T) {
	fake := &fakeClient{statusFailures: 100}

	res, err := probeReady(context.Background(), fake, time.Millisecond, 4)
	if err == nil {
		t.Fatal("expected error")
	}

	var timeoutErr *ControlTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %T, want *ControlTimeoutError", err)
	}
	if timeoutErr.Attempts != 5 {
		t.Errorf("Attempts = %d, want max+1 = 5", timeoutErr.Attempts)
	}
	if timeoutErr.Err == nil {
		t.Error("underlying probe error not recorded")
	}
	if res.Attempts != 5 {
		t.Errorf("result Attempts = %d, want 5", res.Attempts)
	}
	if got := fake.statusQueries(); got != 4 {
		t.Errorf("status queries = %d, want 4", got)
	}
}

func TestProbeHonorsContext(t *testing.T) {
	fake := &fakeClient{statusFailures: 100}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := probeReady(ctx, fake, time.Hour, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if got := fake.statusQueries(); got != 1 {
		t.Errorf("status queries = %d, want 1", got)
	}
}
