package omx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// fakeClient is a scripted ControlClient for tests. Position responses are
// consumed from positions in order; the last one repeats.
type fakeClient struct {
	mu sync.Mutex

	positions []float64 // microseconds
	posIdx    int
	posErr    error

	duration float64 // microseconds
	durErr   error
	durCalls int

	statusFailures int // PlayStatus calls to fail before succeeding
	statusCalls    int
	status         string

	pauseErr  error
	resumeErr error
	stopErr   error
	seekErr   error

	pauses  int
	resumes int
	stops   int
	seeks   []time.Duration
}

func (f *fakeClient) GetFloat(_ context.Context, property string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch property {
	case "Position":
		if f.posErr != nil {
			return 0, f.posErr
		}
		if len(f.positions) == 0 {
			return 0, nil
		}
		v := f.positions[f.posIdx]
		if f.posIdx < len(f.positions)-1 {
			f.posIdx++
		}
		return v, nil
	case "Duration":
		f.durCalls++
		if f.durErr != nil {
			return 0, f.durErr
		}
		return f.duration, nil
	default:
		return 0, fmt.Errorf("unknown property %s", property)
	}
}

func (f *fakeClient) PlayStatus(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statusCalls++
	if f.statusCalls <= f.statusFailures {
		return "", errors.New("name has no owner")
	}
	if f.status == "" {
		return "Playing", nil
	}
	return f.status, nil
}

func (f *fakeClient) SetPosition(_ context.Context, pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seekErr != nil {
		return f.seekErr
	}
	f.seeks = append(f.seeks, pos)
	return nil
}

func (f *fakeClient) Pause(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pauseErr != nil {
		return f.pauseErr
	}
	f.pauses++
	return nil
}

func (f *fakeClient) Resume(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resumeErr != nil {
		return f.resumeErr
	}
	f.resumes++
	return nil
}

func (f *fakeClient) Stop(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopErr != nil {
		return f.stopErr
	}
	f.stops++
	return nil
}

func (f *fakeClient) statusQueries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}
