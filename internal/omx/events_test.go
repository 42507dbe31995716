package omx

import (
	"testing"
	"time"
)

func TestSubscriptionDelivers(t *testing.T) {
	s := newSubscription()

	s.sendProgress(Progress{Position: time.Second, Duration: 2 * time.Second, Progress: 0.5})

	select {
	case p := <-s.Progress:
		if p.Progress != 0.5 {
			t.Errorf("Progress = %v, want 0.5", p.Progress)
		}
	default:
		t.Fatal("no progress delivered")
	}
}

func TestSubscriptionDropsWhenFull(t *testing.T) {
	s := newSubscription()

	// Overfill the buffer; sends must not block and extras are dropped.
	for i := 0; i < eventBufferSize+10; i++ {
		s.sendProgress(Progress{Progress: float64(i)})
	}

	received := 0
	for {
		select {
		case <-s.Progress:
			received++
			continue
		default:
		}
		break
	}

	if received != eventBufferSize {
		t.Errorf("received %d events, want %d", received, eventBufferSize)
	}
}

func TestSubscriptionIndependentChannels(t *testing.T) {
	s := newSubscription()

	s.sendPaused()
	s.sendStopped()

	select {
	case <-s.Paused:
	default:
		t.Error("no paused event")
	}
	select {
	case <-s.Stopped:
	default:
		t.Error("no stopped event")
	}
	select {
	case <-s.Resumed:
		t.Error("unexpected resumed event")
	default:
	}
}
