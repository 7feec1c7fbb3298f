package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeLifecycle struct {
	calls atomic.Int64
	err   error
}

func (f *fakeLifecycle) SweepOverdue(ctx context.Context) (int, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func TestRun_SweepsImmediatelyAndOnTicks(t *testing.T) {
	svc := &fakeLifecycle{}
	s := New(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// The initial sweep plus at least one tick.
	deadline := time.After(2 * time.Second)
	for svc.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("only %d sweeps before deadline", svc.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestRun_SweepErrorDoesNotStopLoop(t *testing.T) {
	svc := &fakeLifecycle{err: errors.New("database is away")}
	s := New(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for svc.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("loop stalled after failures: %d sweeps", svc.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestNew_DefaultInterval(t *testing.T) {
	s := New(&fakeLifecycle{}, 0)
	assert.Equal(t, DefaultInterval, s.interval)

	s = New(&fakeLifecycle{}, -time.Hour)
	assert.Equal(t, DefaultInterval, s.interval)
}
