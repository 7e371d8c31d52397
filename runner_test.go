package life

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func testSim(t *testing.T) *Simulator {
	t.Helper()
	sim, err := NewSimulator(WithCPUOnly(), WithGridSize(8), WithPattern(Blinker, 3, 3))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sim.Close() })
	return sim
}

func TestRunnerMaxTicks(t *testing.T) {
	sim := testSim(t)
	r := NewRunner(sim, time.Millisecond)

	var frames atomic.Uint64
	r.OnFrame(func(f *Frame, gen uint64) {
		if f == nil {
			t.Error("nil frame in callback")
		}
		frames.Add(1)
	})
	r.MaxTicks(5)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := frames.Load(); got != 5 {
		t.Errorf("frames = %d, want 5", got)
	}
	if sim.Generation() != 5 {
		t.Errorf("Generation() = %d, want 5", sim.Generation())
	}
}

func TestRunnerContextCancel(t *testing.T) {
	sim := testSim(t)
	r := NewRunner(sim, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run after cancel = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestRunnerStop(t *testing.T) {
	sim := testSim(t)
	r := NewRunner(sim, time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	r.Stop()
	r.Stop() // idempotent

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run after Stop = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestRunnerStartedTwice(t *testing.T) {
	sim := testSim(t)
	r := NewRunner(sim, time.Millisecond)
	r.MaxTicks(1)

	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.Run(context.Background()); err != ErrRunnerStarted {
		t.Errorf("second Run = %v, want ErrRunnerStarted", err)
	}
}

func TestRunnerDefaultInterval(t *testing.T) {
	sim := testSim(t)
	r := NewRunner(sim, 0)
	if r.interval != sim.TickInterval() {
		t.Errorf("interval = %v, want %v", r.interval, sim.TickInterval())
	}
}
