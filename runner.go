package life

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRunnerStarted is returned when Run is called twice.
var ErrRunnerStarted = errors.New("life: runner already started")

// Runner drives a Simulator on a fixed cadence until the context is
// canceled or Stop is called. Each tick advances one generation and
// renders a frame.
type Runner struct {
	sim      *Simulator
	interval time.Duration
	onFrame  func(*Frame, uint64)
	maxTicks uint64

	mu       sync.Mutex
	started  bool
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRunner wraps a Simulator. A non-positive interval falls back to
// the Simulator's configured tick interval.
func NewRunner(sim *Simulator, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = sim.TickInterval()
	}
	return &Runner{
		sim:      sim,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// OnFrame registers a callback invoked after every tick with the
// rendered frame and its generation. Must be set before Run.
func (r *Runner) OnFrame(fn func(*Frame, uint64)) {
	r.onFrame = fn
}

// MaxTicks limits the run to n generations; 0 means unlimited.
// Must be set before Run.
func (r *Runner) MaxTicks(n uint64) {
	r.maxTicks = n
}

// Run blocks, ticking the simulation until the context is canceled,
// Stop is called, MaxTicks is reached, or a step fails. Context
// cancellation and Stop are clean shutdowns and return nil.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrRunnerStarted
	}
	r.started = true
	r.mu.Unlock()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger().Info("runner started", "interval", r.interval)
	var ticks uint64
	for {
		select {
		case <-ctx.Done():
			logger().Info("runner stopped", "reason", "context", "ticks", ticks)
			return nil
		case <-r.stop:
			logger().Info("runner stopped", "reason", "stop", "ticks", ticks)
			return nil
		case <-ticker.C:
			frame, err := r.sim.StepFrame()
			if err != nil {
				logger().Warn("runner stopped", "reason", "error", "ticks", ticks)
				return err
			}
			ticks++
			if r.onFrame != nil {
				r.onFrame(frame, frame.Generation())
			}
			if r.maxTicks > 0 && ticks >= r.maxTicks {
				logger().Info("runner stopped", "reason", "maxTicks", "ticks", ticks)
				return nil
			}
		}
	}
}

// Stop signals Run to return after the current tick. Safe to call
// from any goroutine and more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}
