package life

import (
	"fmt"
	"image/color"
	"time"
)

// Defaults used when no option overrides them.
const (
	// DefaultGridSize is the default board edge length.
	DefaultGridSize = 32

	// DefaultCellSize is the default cell edge length in pixels.
	DefaultCellSize = 10

	// DefaultTickInterval is the default simulation cadence.
	DefaultTickInterval = 500 * time.Millisecond

	// DefaultDensity is the default live probability for random seeding.
	DefaultDensity = 0.3
)

// Option configures a Simulator during creation.
//
// Example:
//
//	// Default 32x32 board, random seed
//	sim, err := life.NewSimulator()
//
//	// 64x64 board seeded with a glider
//	sim, err := life.NewSimulator(
//	    life.WithGridSize(64),
//	    life.WithPattern(life.Glider, 1, 1),
//	)
type Option func(*simOptions)

// simOptions collects the resolved configuration.
type simOptions struct {
	width        int
	height       int
	cellSize     int
	tickInterval time.Duration
	seed         int64
	seeded       bool
	density      float64
	pattern      *Pattern
	patternX     int
	patternY     int
	aliveColor   [4]float32
	deadColor    [4]float32
	cpuOnly      bool
}

func defaultOptions() simOptions {
	return simOptions{
		width:        DefaultGridSize,
		height:       DefaultGridSize,
		cellSize:     DefaultCellSize,
		tickInterval: DefaultTickInterval,
		density:      DefaultDensity,
		aliveColor:   [4]float32{0.22, 0.85, 0.45, 1},
		deadColor:    [4]float32{0.04, 0.05, 0.08, 1},
	}
}

func (o *simOptions) validate() error {
	if o.width < 1 || o.height < 1 {
		return fmt.Errorf("life: invalid grid dimensions %dx%d", o.width, o.height)
	}
	if o.cellSize < 1 {
		return fmt.Errorf("life: invalid cell size %d", o.cellSize)
	}
	if o.tickInterval <= 0 {
		return fmt.Errorf("life: invalid tick interval %v", o.tickInterval)
	}
	if o.density < 0 || o.density > 1 {
		return fmt.Errorf("life: density %v out of [0,1]", o.density)
	}
	return nil
}

// WithGridSize sets a square board edge length.
func WithGridSize(n int) Option {
	return func(o *simOptions) { o.width, o.height = n, n }
}

// WithGridDimensions sets a rectangular board.
func WithGridDimensions(width, height int) Option {
	return func(o *simOptions) { o.width, o.height = width, height }
}

// WithCellSize sets the rendered cell edge length in pixels.
func WithCellSize(px int) Option {
	return func(o *simOptions) { o.cellSize = px }
}

// WithTickInterval sets the Runner cadence carried by the Simulator.
func WithTickInterval(d time.Duration) Option {
	return func(o *simOptions) { o.tickInterval = d }
}

// WithSeed fixes the PRNG seed for random seeding, making the run
// reproducible. Without it the seed is taken from the clock.
func WithSeed(seed int64) Option {
	return func(o *simOptions) { o.seed, o.seeded = seed, true }
}

// WithDensity sets the live probability for random seeding.
func WithDensity(density float64) Option {
	return func(o *simOptions) { o.density = density }
}

// WithPattern seeds the board with a single pattern at (x, y) instead
// of a random fill.
func WithPattern(p Pattern, x, y int) Option {
	return func(o *simOptions) {
		o.pattern = &p
		o.patternX, o.patternY = x, y
	}
}

// WithCellColor sets the live cell color.
func WithCellColor(c color.Color) Option {
	return func(o *simOptions) { o.aliveColor = premulFloats(c) }
}

// WithBackgroundColor sets the dead cell and clear color.
func WithBackgroundColor(c color.Color) Option {
	return func(o *simOptions) { o.deadColor = premulFloats(c) }
}

// WithCPUOnly skips GPU device acquisition and simulates on the CPU.
func WithCPUOnly() Option {
	return func(o *simOptions) { o.cpuOnly = true }
}

// premulFloats converts a color to premultiplied RGBA floats.
func premulFloats(c color.Color) [4]float32 {
	r, g, b, a := c.RGBA()
	return [4]float32{
		float32(r) / 0xffff,
		float32(g) / 0xffff,
		float32(b) / 0xffff,
		float32(a) / 0xffff,
	}
}
