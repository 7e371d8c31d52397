package life

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/life/internal/gpu"
)

// Simulator errors.
var (
	// ErrSimulatorClosed is returned when using a closed Simulator.
	ErrSimulatorClosed = errors.New("life: simulator closed")

	// ErrDeviceLost is returned once the GPU device failed. The
	// Simulator refuses further work; create a new one to recover.
	ErrDeviceLost = errors.New("life: device lost")
)

// Simulator owns one Game of Life board and advances it generation by
// generation, on the GPU when a device is available and on the CPU
// otherwise.
//
// Simulator is not safe for concurrent use; Runner serializes access.
type Simulator struct {
	opts   simOptions
	engine *gpu.Engine // nil in CPU mode
	grid   *Grid       // seed snapshot, and the live board in CPU mode
	gen    uint64      // CPU-mode generation counter
	closed bool
}

// NewSimulator builds a board from the options, seeds it, and brings
// up the GPU engine. When no GPU is available the Simulator logs a
// warning and falls back to the CPU stepper; WithCPUOnly skips device
// acquisition entirely.
func NewSimulator(opts ...Option) (*Simulator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	grid, err := NewGrid(o.width, o.height)
	if err != nil {
		return nil, err
	}
	if o.pattern != nil {
		grid.Stamp(*o.pattern, o.patternX, o.patternY)
	} else {
		seed := o.seed
		if !o.seeded {
			seed = time.Now().UnixNano()
		}
		grid.RandomFill(seed, o.density)
	}

	s := &Simulator{opts: o, grid: grid}
	if o.cpuOnly {
		logger().Info("simulator ready", "mode", "cpu", "grid", fmt.Sprintf("%dx%d", o.width, o.height))
		return s, nil
	}

	engine, err := gpu.NewEngine(gpu.SimConfig{
		GridWidth:  uint32(o.width),
		GridHeight: uint32(o.height),
		CellSize:   uint32(o.cellSize),
		AliveColor: o.aliveColor,
		DeadColor:  o.deadColor,
	})
	if err != nil {
		logger().Warn("GPU unavailable, falling back to CPU", "error", err)
		return s, nil
	}
	if err := engine.SeedCells(grid.Cells()); err != nil {
		engine.Close()
		return nil, err
	}
	s.engine = engine
	logger().Info("simulator ready", "mode", "gpu", "grid", fmt.Sprintf("%dx%d", o.width, o.height))
	return s, nil
}

// GPU reports whether the simulation runs on a GPU device.
func (s *Simulator) GPU() bool { return s.engine != nil }

// TickInterval returns the configured Runner cadence.
func (s *Simulator) TickInterval() time.Duration { return s.opts.tickInterval }

// Generation returns the number of completed steps.
func (s *Simulator) Generation() uint64 {
	if s.engine != nil {
		return s.engine.Generation()
	}
	return s.gen
}

// Step advances the board one generation.
func (s *Simulator) Step() error {
	if s.closed {
		return ErrSimulatorClosed
	}
	if s.engine != nil {
		return s.wrapGPU(s.engine.Step())
	}
	s.grid.Step()
	s.gen++
	return nil
}

// StepFrame advances one generation and returns the rendered frame.
// On the GPU the compute and render passes share one command encoder
// and one submission.
func (s *Simulator) StepFrame() (*Frame, error) {
	if s.closed {
		return nil, ErrSimulatorClosed
	}
	if s.engine != nil {
		if err := s.wrapGPU(s.engine.StepFrame()); err != nil {
			return nil, err
		}
		return s.readFrame()
	}
	s.grid.Step()
	s.gen++
	return s.rasterize(), nil
}

// RenderFrame renders the current board without advancing it.
func (s *Simulator) RenderFrame() (*Frame, error) {
	if s.closed {
		return nil, ErrSimulatorClosed
	}
	if s.engine != nil {
		if err := s.wrapGPU(s.engine.Render()); err != nil {
			return nil, err
		}
		return s.readFrame()
	}
	return s.rasterize(), nil
}

// ReadGrid returns a snapshot of the current board. In GPU mode the
// cell buffer is read back from the device.
func (s *Simulator) ReadGrid() (*Grid, error) {
	if s.closed {
		return nil, ErrSimulatorClosed
	}
	if s.engine == nil {
		return s.grid.Clone(), nil
	}
	cells, err := s.engine.ReadCells()
	if err != nil {
		return nil, s.wrapGPU(err)
	}
	g, err := NewGrid(s.opts.width, s.opts.height)
	if err != nil {
		return nil, err
	}
	copy(g.cells, cells)
	return g, nil
}

// Reset reseeds the board with the given grid and restarts the
// generation counter.
func (s *Simulator) Reset(g *Grid) error {
	if s.closed {
		return ErrSimulatorClosed
	}
	if g.Width() != s.opts.width || g.Height() != s.opts.height {
		return fmt.Errorf("life: reset grid is %dx%d, board is %dx%d",
			g.Width(), g.Height(), s.opts.width, s.opts.height)
	}
	s.grid = g.Clone()
	s.gen = 0
	if s.engine != nil {
		return s.wrapGPU(s.engine.SeedCells(g.Cells()))
	}
	return nil
}

// Resize rebuilds the board with new dimensions. Cells in the region
// shared with the old board are preserved and new cells start dead.
// The generation counter restarts; in GPU mode the engine is rebuilt
// with freshly sized buffers.
func (s *Simulator) Resize(width, height int) error {
	if s.closed {
		return ErrSimulatorClosed
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("life: invalid grid dimensions %dx%d", width, height)
	}
	if width == s.opts.width && height == s.opts.height {
		return nil
	}

	cur, err := s.ReadGrid()
	if err != nil {
		return err
	}
	next, err := NewGrid(width, height)
	if err != nil {
		return err
	}
	for y := 0; y < min(height, cur.Height()); y++ {
		for x := 0; x < min(width, cur.Width()); x++ {
			next.Set(x, y, cur.Get(x, y))
		}
	}

	if s.engine != nil {
		engine, err := gpu.NewEngine(gpu.SimConfig{
			GridWidth:  uint32(width),
			GridHeight: uint32(height),
			CellSize:   uint32(s.opts.cellSize),
			AliveColor: s.opts.aliveColor,
			DeadColor:  s.opts.deadColor,
		})
		if err != nil {
			return s.wrapGPU(err)
		}
		if err := engine.SeedCells(next.Cells()); err != nil {
			engine.Close()
			return s.wrapGPU(err)
		}
		s.engine.Close()
		s.engine = engine
	}

	s.opts.width, s.opts.height = width, height
	s.grid = next
	s.gen = 0
	return nil
}

// Close releases GPU resources. Safe to call more than once.
func (s *Simulator) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.engine != nil {
		s.engine.Close()
		s.engine = nil
	}
	return nil
}

// readFrame reads the offscreen target back into a Frame.
func (s *Simulator) readFrame() (*Frame, error) {
	pixels, w, h, err := s.engine.ReadPixels()
	if err != nil {
		return nil, s.wrapGPU(err)
	}
	return NewFrame(pixels, int(w), int(h), s.engine.Generation())
}

// rasterize draws the CPU board into a Frame, one solid square per
// cell, matching what the render pipeline produces.
func (s *Simulator) rasterize() *Frame {
	cs := s.opts.cellSize
	w := s.opts.width * cs
	h := s.opts.height * cs

	alive := rgbaBytes(s.opts.aliveColor)
	dead := rgbaBytes(s.opts.deadColor)

	pixels := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		row := pixels[y*w*4:]
		cy := y / cs
		for x := 0; x < w; x++ {
			c := dead
			if s.grid.cells[cy*s.opts.width+x/cs] != 0 {
				c = alive
			}
			copy(row[x*4:], c[:])
		}
	}
	f, _ := NewFrame(pixels, w, h, s.gen)
	return f
}

// wrapGPU maps engine device-loss errors onto the package error.
func (s *Simulator) wrapGPU(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gpu.ErrDeviceLost) {
		return fmt.Errorf("%w: %v", ErrDeviceLost, err)
	}
	return err
}

// rgbaBytes converts premultiplied floats to 8-bit RGBA.
func rgbaBytes(c [4]float32) [4]byte {
	var out [4]byte
	for i, v := range c {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[i] = byte(v*255 + 0.5)
	}
	return out
}
