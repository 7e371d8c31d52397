package life

import "fmt"

// Grid is the CPU-side board: row-major cell states, one uint32 per
// cell, 1 = alive. It implements the same B3/S23 rule as the compute
// shader and doubles as the fallback stepper when no GPU is available.
type Grid struct {
	width   int
	height  int
	cells   []uint32
	scratch []uint32
}

// NewGrid returns a dead board with the given dimensions.
func NewGrid(width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("life: invalid grid dimensions %dx%d", width, height)
	}
	return &Grid{
		width:   width,
		height:  height,
		cells:   make([]uint32, width*height),
		scratch: make([]uint32, width*height),
	}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Cells exposes the current states, row-major. The slice is live;
// callers that need a snapshot should Clone first.
func (g *Grid) Cells() []uint32 { return g.cells }

// Get returns the state at (x, y) with toroidal wraparound.
func (g *Grid) Get(x, y int) uint32 {
	x = wrap(x, g.width)
	y = wrap(y, g.height)
	return g.cells[y*g.width+x]
}

// Set writes the state at (x, y) with toroidal wraparound.
// Any nonzero state is stored as 1.
func (g *Grid) Set(x, y int, state uint32) {
	x = wrap(x, g.width)
	y = wrap(y, g.height)
	if state != 0 {
		state = 1
	}
	g.cells[y*g.width+x] = state
}

// Clone returns a deep copy of the board.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		width:   g.width,
		height:  g.height,
		cells:   make([]uint32, len(g.cells)),
		scratch: make([]uint32, len(g.cells)),
	}
	copy(c.cells, g.cells)
	return c
}

// Equal reports whether both boards have the same dimensions and states.
func (g *Grid) Equal(o *Grid) bool {
	if g.width != o.width || g.height != o.height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Population returns the number of live cells.
func (g *Grid) Population() int {
	n := 0
	for _, c := range g.cells {
		if c != 0 {
			n++
		}
	}
	return n
}

// NeighborCount returns the number of live cells in the Moore
// neighborhood of (x, y). Opposite edges are adjacent: the neighbors
// of (0, 0) include (width-1, height-1).
func (g *Grid) NeighborCount(x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n += int(g.Get(x+dx, y+dy))
		}
	}
	return n
}

// Step advances the board one generation.
func (g *Grid) Step() {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			idx := y*g.width + x
			alive := g.cells[idx] == 1
			if nextState(alive, g.NeighborCount(x, y)) {
				g.scratch[idx] = 1
			} else {
				g.scratch[idx] = 0
			}
		}
	}
	g.cells, g.scratch = g.scratch, g.cells
}

// nextState applies the B3/S23 rule: a live cell survives with 2 or 3
// live neighbors, a dead cell is born with exactly 3.
func nextState(alive bool, neighbors int) bool {
	if alive {
		return neighbors == 2 || neighbors == 3
	}
	return neighbors == 3
}

// wrap maps v into [0, n) with modulo semantics for negatives.
func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
