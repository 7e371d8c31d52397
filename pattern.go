package life

import (
	"fmt"
	"math/rand"
	"sort"
)

// Pattern is a named set of live cell offsets relative to a stamp
// origin. Offsets may exceed the board; Stamp wraps them toroidally.
type Pattern struct {
	Name  string
	Cells [][2]int
}

// Well-known patterns.
var (
	// Blinker oscillates between a horizontal and a vertical bar
	// with period 2.
	Blinker = Pattern{Name: "blinker", Cells: [][2]int{{0, 0}, {1, 0}, {2, 0}}}

	// Glider translates one cell down-right every 4 generations.
	Glider = Pattern{Name: "glider", Cells: [][2]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}}

	// Block is the 2x2 still life.
	Block = Pattern{Name: "block", Cells: [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}}

	// Toad oscillates with period 2.
	Toad = Pattern{Name: "toad", Cells: [][2]int{{1, 0}, {2, 0}, {3, 0}, {0, 1}, {1, 1}, {2, 1}}}

	// Beacon oscillates with period 2.
	Beacon = Pattern{Name: "beacon", Cells: [][2]int{
		{0, 0}, {1, 0}, {0, 1}, {1, 1},
		{2, 2}, {3, 2}, {2, 3}, {3, 3},
	}}
)

// patterns indexes the well-known patterns by name.
var patterns = map[string]Pattern{
	Blinker.Name: Blinker,
	Glider.Name:  Glider,
	Block.Name:   Block,
	Toad.Name:    Toad,
	Beacon.Name:  Beacon,
}

// LookupPattern returns a well-known pattern by name.
func LookupPattern(name string) (Pattern, error) {
	p, ok := patterns[name]
	if !ok {
		return Pattern{}, fmt.Errorf("life: unknown pattern %q", name)
	}
	return p, nil
}

// PatternNames lists the well-known pattern names, sorted.
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stamp places the pattern with its origin at (x, y), wrapping
// toroidally. Existing live cells outside the pattern are kept.
func (g *Grid) Stamp(p Pattern, x, y int) {
	for _, c := range p.Cells {
		g.Set(x+c[0], y+c[1], 1)
	}
}

// RandomFill seeds every cell of the board from a deterministic PRNG:
// each cell is alive with probability density. The same seed and
// density always produce the same board.
func (g *Grid) RandomFill(seed int64, density float64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range g.cells {
		if rng.Float64() < density {
			g.cells[i] = 1
		} else {
			g.cells[i] = 0
		}
	}
}
