package life

import (
	"image/color"
	"testing"
)

func TestWithGridDimensionsRectangular(t *testing.T) {
	sim, err := NewSimulator(
		WithCPUOnly(),
		WithGridDimensions(6, 4),
		WithPattern(Blinker, 1, 1),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer sim.Close()

	initial, err := sim.ReadGrid()
	if err != nil {
		t.Fatal(err)
	}
	if initial.Width() != 6 || initial.Height() != 4 {
		t.Fatalf("board is %dx%d, want 6x4", initial.Width(), initial.Height())
	}

	for i := 0; i < 2; i++ {
		if err := sim.Step(); err != nil {
			t.Fatal(err)
		}
	}
	after, err := sim.ReadGrid()
	if err != nil {
		t.Fatal(err)
	}
	if !initial.Equal(after) {
		t.Error("blinker did not oscillate with period 2 on a rectangular board")
	}
}

func TestColorOptionsReachFrame(t *testing.T) {
	sim, err := NewSimulator(
		WithCPUOnly(),
		WithGridSize(4),
		WithCellSize(2),
		WithPattern(Blinker, 0, 0),
		WithCellColor(color.RGBA{R: 255, A: 255}),
		WithBackgroundColor(color.RGBA{B: 255, A: 255}),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer sim.Close()

	f, err := sim.RenderFrame()
	if err != nil {
		t.Fatal(err)
	}
	pix := f.Image().Pix

	alive := [4]byte{255, 0, 0, 255}
	dead := [4]byte{0, 0, 255, 255}
	if got := [4]byte(pix[0:4]); got != alive {
		t.Errorf("live cell pixel = %v, want %v", got, alive)
	}
	last := len(pix) - 4
	if got := [4]byte(pix[last:]); got != dead {
		t.Errorf("dead cell pixel = %v, want %v", got, dead)
	}
}

func TestPremulFloats(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want [4]float32
	}{
		{"white", color.White, [4]float32{1, 1, 1, 1}},
		{"black", color.Black, [4]float32{0, 0, 0, 1}},
		{"rgba", color.RGBA{R: 128, G: 64, B: 32, A: 255},
			[4]float32{128.0 / 255, 64.0 / 255, 32.0 / 255, 1}},
		{"half alpha", color.NRGBA{R: 255, G: 255, B: 255, A: 128},
			[4]float32{128.0 / 255, 128.0 / 255, 128.0 / 255, 128.0 / 255}},
	}
	const eps = 1e-3
	for _, tt := range tests {
		got := premulFloats(tt.c)
		for i := range got {
			d := got[i] - tt.want[i]
			if d < -eps || d > eps {
				t.Errorf("%s: premulFloats()[%d] = %v, want %v", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}
