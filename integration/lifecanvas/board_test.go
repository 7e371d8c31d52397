// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lifecanvas

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/life"
)

// stubProvider implements gpucontext.DeviceProvider for testing. The
// board only retains the provider, so nil device handles are fine.
type stubProvider struct{}

func (stubProvider) Device() gpucontext.Device   { return nil }
func (stubProvider) Queue() gpucontext.Queue     { return nil }
func (stubProvider) Adapter() gpucontext.Adapter { return nil }
func (stubProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

func testBoard(t *testing.T) *Board {
	t.Helper()
	sim, err := life.NewSimulator(
		life.WithCPUOnly(),
		life.WithGridSize(8),
		life.WithPattern(life.Blinker, 3, 3),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sim.Close() })

	b, err := New(stubProvider{}, sim)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestNewNilArguments(t *testing.T) {
	if _, err := New(nil, nil); err != ErrNilProvider {
		t.Errorf("New(nil, nil) error = %v, want ErrNilProvider", err)
	}
	if _, err := New(stubProvider{}, nil); err != ErrNilSimulator {
		t.Errorf("New(provider, nil) error = %v, want ErrNilSimulator", err)
	}
}

func TestProviderAccessor(t *testing.T) {
	b := testBoard(t)
	if b.Provider() == nil {
		t.Error("Provider() returned nil on an open board")
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if b.Provider() != nil {
		t.Error("Provider() after Close should be nil")
	}
}

func TestTickAdvancesGeneration(t *testing.T) {
	b := testBoard(t)
	if b.Generation() != 0 {
		t.Fatalf("initial generation = %d, want 0", b.Generation())
	}
	if err := b.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if b.Generation() != 1 {
		t.Errorf("generation after Tick = %d, want 1", b.Generation())
	}
	if !b.dirty {
		t.Error("Tick did not mark the board dirty")
	}
}

func TestRefreshDoesNotAdvance(t *testing.T) {
	b := testBoard(t)
	if err := b.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if b.Generation() != 0 {
		t.Errorf("generation after Refresh = %d, want 0", b.Generation())
	}
	if b.frame == nil {
		t.Error("Refresh did not cache a frame")
	}
}

func TestFlushCachesPlaceholder(t *testing.T) {
	b := testBoard(t)
	if err := b.Tick(); err != nil {
		t.Fatal(err)
	}

	tex, err := b.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	pending, ok := tex.(*pendingTexture)
	if !ok {
		t.Fatalf("first Flush returned %T, want a pending placeholder", tex)
	}
	if pending.width != b.frame.Width() || pending.height != b.frame.Height() {
		t.Errorf("placeholder is %dx%d, frame is %dx%d",
			pending.width, pending.height, b.frame.Width(), b.frame.Height())
	}
	if b.dirty {
		t.Error("Flush left the board dirty")
	}

	again, err := b.Flush()
	if err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if again != tex {
		t.Error("clean Flush did not return the cached texture")
	}
}

func TestFlushUpdatesPlaceholderAfterTick(t *testing.T) {
	b := testBoard(t)
	tex, err := b.Flush()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Tick(); err != nil {
		t.Fatal(err)
	}
	tex2, err := b.Flush()
	if err != nil {
		t.Fatal(err)
	}
	if tex2 != tex {
		t.Fatal("Flush recreated the placeholder instead of updating it")
	}
	pending := tex2.(*pendingTexture)
	if &pending.data[0] != &b.frame.Image().Pix[0] {
		t.Error("placeholder does not hold the latest frame pixels")
	}
}

func TestResizeRecreatesTexture(t *testing.T) {
	b := testBoard(t)
	tex, err := b.Flush()
	if err != nil {
		t.Fatal(err)
	}
	oldW := tex.(*pendingTexture).width

	if err := b.Resize(4, 4); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if b.frame != nil {
		t.Error("Resize did not drop the cached frame")
	}

	tex2, err := b.Flush()
	if err != nil {
		t.Fatalf("Flush after Resize: %v", err)
	}
	if tex2 == tex {
		t.Error("Flush after Resize reused the old texture")
	}
	if w := tex2.(*pendingTexture).width; w == oldW {
		t.Errorf("texture width %d did not change with the board", w)
	}

	g, err := b.Simulator().ReadGrid()
	if err != nil {
		t.Fatal(err)
	}
	if g.Width() != 4 || g.Height() != 4 {
		t.Errorf("simulation is %dx%d after Resize, want 4x4", g.Width(), g.Height())
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	sim, err := life.NewSimulator(
		life.WithCPUOnly(),
		life.WithGridSize(8),
		life.WithPattern(life.Block, 1, 1),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer sim.Close()

	b, err := New(stubProvider{}, sim)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if err := b.Resize(12, 6); err != nil {
		t.Fatal(err)
	}
	g, err := sim.ReadGrid()
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range [][2]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}} {
		if g.Get(p[0], p[1]) != 1 {
			t.Errorf("cell (%d,%d) lost across Resize", p[0], p[1])
		}
	}
	if got := g.Population(); got != 4 {
		t.Errorf("population after Resize = %d, want 4", got)
	}
	if sim.Generation() != 0 {
		t.Errorf("generation after Resize = %d, want 0", sim.Generation())
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := testBoard(t)
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if b.Simulator() != nil {
		t.Error("Simulator() after Close should be nil")
	}
	if err := b.Tick(); err != ErrBoardClosed {
		t.Errorf("Tick after Close = %v, want ErrBoardClosed", err)
	}
	if err := b.Refresh(); err != ErrBoardClosed {
		t.Errorf("Refresh after Close = %v, want ErrBoardClosed", err)
	}
	if _, err := b.Flush(); err != ErrBoardClosed {
		t.Errorf("Flush after Close = %v, want ErrBoardClosed", err)
	}
	if err := b.Resize(4, 4); err != ErrBoardClosed {
		t.Errorf("Resize after Close = %v, want ErrBoardClosed", err)
	}
}
