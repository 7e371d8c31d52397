// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package lifecanvas presents a life simulation inside a GoGPU
// application. It wraps a life.Simulator, keeps its latest rendered
// frame in a GPU texture, and draws that texture through the
// gpucontext interfaces.
package lifecanvas

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/life"
)

// Common errors returned by Board operations.
var (
	// ErrBoardClosed is returned when operations are attempted on a closed board.
	ErrBoardClosed = errors.New("lifecanvas: board is closed")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("lifecanvas: nil DeviceProvider")

	// ErrNilSimulator is returned when a nil Simulator is passed.
	ErrNilSimulator = errors.New("lifecanvas: nil Simulator")

	// ErrInvalidRenderer is returned when the draw context has no
	// gpucontext.TextureCreator.
	ErrInvalidRenderer = errors.New("lifecanvas: dc must provide a gpucontext.TextureCreator")

	// ErrInvalidDrawContext is returned when the created texture does not
	// implement gpucontext.Texture.
	ErrInvalidDrawContext = errors.New("lifecanvas: texture does not implement gpucontext.Texture")
)

// textureDestroyer matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// Board wraps a life.Simulator with gogpu integration. The simulation
// frame is uploaded to a GPU texture lazily and re-uploaded only when
// a new generation has been rendered.
//
// Board is NOT safe for concurrent use.
type Board struct {
	provider    gpucontext.DeviceProvider
	sim         *life.Simulator
	frame       *life.Frame
	texture     any  // lazily created (*gogpu.Texture)
	oldTexture  any  // previous texture awaiting deferred destruction
	dirty       bool // needs GPU upload
	sizeChanged bool // resize pending, texture must be recreated
	closed      bool
}

// New wraps a Simulator. The provider should come from
// gogpu.App.GPUContextProvider(); it is retained so embedding
// applications can share the GPU device. The caller keeps ownership of
// the Simulator and must close both.
func New(provider gpucontext.DeviceProvider, sim *life.Simulator) (*Board, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if sim == nil {
		return nil, ErrNilSimulator
	}
	return &Board{provider: provider, sim: sim}, nil
}

// Provider returns the DeviceProvider associated with this board.
// Returns nil if the board is closed.
func (b *Board) Provider() gpucontext.DeviceProvider {
	if b.closed {
		return nil
	}
	return b.provider
}

// Simulator returns the wrapped simulation. Returns nil if the board
// is closed.
func (b *Board) Simulator() *life.Simulator {
	if b.closed {
		return nil
	}
	return b.sim
}

// Tick advances the simulation one generation and caches the rendered
// frame for the next RenderTo.
func (b *Board) Tick() error {
	if b.closed {
		return ErrBoardClosed
	}
	frame, err := b.sim.StepFrame()
	if err != nil {
		return err
	}
	b.frame = frame
	b.dirty = true
	return nil
}

// Refresh re-renders the current generation without advancing it.
func (b *Board) Refresh() error {
	if b.closed {
		return ErrBoardClosed
	}
	frame, err := b.sim.RenderFrame()
	if err != nil {
		return err
	}
	b.frame = frame
	b.dirty = true
	return nil
}

// Generation returns the generation of the cached frame, or the
// simulator's current generation when nothing is cached yet.
func (b *Board) Generation() uint64 {
	if b.frame != nil {
		return b.frame.Generation()
	}
	return b.sim.Generation()
}

// Resize rebuilds the board with new grid dimensions, in cells. The
// simulation is resized, the cached frame is dropped and the GPU
// texture is recreated on the next Flush or RenderTo.
func (b *Board) Resize(width, height int) error {
	if b.closed {
		return ErrBoardClosed
	}
	if err := b.sim.Resize(width, height); err != nil {
		return err
	}
	b.frame = nil
	b.sizeChanged = true
	b.dirty = true
	return nil
}

// Flush uploads the cached frame to the GPU texture if dirty and
// returns the texture for manual drawing if needed. When no frame has
// been rendered yet, Refresh runs first.
//
// The real GPU texture can only be created once a TextureCreator is
// available, so the first Flush returns a placeholder that RenderTo
// resolves. Subsequent calls only upload data if the dirty flag is set.
func (b *Board) Flush() (any, error) {
	if b.closed {
		return nil, ErrBoardClosed
	}
	if b.frame == nil {
		if err := b.Refresh(); err != nil {
			return nil, err
		}
	}

	// After a resize the old texture may still be referenced by
	// in-flight GPU command buffers. Keep it alive and destroy it in
	// RenderToPosition once the replacement has been written, which
	// waits for the GPU internally.
	if b.sizeChanged {
		if b.texture != nil {
			if b.oldTexture != nil {
				if destroyer, ok := b.oldTexture.(textureDestroyer); ok {
					destroyer.Destroy()
				}
			}
			b.oldTexture = b.texture
			b.texture = nil
		}
		b.sizeChanged = false
	}

	if !b.dirty && b.texture != nil {
		return b.texture, nil
	}

	data := b.frame.Image().Pix

	if b.texture == nil {
		b.texture = &pendingTexture{
			width:  b.frame.Width(),
			height: b.frame.Height(),
			data:   data,
		}
		b.dirty = false
		return b.texture, nil
	}

	if pending, ok := b.texture.(*pendingTexture); ok {
		pending.width = b.frame.Width()
		pending.height = b.frame.Height()
		pending.data = data
		b.dirty = false
		return b.texture, nil
	}

	if updater, ok := b.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(data); err != nil {
			return nil, fmt.Errorf("lifecanvas: texture update failed: %w", err)
		}
	}
	b.dirty = false
	return b.texture, nil
}

// RenderTo draws the cached frame at (0, 0).
// The dc parameter should be obtained from gogpu.Context.AsTextureDrawer().
func (b *Board) RenderTo(dc gpucontext.TextureDrawer) error {
	return b.RenderToPosition(dc, 0, 0)
}

// RenderToPosition draws the cached frame at (x, y), flushing first
// and creating the real GPU texture when a pending placeholder is
// outstanding.
func (b *Board) RenderToPosition(dc gpucontext.TextureDrawer, x, y float32) error {
	tex, err := b.Flush()
	if err != nil {
		return err
	}

	if pending, isPending := tex.(*pendingTexture); isPending {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrInvalidRenderer
		}
		realTex, err := creator.NewTextureFromRGBA(pending.width, pending.height, pending.data)
		if err != nil {
			return fmt.Errorf("lifecanvas: NewTextureFromRGBA failed: %w", err)
		}
		// Frame colors are premultiplied; use the BlendFactorOne path.
		if pt, ok := realTex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}
		b.texture = realTex
		tex = realTex

		// NewTextureFromRGBA waits for the GPU, so the deferred
		// texture is no longer in use and can go now.
		if b.oldTexture != nil {
			if destroyer, ok := b.oldTexture.(textureDestroyer); ok {
				destroyer.Destroy()
			}
			b.oldTexture = nil
		}
	}

	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return ErrInvalidDrawContext
	}
	return dc.DrawTexture(gpuTex, x, y)
}

// pendingTexture holds the data needed to create the real texture once
// a TextureCreator is available, during RenderTo.
type pendingTexture struct {
	width  int
	height int
	data   []byte
}

// Close releases the textures. The wrapped Simulator is not closed.
// Close is idempotent.
func (b *Board) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if b.oldTexture != nil {
		if destroyer, ok := b.oldTexture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		b.oldTexture = nil
	}
	if b.texture != nil {
		if destroyer, ok := b.texture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		b.texture = nil
	}
	b.frame = nil
	b.sim = nil
	b.provider = nil
	return nil
}
