// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// engine.go orchestrates the simulation frame: one compute pass that
// advances the board a generation, one render pass that draws the
// freshly written buffer, a single fence-synchronized submit. The
// compute-to-render dependency inside a frame is carried purely by
// encoding order on the one queue; no fence sits between the passes.

package gpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Engine errors.
var (
	// ErrDeviceLost is returned after a submit or wait failure.
	// The engine refuses further work once the device is lost.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrEngineClosed is returned when using a closed engine.
	ErrEngineClosed = errors.New("gpu: engine closed")
)

// gpuTimeout bounds every fence wait.
const gpuTimeout = 5 * time.Second

// Engine owns the GPU resources of one simulation and advances it
// generation by generation.
//
// Engine is not safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	dev  *Device
	cfg  SimConfig
	bufs *cellBuffers
	pipe *pipelines

	generation uint64
	lost       bool
	closed     bool
}

// NewEngine opens a device and builds all pipelines and buffers for
// the given configuration. The caller must Close the engine.
func NewEngine(cfg SimConfig) (*Engine, error) {
	dev, err := OpenDevice()
	if err != nil {
		return nil, err
	}
	e, err := newEngine(dev, cfg)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return e, nil
}

// NewEngineWithDevice builds an engine on an externally owned device
// and queue. Close releases the engine's resources but not the device.
func NewEngineWithDevice(device hal.Device, queue hal.Queue, cfg SimConfig) (*Engine, error) {
	return newEngine(WrapDevice(device, queue), cfg)
}

func newEngine(dev *Device, cfg SimConfig) (*Engine, error) {
	if err := validateShaders(); err != nil {
		return nil, err
	}
	bufs, err := allocateBuffers(dev.device, dev.queue, &cfg)
	if err != nil {
		return nil, fmt.Errorf("allocate buffers: %w", err)
	}
	pipe, err := createPipelines(dev.device, &cfg, bufs)
	if err != nil {
		bufs.destroy(dev.device)
		return nil, fmt.Errorf("create pipelines: %w", err)
	}

	slogger().Info("life engine ready",
		"grid", fmt.Sprintf("%dx%d", cfg.GridWidth, cfg.GridHeight),
		"target", fmt.Sprintf("%dx%d", cfg.targetWidth(), cfg.targetHeight()))

	return &Engine{dev: dev, cfg: cfg, bufs: bufs, pipe: pipe}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() SimConfig { return e.cfg }

// Generation returns the number of completed steps.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// parity indexes the bind group pairs. The current board state lives
// in cells[generation&1]; the step from generation g reads that buffer
// and writes the other one.
func (e *Engine) parity() int { return int(e.generation & 1) }

// SeedCells uploads the initial board, writing identical bytes to both
// ping-pong buffers, and resets the generation counter.
func (e *Engine) SeedCells(cells []uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usable(); err != nil {
		return err
	}
	if uint32(len(cells)) != e.cfg.cellCount() {
		return fmt.Errorf("gpu: seed size %d, board has %d cells", len(cells), e.cfg.cellCount())
	}
	e.bufs.seed(e.dev.queue, PackCells(cells))
	e.generation = 0
	slogger().Debug("board seeded", "cells", len(cells))
	return nil
}

// Step advances the board one generation (compute pass only).
func (e *Engine) Step() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stepLocked(false)
}

// StepFrame advances one generation and renders the result into the
// offscreen target within the same command encoder.
func (e *Engine) StepFrame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stepLocked(true)
}

func (e *Engine) stepLocked(render bool) error {
	if err := e.usable(); err != nil {
		return err
	}

	encoder, err := e.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "life_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("life_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	src := e.parity()
	e.encodeStep(encoder, src)
	if render {
		// The render pass reads the buffer the compute pass just
		// wrote: the dst of computeBind[src] is cells[src^1].
		e.encodeRender(encoder, src^1)
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer e.dev.device.FreeCommandBuffer(cmdBuf)

	if err := e.submitAndWait(cmdBuf); err != nil {
		return err
	}

	e.generation++
	slogger().Debug("generation advanced",
		"generation", e.generation,
		"parity", e.parity(),
		"rendered", render)
	return nil
}

// Render draws the current board into the offscreen target without
// advancing it.
func (e *Engine) Render() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usable(); err != nil {
		return err
	}

	encoder, err := e.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "life_render_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("life_render"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	e.encodeRender(encoder, e.parity())

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer e.dev.device.FreeCommandBuffer(cmdBuf)

	return e.submitAndWait(cmdBuf)
}

// encodeStep records the compute pass for the step that starts at
// parity src.
func (e *Engine) encodeStep(encoder hal.CommandEncoder, src int) {
	groupsX := ComputeWorkgroupCount(e.cfg.GridWidth, lifeWorkgroupSize)
	groupsY := ComputeWorkgroupCount(e.cfg.GridHeight, lifeWorkgroupSize)

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "life_step_pass"})
	pass.SetPipeline(e.pipe.stepPipeline)
	pass.SetBindGroup(0, e.pipe.computeBind[src], nil)
	pass.Dispatch(groupsX, groupsY, 1)
	pass.End()
}

// encodeRender records the render pass reading cells[idx].
func (e *Engine) encodeRender(encoder hal.CommandEncoder, idx int) {
	rpDesc := &hal.RenderPassDescriptor{
		Label: "life_render_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       e.pipe.targetView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{
					R: float64(e.cfg.DeadColor[0]),
					G: float64(e.cfg.DeadColor[1]),
					B: float64(e.cfg.DeadColor[2]),
					A: float64(e.cfg.DeadColor[3]),
				},
			},
		},
	}
	rp := encoder.BeginRenderPass(rpDesc)
	rp.SetPipeline(e.pipe.renderPipeline)
	rp.SetBindGroup(0, e.pipe.renderBind[idx], nil)
	rp.SetVertexBuffer(0, e.bufs.QuadVtx, 0)
	rp.Draw(quadVertexCount, e.cfg.cellCount(), 0, 0)
	rp.End()
}

// submitAndWait submits one command buffer and blocks until the fence
// signals. Any failure marks the device lost.
func (e *Engine) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := e.dev.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer e.dev.device.DestroyFence(fence)

	if err := e.dev.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		e.lost = true
		return fmt.Errorf("%w: submit: %v", ErrDeviceLost, err)
	}
	ok, err := e.dev.device.Wait(fence, 1, gpuTimeout)
	if err != nil || !ok {
		e.lost = true
		return fmt.Errorf("%w: wait ok=%v err=%v", ErrDeviceLost, ok, err)
	}
	return nil
}

// ReadCells copies the current cell buffer into a staging buffer and
// reads it back as u32 states.
func (e *Engine) ReadCells() ([]uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usable(); err != nil {
		return nil, err
	}

	size := e.cfg.cellBufferSize()
	staging, err := e.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_cells_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer e.dev.device.DestroyBuffer(staging)

	encoder, err := e.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "life_readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("life_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	current := e.bufs.cells()[e.parity()]
	encoder.CopyBufferToBuffer(current, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer e.dev.device.FreeCommandBuffer(cmdBuf)

	if err := e.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	data := make([]byte, size)
	if err := e.dev.queue.ReadBuffer(staging, 0, data); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return UnpackCells(data), nil
}

// ReadPixels reads the offscreen target back as tightly packed RGBA.
// Rows in the staging buffer are padded to the 256-byte copy alignment
// and repacked on the CPU.
func (e *Engine) ReadPixels() ([]byte, uint32, uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usable(); err != nil {
		return nil, 0, 0, err
	}

	w, h := e.cfg.targetWidth(), e.cfg.targetHeight()
	paddedRow := alignTo(w*4, 256)
	size := uint64(paddedRow) * uint64(h)

	staging, err := e.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_pixels_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create staging buffer: %w", err)
	}
	defer e.dev.device.DestroyBuffer(staging)

	encoder, err := e.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "life_pixels_encoder",
	})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("life_pixels"); err != nil {
		return nil, 0, 0, fmt.Errorf("begin encoding: %w", err)
	}

	// The target sits in attachment layout after rendering; the copy
	// needs transfer-src. No-op on backends without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: e.pipe.targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(e.pipe.targetTex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: paddedRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: e.pipe.targetTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("end encoding: %w", err)
	}
	defer e.dev.device.FreeCommandBuffer(cmdBuf)

	if err := e.submitAndWait(cmdBuf); err != nil {
		return nil, 0, 0, err
	}

	padded := make([]byte, size)
	if err := e.dev.queue.ReadBuffer(staging, 0, padded); err != nil {
		return nil, 0, 0, fmt.Errorf("readback: %w", err)
	}

	pixels := repackBGRA(padded, w, h, paddedRow)
	return pixels, w, h, nil
}

func (e *Engine) usable() error {
	if e.closed {
		return ErrEngineClosed
	}
	if e.lost {
		return ErrDeviceLost
	}
	return nil
}

// Close releases all engine resources. Safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.pipe != nil {
		e.pipe.destroy(e.dev.device)
		e.pipe = nil
	}
	if e.bufs != nil {
		e.bufs.destroy(e.dev.device)
		e.bufs = nil
	}
	e.dev.Close()
}

// alignTo rounds v up to the next multiple of align (a power of two).
func alignTo(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}

// repackBGRA drops row padding and swizzles BGRA to RGBA.
func repackBGRA(padded []byte, w, h, paddedRow uint32) []byte {
	out := make([]byte, w*h*4)
	for y := uint32(0); y < h; y++ {
		src := padded[y*paddedRow:]
		dst := out[y*w*4:]
		for x := uint32(0); x < w; x++ {
			dst[x*4+0] = src[x*4+2]
			dst[x*4+1] = src[x*4+1]
			dst[x*4+2] = src[x*4+0]
			dst[x*4+3] = src[x*4+3]
		}
	}
	return out
}
