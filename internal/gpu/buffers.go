// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// cellBuffers holds every long-lived buffer of the simulation.
// CellsA and CellsB are the ping-pong pair; their roles alternate
// each generation. The uniform and quad buffers never change after
// upload.
type cellBuffers struct {
	CellsA  hal.Buffer
	CellsB  hal.Buffer
	Config  hal.Buffer
	QuadVtx hal.Buffer
}

// cells returns the ping-pong pair indexed by parity.
func (b *cellBuffers) cells() [2]hal.Buffer { return [2]hal.Buffer{b.CellsA, b.CellsB} }

// allocateBuffers creates the buffer set and uploads the uniform and
// the unit quad. Cell buffers start zeroed; SeedCells fills them.
func allocateBuffers(device hal.Device, queue hal.Queue, cfg *SimConfig) (*cellBuffers, error) {
	// Cell buffers are copy sources for readback and copy targets for
	// seeding. The compute pass binds one as read-only storage and the
	// other as read-write; both need the same usage flags.
	cellUsage := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	uniformCPU := gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	vertexCPU := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst

	bufs := &cellBuffers{}

	type bufSpec struct {
		target *hal.Buffer
		label  string
		size   uint64
		usage  gputypes.BufferUsage
	}

	specs := []bufSpec{
		{&bufs.CellsA, "life_cells_a", cfg.cellBufferSize(), cellUsage},
		{&bufs.CellsB, "life_cells_b", cfg.cellBufferSize(), cellUsage},
		{&bufs.Config, "life_config", cfg.sizeInBytes(), uniformCPU},
		{&bufs.QuadVtx, "life_quad_vtx", quadVertexBytes, vertexCPU},
	}

	for _, spec := range specs {
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: spec.label,
			Size:  spec.size,
			Usage: spec.usage,
		})
		if err != nil {
			bufs.destroy(device)
			return nil, fmt.Errorf("create %s: %w", spec.label, err)
		}
		*spec.target = buf
	}

	queue.WriteBuffer(bufs.Config, 0, cfg.toBytes())
	queue.WriteBuffer(bufs.QuadVtx, 0, quadVertices())

	// Zero both cell buffers so an unseeded board is fully dead.
	zero := make([]byte, cfg.cellBufferSize())
	queue.WriteBuffer(bufs.CellsA, 0, zero)
	queue.WriteBuffer(bufs.CellsB, 0, zero)

	slogger().Debug("buffers allocated",
		"cellBytes", cfg.cellBufferSize(),
		"uniformBytes", cfg.sizeInBytes())

	return bufs, nil
}

// seed uploads the same packed bytes to both cell buffers so the
// initial contents are bitwise identical regardless of which buffer
// the first generation reads.
func (b *cellBuffers) seed(queue hal.Queue, packed []byte) {
	queue.WriteBuffer(b.CellsA, 0, packed)
	queue.WriteBuffer(b.CellsB, 0, packed)
}

// destroy releases all buffers. Safe on partially allocated sets.
func (b *cellBuffers) destroy(device hal.Device) {
	for _, buf := range []*hal.Buffer{&b.QuadVtx, &b.Config, &b.CellsB, &b.CellsA} {
		if *buf != nil {
			device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
}

// quadVertexStride is the byte stride of one quad vertex (vec2<f32>).
const quadVertexStride = 8

// quadVertexBytes is the size of the unit quad vertex buffer.
const quadVertexBytes = quadVertexCount * quadVertexStride

// quadVertices serializes the unit quad as two triangles in [0,1]^2.
// Winding is counter-clockwise in board space; culling is off in the
// render pipeline so it only matters for consistency.
func quadVertices() []byte {
	corners := [quadVertexCount][2]float32{
		{0, 0}, {1, 0}, {0, 1}, // triangle 1: TL, TR, BL
		{1, 0}, {1, 1}, {0, 1}, // triangle 2: TR, BR, BL
	}
	buf := make([]byte, quadVertexBytes)
	off := 0
	for _, c := range corners {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(c[0]))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(c[1]))
		off += quadVertexStride
	}
	return buf
}
