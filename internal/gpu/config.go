// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"math"
)

// simConfigSize is the byte size of the SimConfig uniform.
// Layout: 4 u32 (grid dims, cell size, padding) + 2 vec4<f32> colors.
const simConfigSize = 16 + 16 + 16

// SimConfig mirrors the SimConfig uniform struct in the WGSL shaders.
// Field order and padding must match the shader exactly.
type SimConfig struct {
	GridWidth  uint32
	GridHeight uint32
	CellSize   uint32     // pixels per cell edge in the render target
	AliveColor [4]float32 // premultiplied RGBA
	DeadColor  [4]float32 // premultiplied RGBA
}

// sizeInBytes returns the serialized size of the uniform.
func (c *SimConfig) sizeInBytes() uint64 { return simConfigSize }

// toBytes serializes the config little-endian for queue.WriteBuffer.
// The fourth u32 slot is padding so the colors start on a 16-byte boundary.
func (c *SimConfig) toBytes() []byte {
	buf := make([]byte, simConfigSize)
	binary.LittleEndian.PutUint32(buf[0:4], c.GridWidth)
	binary.LittleEndian.PutUint32(buf[4:8], c.GridHeight)
	binary.LittleEndian.PutUint32(buf[8:12], c.CellSize)
	// buf[12:16] stays zero.
	for i, v := range c.AliveColor {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(v))
	}
	for i, v := range c.DeadColor {
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(v))
	}
	return buf
}

// cellCount returns the number of cells on the board.
func (c *SimConfig) cellCount() uint32 { return c.GridWidth * c.GridHeight }

// cellBufferSize returns the byte size of one cell state buffer (u32 per cell).
func (c *SimConfig) cellBufferSize() uint64 {
	return uint64(c.GridWidth) * uint64(c.GridHeight) * 4
}

// targetWidth and targetHeight are the offscreen render target dimensions.
func (c *SimConfig) targetWidth() uint32  { return c.GridWidth * c.CellSize }
func (c *SimConfig) targetHeight() uint32 { return c.GridHeight * c.CellSize }

// PackCells serializes cell states little-endian, one u32 per cell,
// row-major. Both ping-pong buffers are seeded from the same packed
// bytes so their initial contents are bitwise identical.
func PackCells(cells []uint32) []byte {
	buf := make([]byte, len(cells)*4)
	for i, v := range cells {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// UnpackCells decodes a readback buffer into cell states.
func UnpackCells(data []byte) []uint32 {
	cells := make([]uint32, len(data)/4)
	for i := range cells {
		cells[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return cells
}

// ComputeWorkgroupCount returns the dispatch size for one axis:
// ceil(cells / workgroupSize).
func ComputeWorkgroupCount(cells, workgroupSize uint32) uint32 {
	return (cells + workgroupSize - 1) / workgroupSize
}
