package gpu

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestSimConfigToBytes(t *testing.T) {
	cfg := SimConfig{
		GridWidth:  32,
		GridHeight: 16,
		CellSize:   10,
		AliveColor: [4]float32{0.2, 0.8, 0.4, 1},
		DeadColor:  [4]float32{0, 0, 0.1, 1},
	}
	buf := cfg.toBytes()

	if got, want := uint64(len(buf)), cfg.sizeInBytes(); got != want {
		t.Fatalf("len(toBytes()) = %d, want %d", got, want)
	}
	if got := binary.LittleEndian.Uint32(buf[0:4]); got != 32 {
		t.Errorf("grid_width = %d, want 32", got)
	}
	if got := binary.LittleEndian.Uint32(buf[4:8]); got != 16 {
		t.Errorf("grid_height = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(buf[8:12]); got != 10 {
		t.Errorf("cell_size = %d, want 10", got)
	}
	if got := binary.LittleEndian.Uint32(buf[12:16]); got != 0 {
		t.Errorf("padding = %d, want 0", got)
	}
	// Colors start on the 16-byte boundary required by vec4 alignment.
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])); got != 0.2 {
		t.Errorf("alive_color.r = %v, want 0.2", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[44:48])); got != 1 {
		t.Errorf("dead_color.a = %v, want 1", got)
	}
}

func TestPackCellsIdenticalForBothBuffers(t *testing.T) {
	cells := []uint32{0, 1, 1, 0, 1, 0, 0, 1, 1}

	// Seeding packs once and uploads the same bytes to both ping-pong
	// buffers. Packing twice must therefore be deterministic.
	a := PackCells(cells)
	b := PackCells(cells)
	if !bytes.Equal(a, b) {
		t.Fatal("PackCells is not deterministic")
	}

	got := UnpackCells(a)
	if len(got) != len(cells) {
		t.Fatalf("UnpackCells length = %d, want %d", len(got), len(cells))
	}
	for i := range cells {
		if got[i] != cells[i] {
			t.Errorf("cell %d = %d, want %d", i, got[i], cells[i])
		}
	}
}

func TestComputeWorkgroupCount(t *testing.T) {
	tests := []struct {
		name          string
		cells         uint32
		workgroupSize uint32
		want          uint32
	}{
		{"exact multiple", 32, 8, 4},
		{"one over", 33, 8, 5},
		{"one under", 31, 8, 4},
		{"single cell", 1, 8, 1},
		{"single workgroup", 8, 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeWorkgroupCount(tt.cells, tt.workgroupSize); got != tt.want {
				t.Errorf("ComputeWorkgroupCount(%d, %d) = %d, want %d",
					tt.cells, tt.workgroupSize, got, tt.want)
			}
		})
	}
}

func TestCellBufferSize(t *testing.T) {
	cfg := SimConfig{GridWidth: 32, GridHeight: 32}
	if got := cfg.cellBufferSize(); got != 32*32*4 {
		t.Errorf("cellBufferSize() = %d, want %d", got, 32*32*4)
	}
	if got := cfg.cellCount(); got != 1024 {
		t.Errorf("cellCount() = %d, want 1024", got)
	}
}
