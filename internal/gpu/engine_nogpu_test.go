// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

package gpu

import "testing"

func TestNewEngineFailsWithoutGPU(t *testing.T) {
	e, err := NewEngine(SimConfig{GridWidth: 8, GridHeight: 8, CellSize: 4})
	if err == nil {
		t.Fatal("NewEngine succeeded in a build without GPU support")
	}
	if e != nil {
		t.Errorf("NewEngine returned a non-nil engine with error %v", err)
	}
}
