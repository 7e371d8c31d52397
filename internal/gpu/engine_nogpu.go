// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

package gpu

import "errors"

// Errors mirrored from the hal-backed engine so callers compile and
// keep their errors.Is checks in both build configurations.
var (
	// ErrDeviceLost is returned after a submit or wait failure.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrEngineClosed is returned when using a closed engine.
	ErrEngineClosed = errors.New("gpu: engine closed")
)

var errGPUDisabled = errors.New("gpu: built without GPU support")

// Engine is a placeholder in nogpu builds. NewEngine always fails, so
// callers take their CPU fallback and never hold a non-nil Engine; the
// methods exist only to keep the call sites compiling.
type Engine struct{}

// NewEngine always fails in nogpu builds.
func NewEngine(cfg SimConfig) (*Engine, error) {
	return nil, errGPUDisabled
}

func (e *Engine) Config() SimConfig { return SimConfig{} }

func (e *Engine) Generation() uint64 { return 0 }

func (e *Engine) SeedCells(cells []uint32) error { return errGPUDisabled }

func (e *Engine) Step() error { return errGPUDisabled }

func (e *Engine) StepFrame() error { return errGPUDisabled }

func (e *Engine) Render() error { return errGPUDisabled }

func (e *Engine) ReadCells() ([]uint32, error) { return nil, errGPUDisabled }

func (e *Engine) ReadPixels() ([]byte, uint32, uint32, error) {
	return nil, 0, 0, errGPUDisabled
}

func (e *Engine) Close() {}
