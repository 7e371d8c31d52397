// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/life_step.wgsl
var shaderLifeStep string

//go:embed shaders/cell_render.wgsl
var shaderCellRender string

// lifeWorkgroupSize is the compute workgroup edge length.
// Must match @workgroup_size in life_step.wgsl.
const lifeWorkgroupSize = 8

// quadVertexCount is the number of vertices in the unit quad
// (two triangles).
const quadVertexCount = 6

// validateShaders compiles every embedded WGSL source through naga.
// A failure here means the shaders would be rejected at pipeline
// creation anyway, so engine init aborts early with a useful error.
func validateShaders() error {
	for _, s := range []struct {
		name string
		src  string
	}{
		{"life_step", shaderLifeStep},
		{"cell_render", shaderCellRender},
	} {
		spirv, err := naga.Compile(s.src)
		if err != nil {
			return fmt.Errorf("compile %s shader: %w", s.name, err)
		}
		slogger().Debug("shader validated", "shader", s.name, "spirvBytes", len(spirv))
	}
	return nil
}
