// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// targetFormat is the offscreen color target format. Readback swizzles
// to RGBA on the CPU.
const targetFormat = gputypes.TextureFormatBGRA8Unorm

// pipelines holds the compute and render pipelines plus the per-parity
// bind group pairs. Index convention: computeBind[i] reads cells[i] and
// writes cells[i^1]; renderBind[i] reads cells[i].
type pipelines struct {
	stepShader   hal.ShaderModule
	stepLayout   hal.BindGroupLayout
	stepPipeLay  hal.PipelineLayout
	stepPipeline hal.ComputePipeline

	cellShader     hal.ShaderModule
	cellLayout     hal.BindGroupLayout
	cellPipeLay    hal.PipelineLayout
	renderPipeline hal.RenderPipeline

	computeBind [2]hal.BindGroup
	renderBind  [2]hal.BindGroup

	targetTex  hal.Texture
	targetView hal.TextureView
}

// createPipelines builds both pipelines, the bind group pairs, and the
// offscreen target. On error, everything created so far is released.
func createPipelines(device hal.Device, cfg *SimConfig, bufs *cellBuffers) (*pipelines, error) {
	p := &pipelines{}
	if err := p.init(device, cfg, bufs); err != nil {
		p.destroy(device)
		return nil, err
	}
	return p, nil
}

func (p *pipelines) init(device hal.Device, cfg *SimConfig, bufs *cellBuffers) error {
	if err := p.initCompute(device); err != nil {
		return err
	}
	if err := p.initRender(device); err != nil {
		return err
	}
	if err := p.initBindGroups(device, cfg, bufs); err != nil {
		return err
	}
	return p.initTarget(device, cfg)
}

func (p *pipelines) initCompute(device hal.Device) error {
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "life_step",
		Source: hal.ShaderSource{WGSL: shaderLifeStep},
	})
	if err != nil {
		return fmt.Errorf("compile life_step shader: %w", err)
	}
	p.stepShader = shader

	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "life_step_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create step bind group layout: %w", err)
	}
	p.stepLayout = layout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "life_step_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.stepLayout},
	})
	if err != nil {
		return fmt.Errorf("create step pipeline layout: %w", err)
	}
	p.stepPipeLay = pipeLayout

	pipeline, err := device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "life_step_pipeline", Layout: p.stepPipeLay,
		Compute: hal.ComputeState{Module: p.stepShader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create step compute pipeline: %w", err)
	}
	p.stepPipeline = pipeline
	return nil
}

func (p *pipelines) initRender(device hal.Device) error {
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "cell_render",
		Source: hal.ShaderSource{WGSL: shaderCellRender},
	})
	if err != nil {
		return fmt.Errorf("compile cell_render shader: %w", err)
	}
	p.cellShader = shader

	// The vertex stage pulls cell state from storage; the fragment
	// stage only forwards the interpolated color.
	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "cell_render_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageVertex, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create render bind group layout: %w", err)
	}
	p.cellLayout = layout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "cell_render_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.cellLayout},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline layout: %w", err)
	}
	p.cellPipeLay = pipeLayout

	blend := gputypes.BlendStatePremultiplied()
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "cell_render_pipeline",
		Layout: p.cellPipeLay,
		Vertex: hal.VertexState{
			Module:     p.cellShader,
			EntryPoint: "vs_main",
			Buffers:    cellVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.cellShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{Format: targetFormat, Blend: &blend, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("create cell render pipeline: %w", err)
	}
	p.renderPipeline = pipeline
	return nil
}

// initBindGroups creates the parity pair for both pipelines.
// computeBind[i]: src = cells[i], dst = cells[i^1].
// renderBind[i]: cells = cells[i].
func (p *pipelines) initBindGroups(device hal.Device, cfg *SimConfig, bufs *cellBuffers) error {
	cells := bufs.cells()
	for i := 0; i < 2; i++ {
		bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label: fmt.Sprintf("life_step_bind_%d", i), Layout: p.stepLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: bufs.Config.NativeHandle(), Offset: 0, Size: cfg.sizeInBytes()}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: cells[i].NativeHandle(), Offset: 0, Size: cfg.cellBufferSize()}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: cells[i^1].NativeHandle(), Offset: 0, Size: cfg.cellBufferSize()}},
			},
		})
		if err != nil {
			return fmt.Errorf("create step bind group %d: %w", i, err)
		}
		p.computeBind[i] = bg

		rbg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label: fmt.Sprintf("cell_render_bind_%d", i), Layout: p.cellLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: bufs.Config.NativeHandle(), Offset: 0, Size: cfg.sizeInBytes()}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: cells[i].NativeHandle(), Offset: 0, Size: cfg.cellBufferSize()}},
			},
		})
		if err != nil {
			return fmt.Errorf("create render bind group %d: %w", i, err)
		}
		p.renderBind[i] = rbg
	}
	return nil
}

// initTarget creates the offscreen color target.
func (p *pipelines) initTarget(device hal.Device, cfg *SimConfig) error {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "life_target",
		Size: hal.Extent3D{
			Width:              cfg.targetWidth(),
			Height:             cfg.targetHeight(),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	p.targetTex = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "life_target_view",
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create target view: %w", err)
	}
	p.targetView = view
	return nil
}

// destroy releases everything in reverse creation order.
// Safe on partially initialized sets.
func (p *pipelines) destroy(device hal.Device) {
	if p.targetView != nil {
		device.DestroyTextureView(p.targetView)
		p.targetView = nil
	}
	if p.targetTex != nil {
		device.DestroyTexture(p.targetTex)
		p.targetTex = nil
	}
	for i := 1; i >= 0; i-- {
		if p.renderBind[i] != nil {
			device.DestroyBindGroup(p.renderBind[i])
			p.renderBind[i] = nil
		}
		if p.computeBind[i] != nil {
			device.DestroyBindGroup(p.computeBind[i])
			p.computeBind[i] = nil
		}
	}
	if p.renderPipeline != nil {
		device.DestroyRenderPipeline(p.renderPipeline)
		p.renderPipeline = nil
	}
	if p.cellPipeLay != nil {
		device.DestroyPipelineLayout(p.cellPipeLay)
		p.cellPipeLay = nil
	}
	if p.cellLayout != nil {
		device.DestroyBindGroupLayout(p.cellLayout)
		p.cellLayout = nil
	}
	if p.cellShader != nil {
		device.DestroyShaderModule(p.cellShader)
		p.cellShader = nil
	}
	if p.stepPipeline != nil {
		device.DestroyComputePipeline(p.stepPipeline)
		p.stepPipeline = nil
	}
	if p.stepPipeLay != nil {
		device.DestroyPipelineLayout(p.stepPipeLay)
		p.stepPipeLay = nil
	}
	if p.stepLayout != nil {
		device.DestroyBindGroupLayout(p.stepLayout)
		p.stepLayout = nil
	}
	if p.stepShader != nil {
		device.DestroyShaderModule(p.stepShader)
		p.stepShader = nil
	}
}

// cellVertexLayout describes the unit quad vertex buffer:
// one vec2<f32> corner position at shader location 0.
func cellVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			},
		},
	}
}
