// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan backend.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device acquisition errors.
var (
	// ErrNoBackend is returned when no usable hal backend is registered.
	ErrNoBackend = errors.New("gpu: vulkan backend not available")

	// ErrNoAdapter is returned when adapter enumeration finds nothing.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")
)

// Device bundles the hal objects the engine needs. When ownsDevice is
// false the device and queue were supplied by the host application and
// Close leaves them alone.
type Device struct {
	instance   hal.Instance
	device     hal.Device
	queue      hal.Queue
	ownsDevice bool
	adapter    string
}

// OpenDevice acquires a GPU device through the Vulkan hal backend.
// Discrete adapters are preferred, then integrated, then whatever the
// backend exposed first.
func OpenDevice() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	slogger().Info("GPU adapter selected",
		"name", selected.Info.Name,
		"type", selected.Info.DeviceType)

	return &Device{
		instance:   instance,
		device:     openDev.Device,
		queue:      openDev.Queue,
		ownsDevice: true,
		adapter:    selected.Info.Name,
	}, nil
}

// WrapDevice adopts an externally owned hal device and queue, typically
// shared by a host application. Close will not destroy them.
func WrapDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue}
}

// AdapterName reports the selected adapter, or "" for wrapped devices.
func (d *Device) AdapterName() string { return d.adapter }

// Close releases the device and instance in reverse creation order.
// Safe to call more than once.
func (d *Device) Close() {
	if d.ownsDevice && d.device != nil {
		d.device.Destroy()
	}
	d.device = nil
	d.queue = nil
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
